package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records-api/internal/dto"
	"github.com/noah-isme/school-records-api/internal/middleware"
	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/pkg/response"
)

type attendanceService interface {
	Add(ctx context.Context, actor *models.User, req dto.CreateAttendanceRequest) (*models.Attendance, error)
}

type gradeService interface {
	Add(ctx context.Context, actor *models.User, req dto.CreateGradeRequest) (*models.Grade, error)
}

type behaviorService interface {
	Add(ctx context.Context, actor *models.User, req dto.CreateBehaviorRequest) (*models.Behavior, error)
}

// RecordHandler accepts attendance, grade and behaviour entries from teachers.
type RecordHandler struct {
	attendance attendanceService
	grades     gradeService
	behavior   behaviorService
}

// NewRecordHandler constructs a RecordHandler.
func NewRecordHandler(attendance attendanceService, grades gradeService, behavior behaviorService) *RecordHandler {
	return &RecordHandler{attendance: attendance, grades: grades, behavior: behavior}
}

// AddAttendance godoc
// @Summary Record attendance
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body dto.CreateAttendanceRequest true "Attendance"
// @Success 200 {object} response.SuccessBody
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /attendance [post]
func (h *RecordHandler) AddAttendance(c *gin.Context) {
	var req dto.CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid attendance payload"))
		return
	}
	record, err := h.attendance.Add(c.Request.Context(), currentUser(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, strconv.FormatInt(record.ID, 10))
	response.OK(c)
}

// AddGrade godoc
// @Summary Record a grade
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body dto.CreateGradeRequest true "Grade"
// @Success 200 {object} response.SuccessBody
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /grades [post]
func (h *RecordHandler) AddGrade(c *gin.Context) {
	var req dto.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid grade payload"))
		return
	}
	grade, err := h.grades.Add(c.Request.Context(), currentUser(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, strconv.FormatInt(grade.ID, 10))
	response.OK(c)
}

// AddBehavior godoc
// @Summary Record a behavior note
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body dto.CreateBehaviorRequest true "Behavior note"
// @Success 200 {object} response.SuccessBody
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /behavior [post]
func (h *RecordHandler) AddBehavior(c *gin.Context) {
	var req dto.CreateBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid behavior payload"))
		return
	}
	note, err := h.behavior.Add(c.Request.Context(), currentUser(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, strconv.FormatInt(note.ID, 10))
	response.OK(c)
}
