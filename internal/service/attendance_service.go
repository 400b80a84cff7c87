package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/dto"
	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type studentChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type attendanceWriter interface {
	Create(ctx context.Context, record *models.Attendance) error
}

// AttendanceService records daily attendance.
type AttendanceService struct {
	students  studentChecker
	repo      attendanceWriter
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(students studentChecker, repo attendanceWriter, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{students: students, repo: repo, stats: stats, validator: validate, logger: logger}
}

// Add records one attendance row. A second row for the same student and day
// is a conflict.
func (s *AttendanceService) Add(ctx context.Context, actor *models.User, req dto.CreateAttendanceRequest) (*models.Attendance, error) {
	if err := Authorize(actor, OpAddAttendance, req.StudentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid attendance payload")
	}
	day, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Validation(err, "invalid attendance date")
	}
	if err := ensureStudent(ctx, s.students, req.StudentID); err != nil {
		return nil, err
	}

	record := &models.Attendance{
		StudentID: req.StudentID,
		Date:      day,
		Status:    models.AttendanceStatus(req.Status),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, mapInsertError(err, "attendance")
	}
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	s.logger.Debug("attendance recorded",
		zap.Int64("student_id", record.StudentID),
		zap.String("date", record.Date.String()),
		zap.String("status", string(record.Status)))
	return record, nil
}
