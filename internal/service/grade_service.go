package service

import (
	"context"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/dto"
	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type gradeWriter interface {
	Create(ctx context.Context, grade *models.Grade) error
}

// GradeService records subject scores.
type GradeService struct {
	students  studentChecker
	repo      gradeWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(students studentChecker, repo gradeWriter, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{students: students, repo: repo, validator: validate, logger: logger}
}

// Add records a grade for an existing student.
func (s *GradeService) Add(ctx context.Context, actor *models.User, req dto.CreateGradeRequest) (*models.Grade, error) {
	if err := Authorize(actor, OpAddGrade, req.StudentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid grade payload")
	}
	if !hasAtMostTwoDecimals(*req.Score) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score allows at most two decimals")
	}
	day, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Validation(err, "invalid grade date")
	}
	if err := ensureStudent(ctx, s.students, req.StudentID); err != nil {
		return nil, err
	}

	grade := &models.Grade{
		StudentID: req.StudentID,
		Subject:   req.Subject,
		Score:     *req.Score,
		Date:      day,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, mapInsertError(err, "grade")
	}
	return grade, nil
}

// Scores are stored as NUMERIC(6,2); anything finer would be rounded silently.
func hasAtMostTwoDecimals(v float64) bool {
	scaled := v * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}
