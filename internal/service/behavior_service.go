package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/dto"
	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type behaviorWriter interface {
	Create(ctx context.Context, note *models.Behavior) error
}

// BehaviorService records behaviour notes.
type BehaviorService struct {
	students  studentChecker
	repo      behaviorWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBehaviorService constructs the behaviour service.
func NewBehaviorService(students studentChecker, repo behaviorWriter, validate *validator.Validate, logger *zap.Logger) *BehaviorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BehaviorService{students: students, repo: repo, validator: validate, logger: logger}
}

// Add records a behaviour note for an existing student.
func (s *BehaviorService) Add(ctx context.Context, actor *models.User, req dto.CreateBehaviorRequest) (*models.Behavior, error) {
	if err := Authorize(actor, OpAddBehavior, req.StudentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid behavior payload")
	}
	day, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Validation(err, "invalid behavior date")
	}
	if err := ensureStudent(ctx, s.students, req.StudentID); err != nil {
		return nil, err
	}

	note := &models.Behavior{
		StudentID:   req.StudentID,
		Type:        models.BehaviorType(req.Type),
		Description: req.Description,
		Date:        day,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, mapInsertError(err, "behavior note")
	}
	return note, nil
}
