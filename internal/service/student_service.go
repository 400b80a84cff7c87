package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/dto"
	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

type attendanceLister interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.Attendance, error)
}

type gradeLister interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.Grade, error)
}

type behaviorLister interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.Behavior, error)
}

type statsInvalidator interface {
	Invalidate(ctx context.Context)
}

// StudentService exposes roster and student record reads.
type StudentService struct {
	students   studentRepository
	attendance attendanceLister
	grades     gradeLister
	behavior   behaviorLister
	stats      statsInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepository, attendance attendanceLister, grades gradeLister, behavior behaviorLister, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		students:   students,
		attendance: attendance,
		grades:     grades,
		behavior:   behavior,
		stats:      stats,
		validator:  validate,
		logger:     logger,
	}
}

// List returns the whole roster.
func (s *StudentService) List(ctx context.Context, actor *models.User) ([]models.Student, error) {
	if err := Authorize(actor, OpListStudents, 0); err != nil {
		return nil, err
	}
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	return students, nil
}

// Detail returns a student merged with attendance, grades and behaviour
// notes, each newest first. The sequences are never nil.
func (s *StudentService) Detail(ctx context.Context, actor *models.User, id int64) (*models.StudentDetail, error) {
	if err := Authorize(actor, OpViewStudent, id); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *StudentService) load(ctx context.Context, id int64) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}

	attendance, err := s.attendance.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load attendance")
	}
	grades, err := s.grades.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load grades")
	}
	behavior, err := s.behavior.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load behavior notes")
	}

	detail := &models.StudentDetail{
		Student:    *student,
		Attendance: attendance,
		Grades:     grades,
		Behavior:   behavior,
	}
	if detail.Attendance == nil {
		detail.Attendance = []models.Attendance{}
	}
	if detail.Grades == nil {
		detail.Grades = []models.Grade{}
	}
	if detail.Behavior == nil {
		detail.Behavior = []models.Behavior{}
	}
	return detail, nil
}

// Create adds a student to the roster.
func (s *StudentService) Create(ctx context.Context, actor *models.User, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := Authorize(actor, OpCreateStudent, 0); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}

	student := &models.Student{
		Name:       req.Name,
		Class:      req.Class,
		ParentName: req.ParentName,
		Phone:      req.Phone,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "failed to create student")
	}
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	s.logger.Info("student created", zap.Int64("student_id", student.ID), zap.Int64("actor_id", actor.ID))
	return student, nil
}

// ensureStudent maps a missing student to NotFound.
func ensureStudent(ctx context.Context, students studentChecker, id int64) error {
	exists, err := students.Exists(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to check student")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}
