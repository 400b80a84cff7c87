package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records-api/internal/models"
)

const studentColumns = `id, name, class_name, parent_name, phone, created_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student on the roster.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY id`
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID. sql.ErrNoRows is returned unwrapped.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Exists reports whether a student with the given ID is on the roster.
func (r *StudentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check student: %w", err)
	}
	return exists, nil
}

// Count returns the roster size.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// Create inserts a new student record and fills in generated columns.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (name, class_name, parent_name, phone)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, student.Name, student.Class, student.ParentName, student.Phone).
		Scan(&student.ID, &student.CreatedAt); err != nil {
		return classify("create student", err)
	}
	return nil
}

// EnsureWithID inserts a student under a fixed ID unless the ID is taken,
// then advances the ID sequence past it. Used by the seeder.
func (r *StudentRepository) EnsureWithID(ctx context.Context, student *models.Student) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insert = `INSERT INTO students (id, name, class_name, parent_name, phone)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, insert, student.ID, student.Name, student.Class, student.ParentName, student.Phone); err != nil {
		return classify("seed student", err)
	}
	const bump = `SELECT setval(pg_get_serial_sequence('students', 'id'), GREATEST((SELECT MAX(id) FROM students), 1))`
	if _, err := tx.ExecContext(ctx, bump); err != nil {
		return fmt.Errorf("advance student sequence: %w", err)
	}
	return tx.Commit()
}
