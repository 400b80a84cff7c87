package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records-api/internal/models"
)

// GradeRepository handles grade entry persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListByStudent returns a student's grades, most recent first.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Grade, error) {
	const query = `SELECT id, student_id, subject, score, date, created_at
        FROM grades
        WHERE student_id = $1
        ORDER BY date DESC, id DESC`
	grades := make([]models.Grade, 0)
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// Create inserts a grade entry.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	const query = `INSERT INTO grades (student_id, subject, score, date)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, grade.StudentID, grade.Subject, grade.Score, grade.Date).
		Scan(&grade.ID, &grade.CreatedAt); err != nil {
		return classify("create grade", err)
	}
	return nil
}
