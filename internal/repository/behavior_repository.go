package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records-api/internal/models"
)

// BehaviorRepository manages persistence for behaviour notes.
type BehaviorRepository struct {
	db *sqlx.DB
}

// NewBehaviorRepository constructs a new repository.
func NewBehaviorRepository(db *sqlx.DB) *BehaviorRepository {
	return &BehaviorRepository{db: db}
}

// ListByStudent returns behaviour notes for a student, most recent first.
func (r *BehaviorRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Behavior, error) {
	const query = `SELECT id, student_id, type, description, date, created_at
FROM behavior
WHERE student_id = $1
ORDER BY date DESC, id DESC`
	notes := make([]models.Behavior, 0)
	if err := r.db.SelectContext(ctx, &notes, query, studentID); err != nil {
		return nil, fmt.Errorf("list behavior notes: %w", err)
	}
	return notes, nil
}

// Create inserts a new behaviour note.
func (r *BehaviorRepository) Create(ctx context.Context, note *models.Behavior) error {
	const query = `INSERT INTO behavior (student_id, type, description, date)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, note.StudentID, note.Type, note.Description, note.Date).
		Scan(&note.ID, &note.CreatedAt); err != nil {
		return classify("create behavior note", err)
	}
	return nil
}
