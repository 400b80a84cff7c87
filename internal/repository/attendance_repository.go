package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records-api/internal/models"
)

// AttendanceRepository handles persistence for daily attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByStudent returns a student's attendance, most recent day first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, date, status, created_at
FROM attendance
WHERE student_id = $1
ORDER BY date DESC, id DESC`
	rows := make([]models.Attendance, 0)
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// Create inserts one attendance row. A second row for the same student and
// day fails with ErrDuplicate.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	const query = `INSERT INTO attendance (student_id, date, status)
VALUES ($1, $2, $3)
RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, record.StudentID, record.Date, record.Status).
		Scan(&record.ID, &record.CreatedAt); err != nil {
		return classify("create attendance", err)
	}
	return nil
}

// CountByStatusOn groups the attendance rows of one day by status. Statuses
// without rows are not returned.
func (r *AttendanceRepository) CountByStatusOn(ctx context.Context, day models.Date) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count
FROM attendance
WHERE date = $1
GROUP BY status
ORDER BY status`
	counts := make([]models.StatusCount, 0)
	if err := r.db.SelectContext(ctx, &counts, query, day); err != nil {
		return nil, fmt.Errorf("count attendance by status: %w", err)
	}
	return counts, nil
}
