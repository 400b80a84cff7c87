package models

import "time"

// Grade is a single scored assessment in a subject.
type Grade struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	Subject   string    `db:"subject" json:"subject"`
	Score     float64   `db:"score" json:"score"`
	Date      Date      `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}
