package models

import "time"

// BehaviorType represents the nature of a note.
type BehaviorType string

const (
	BehaviorPositive BehaviorType = "positive"
	BehaviorNegative BehaviorType = "negative"
)

// Valid reports whether the type is supported.
func (t BehaviorType) Valid() bool {
	return t == BehaviorPositive || t == BehaviorNegative
}

// Behavior captures a behavioural note for a student.
type Behavior struct {
	ID          int64        `db:"id" json:"id"`
	StudentID   int64        `db:"student_id" json:"student_id"`
	Type        BehaviorType `db:"type" json:"type"`
	Description string       `db:"description" json:"description"`
	Date        Date         `db:"date" json:"date"`
	CreatedAt   time.Time    `db:"created_at" json:"-"`
}
