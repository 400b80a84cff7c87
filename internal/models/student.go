package models

import "time"

// Student represents a learner on the school roster.
type Student struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Class      string    `db:"class_name" json:"class"`
	ParentName string    `db:"parent_name" json:"parent_name"`
	Phone      string    `db:"phone" json:"phone"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StudentDetail is a student merged with every related record, each list
// ordered most recent first. Lists are never nil.
type StudentDetail struct {
	Student
	Attendance []Attendance `json:"attendance"`
	Grades     []Grade      `json:"grades"`
	Behavior   []Behavior   `json:"behavior"`
}
