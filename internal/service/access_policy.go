package service

import (
	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

// Operation names a record-access operation guarded by Authorize.
type Operation string

const (
	OpListStudents  Operation = "students.list"
	OpViewStudent   Operation = "students.view"
	OpExportStudent Operation = "students.export"
	OpCreateStudent Operation = "students.create"
	OpAddAttendance Operation = "attendance.create"
	OpAddGrade      Operation = "grades.create"
	OpAddBehavior   Operation = "behavior.create"
	OpViewStats     Operation = "stats.view"
)

// Authorize decides whether actor may perform op. studentID is only consulted
// for operations scoped to a single student. A nil actor is unauthenticated.
func Authorize(actor *models.User, op Operation, studentID int64) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}

	switch op {
	case OpViewStudent, OpExportStudent:
		if actor.IsTeacher() || actor.Owns(studentID) {
			return nil
		}
	case OpListStudents, OpCreateStudent, OpAddAttendance, OpAddGrade, OpAddBehavior, OpViewStats:
		if actor.IsTeacher() {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "access denied")
}
