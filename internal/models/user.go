package models

import "time"

// UserRole represents the available roles for authorization.
type UserRole string

const (
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether the role belongs to the closed enumeration.
func (r UserRole) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// User represents an application user stored in the users table.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	StudentID    *int64     `db:"student_id" json:"student_id"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// IsTeacher reports whether the user holds the teacher role.
func (u *User) IsTeacher() bool {
	return u != nil && u.Role == RoleTeacher
}

// Owns reports whether the user is the student with the given id.
func (u *User) Owns(studentID int64) bool {
	return u != nil && u.Role == RoleStudent && u.StudentID != nil && *u.StudentID == studentID
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	FullName  string   `json:"full_name"`
	Role      UserRole `json:"role"`
	StudentID *int64   `json:"student_id"`
}

// Info projects the user into its public shape.
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role, StudentID: u.StudentID}
}
