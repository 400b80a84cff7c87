package models

// StatusCount is the number of attendance rows with a status.
type StatusCount struct {
	Status AttendanceStatus `db:"status" json:"status"`
	Count  int              `db:"count" json:"count"`
}

// Stats summarises the roster and today's attendance. Statuses with no rows
// today are omitted from AttendanceToday rather than reported as zero.
type Stats struct {
	TotalStudents   int           `json:"totalStudents"`
	AttendanceToday []StatusCount `json:"attendanceToday"`
}
