package dto

// CreateAttendanceRequest records one day of attendance for a student.
type CreateAttendanceRequest struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=present absent late sick"`
}

// CreateGradeRequest records a subject score.
type CreateGradeRequest struct {
	StudentID int64    `json:"student_id" validate:"required,gt=0"`
	Subject   string   `json:"subject" validate:"required,max=100"`
	Score     *float64 `json:"score" validate:"required,gte=0,lte=1000"`
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
}

// CreateBehaviorRequest records a behaviour note.
type CreateBehaviorRequest struct {
	StudentID   int64  `json:"student_id" validate:"required,gt=0"`
	Type        string `json:"type" validate:"required,oneof=positive negative"`
	Description string `json:"description" validate:"required,max=2000"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

// CreateStudentRequest adds a student to the roster.
type CreateStudentRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Class      string `json:"class" validate:"required,max=20"`
	ParentName string `json:"parent_name" validate:"omitempty,max=120"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
}

// ExportFormat selects the student record export rendering.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
