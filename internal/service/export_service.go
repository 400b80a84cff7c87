package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/dto"
	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
	"github.com/noah-isme/school-records-api/pkg/export"
)

type recordLoader interface {
	load(ctx context.Context, id int64) (*models.StudentDetail, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportService renders a student's full record as a downloadable file.
type ExportService struct {
	records recordLoader
	csv     documentRenderer
	pdf     documentRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the default CSV and PDF exporters.
func NewExportService(records *StudentService, csv, pdf documentRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{records: records, csv: csv, pdf: pdf, logger: logger}
}

// StudentRecord renders the record of one student in the requested format.
// Access follows the same rule as viewing the record.
func (s *ExportService) StudentRecord(ctx context.Context, actor *models.User, id int64, format dto.ExportFormat) (*dto.ExportFile, error) {
	if err := Authorize(actor, OpExportStudent, id); err != nil {
		return nil, err
	}

	format = dto.ExportFormat(strings.ToLower(strings.TrimSpace(string(format))))
	if format == "" {
		format = dto.ExportFormatCSV
	}
	if format != dto.ExportFormatCSV && format != dto.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	detail, err := s.records.load(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := studentDocument(detail)

	file := &dto.ExportFile{Filename: fmt.Sprintf("student-%d.%s", id, format)}
	switch format {
	case dto.ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Body, err = s.pdf.Render(doc)
	default:
		file.ContentType = "text/csv"
		file.Body, err = s.csv.Render(doc)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	s.logger.Info("student record exported", zap.Int64("student_id", id), zap.String("format", string(format)), zap.Int64("actor_id", actor.ID))
	return file, nil
}

func studentDocument(detail *models.StudentDetail) export.Document {
	attendance := make([][]string, 0, len(detail.Attendance))
	for _, row := range detail.Attendance {
		attendance = append(attendance, []string{row.Date.String(), string(row.Status)})
	}
	grades := make([][]string, 0, len(detail.Grades))
	for _, row := range detail.Grades {
		grades = append(grades, []string{row.Date.String(), row.Subject, strconv.FormatFloat(row.Score, 'f', -1, 64)})
	}
	behavior := make([][]string, 0, len(detail.Behavior))
	for _, row := range detail.Behavior {
		behavior = append(behavior, []string{row.Date.String(), string(row.Type), row.Description})
	}

	return export.Document{
		Title:    "Student record: " + detail.Name,
		Subtitle: "Class " + detail.Class,
		Sections: []export.Section{
			{Title: "Attendance", Headers: []string{"Date", "Status"}, Rows: attendance},
			{Title: "Grades", Headers: []string{"Date", "Subject", "Score"}, Rows: grades},
			{Title: "Behavior", Headers: []string{"Date", "Type", "Description"}, Rows: behavior},
		},
	}
}
