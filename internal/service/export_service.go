package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
	"github.com/mingshu/tutor-api/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries a rendered trend report.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders a student's trend summary to CSV or PDF.
type ExportService struct {
	trends *TrendService
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(trends *TrendService, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{trends: trends, csv: csv, pdf: pdf, logger: logger}
}

// Generate renders the trend report for a student in the given format.
func (s *ExportService) Generate(ctx context.Context, studentID string, format ExportFormat) (*ExportResult, error) {
	summary, err := s.trends.Summary(ctx, studentID)
	if err != nil {
		return nil, err
	}

	dataset, title := buildTrendDataset(summary)
	timestamp := time.Now().UTC().Format("20060102_150405")

	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("trend_%s_%s.csv", sanitizeFilename(summary.Student.Name), timestamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("trend_%s_%s.pdf", sanitizeFilename(summary.Student.Name), timestamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %s", format))
	}
}

func buildTrendDataset(summary *models.TrendSummary) (export.Dataset, string) {
	rows := make([]map[string]string, 0, len(summary.TrendPoints))
	for _, point := range summary.TrendPoints {
		rows = append(rows, map[string]string{
			"Exam":        point.ExamName,
			"Date":        point.ExamDate.UTC().Format("2006-01-02"),
			"Total Score": fmt.Sprintf("%.1f", point.TotalScore),
			"Full Score":  formatOptionalFloat(point.TotalFullScore),
			"Score Rate":  formatOptionalFloat(point.ScoreRate),
			"Class Rank":  formatOptionalInt(point.ClassRank),
			"Grade Rank":  formatOptionalInt(point.GradeRank),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Exam", "Date", "Total Score", "Full Score", "Score Rate", "Class Rank", "Grade Rank"},
		Rows:    rows,
		Meta: []string{
			fmt.Sprintf("Grade %s / %s", summary.Student.Grade, summary.Student.ClassName),
			fmt.Sprintf("Exams: %d", summary.ExamCount),
			fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02")),
		},
	}
	title := fmt.Sprintf("Score Trend %s", summary.Student.Name)
	return dataset, title
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *f)
}

func formatOptionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%d", *n)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
