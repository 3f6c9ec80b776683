package service

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

type examRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ExamRecord, error)
	FindByID(ctx context.Context, id string) (*models.ExamRecord, error)
	Create(ctx context.Context, record *models.ExamRecord) error
	Update(ctx context.Context, record *models.ExamRecord) error
	ReplaceSubjectScores(ctx context.Context, examRecordID string, scores []models.SubjectScore) error
	Delete(ctx context.Context, id string) error
}

// SubjectScoreInput is one subject entry on an exam payload.
type SubjectScoreInput struct {
	Subject   string   `json:"subject" validate:"required"`
	Score     *float64 `json:"score" validate:"required"`
	FullScore *float64 `json:"full_score"`
}

// CreateExamRecordInput holds the payload for recording an exam.
type CreateExamRecordInput struct {
	StudentID      string              `json:"student_id" validate:"required"`
	ExamName       string              `json:"exam_name" validate:"required"`
	ExamType       string              `json:"exam_type" validate:"required"`
	ExamDate       models.CalendarDate `json:"exam_date" validate:"required"`
	TotalScore     *float64            `json:"total_score" validate:"required"`
	TotalFullScore *float64            `json:"total_full_score"`
	ClassRank      *int                `json:"class_rank" validate:"omitempty,min=0"`
	GradeRank      *int                `json:"grade_rank" validate:"omitempty,min=0"`
	Notes          string              `json:"notes"`
	SubjectScores  []SubjectScoreInput `json:"subject_scores"`
}

// UpdateExamRecordInput mirrors create minus the student binding.
type UpdateExamRecordInput struct {
	ExamName       string              `json:"exam_name" validate:"required"`
	ExamType       string              `json:"exam_type" validate:"required"`
	ExamDate       models.CalendarDate `json:"exam_date" validate:"required"`
	TotalScore     *float64            `json:"total_score" validate:"required"`
	TotalFullScore *float64            `json:"total_full_score"`
	ClassRank      *int                `json:"class_rank" validate:"omitempty,min=0"`
	GradeRank      *int                `json:"grade_rank" validate:"omitempty,min=0"`
	Notes          string              `json:"notes"`
	SubjectScores  []SubjectScoreInput `json:"subject_scores"`
}

// ExamService handles exam record use-cases including the two-step
// write across the exam row and its subject scores.
type ExamService struct {
	repo      examRepository
	students  trendStudentRepository
	trends    *TrendService
	cache     trendCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs the exam service.
func NewExamService(repo examRepository, students trendStudentRepository, trends *TrendService, cache trendCache, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{
		repo:      repo,
		students:  students,
		trends:    trends,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// ListByStudent returns a student's exam history newest first.
func (s *ExamService) ListByStudent(ctx context.Context, studentID string) ([]models.ExamRecord, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeFailure(err, "failed to load student")
	}
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure(err, "failed to load exam records")
	}
	return records, nil
}

// Get returns one exam record with subject scores.
func (s *ExamService) Get(ctx context.Context, id string) (*models.ExamRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam record not found")
		}
		return nil, storeFailure(err, "failed to load exam record")
	}
	return record, nil
}

// Create records a new exam. The exam row and its subject scores live
// in separate tables with no shared transaction, so a failed score
// write compensates by deleting the freshly created row.
func (s *ExamService) Create(ctx context.Context, input CreateExamRecordInput) (*models.ExamRecord, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	scores, err := s.subjectScoresFromInput(input.SubjectScores)
	if err != nil {
		return nil, err
	}
	record, err := examRecordFromInput(input.ExamName, input.ExamType, input.ExamDate.Time, input.TotalScore, input.TotalFullScore, input.ClassRank, input.GradeRank, input.Notes)
	if err != nil {
		return nil, err
	}
	record.StudentID = input.StudentID

	if _, err := s.students.FindByID(ctx, input.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeFailure(err, "failed to load student")
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, storeFailure(err, "failed to create exam record")
	}
	if err := s.repo.ReplaceSubjectScores(ctx, record.ID, scores); err != nil {
		if delErr := s.repo.Delete(ctx, record.ID); delErr != nil {
			s.logger.Warn("compensating exam delete failed", zap.String("exam_id", record.ID), zap.Error(delErr))
		}
		return nil, storeFailure(err, "failed to store subject scores")
	}

	s.invalidate(ctx, record.StudentID)
	stored, err := s.repo.FindByID(ctx, record.ID)
	if err != nil {
		return nil, storeFailure(err, "failed to reload exam record")
	}
	return stored, nil
}

// Update rewrites an exam's scalar fields then replaces its full
// subject score set.
func (s *ExamService) Update(ctx context.Context, id string, input UpdateExamRecordInput) (*models.ExamRecord, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	scores, err := s.subjectScoresFromInput(input.SubjectScores)
	if err != nil {
		return nil, err
	}
	record, err := examRecordFromInput(input.ExamName, input.ExamType, input.ExamDate.Time, input.TotalScore, input.TotalFullScore, input.ClassRank, input.GradeRank, input.Notes)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam record not found")
		}
		return nil, storeFailure(err, "failed to load exam record")
	}
	record.ID = existing.ID
	record.StudentID = existing.StudentID
	record.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, storeFailure(err, "failed to update exam record")
	}
	if err := s.repo.ReplaceSubjectScores(ctx, record.ID, scores); err != nil {
		return nil, storeFailure(err, "failed to store subject scores")
	}

	s.invalidate(ctx, record.StudentID)
	stored, err := s.repo.FindByID(ctx, record.ID)
	if err != nil {
		return nil, storeFailure(err, "failed to reload exam record")
	}
	return stored, nil
}

// Delete removes an exam record. Absent records delete as a no-op.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	studentID := ""
	existing, err := s.repo.FindByID(ctx, id)
	switch {
	case err == nil:
		studentID = existing.StudentID
	case err == sql.ErrNoRows:
	default:
		return storeFailure(err, "failed to load exam record")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return storeFailure(err, "failed to delete exam record")
	}
	if studentID != "" {
		s.invalidate(ctx, studentID)
	}
	return nil
}

func (s *ExamService) invalidate(ctx context.Context, studentID string) {
	if s.trends != nil {
		s.trends.InvalidateStudent(ctx, studentID)
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "students:list:*"); err != nil {
			s.logger.Warn("student list cache invalidation failed", zap.Error(err))
		}
	}
}

func (s *ExamService) subjectScoresFromInput(inputs []SubjectScoreInput) ([]models.SubjectScore, error) {
	scores := make([]models.SubjectScore, 0, len(inputs))
	seen := make(map[models.Subject]bool, len(inputs))
	for _, in := range inputs {
		subject := models.Subject(strings.TrimSpace(in.Subject))
		if !subject.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown subject: "+in.Subject)
		}
		if seen[subject] {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate subject: "+in.Subject)
		}
		seen[subject] = true
		if in.Score == nil || !isFinite(*in.Score) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject score must be a finite number")
		}
		if in.FullScore != nil && !isFinite(*in.FullScore) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject full score must be a finite number")
		}
		scores = append(scores, models.SubjectScore{
			Subject:   subject,
			Score:     *in.Score,
			FullScore: copyFloat(in.FullScore),
		})
	}
	return scores, nil
}

func examRecordFromInput(name, examType string, date time.Time, total, totalFull *float64, classRank, gradeRank *int, notes string) (*models.ExamRecord, error) {
	kind := models.ExamType(strings.TrimSpace(examType))
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown exam type: "+examType)
	}
	if total == nil || !isFinite(*total) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "total score must be a finite number")
	}
	if totalFull != nil && !isFinite(*totalFull) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "total full score must be a finite number")
	}
	return &models.ExamRecord{
		ExamName:       strings.TrimSpace(name),
		ExamType:       kind,
		ExamDate:       date,
		TotalScore:     *total,
		TotalFullScore: copyFloat(totalFull),
		ClassRank:      copyInt(classRank),
		GradeRank:      copyInt(gradeRank),
		Notes:          strings.TrimSpace(notes),
	}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
