package service

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type studentExamRepository interface {
	ListByStudents(ctx context.Context, studentIDs []string) (map[string][]models.ExamRecord, error)
}

// StudentInput holds the payload for creating and updating students.
type StudentInput struct {
	Name        string `json:"name" validate:"required"`
	Grade       string `json:"grade" validate:"required"`
	ClassName   string `json:"class_name" validate:"required"`
	HeadTeacher string `json:"head_teacher"`
	IsActive    *bool  `json:"is_active"`
	Notes       string `json:"notes"`
}

// StudentService handles roster use-cases and the admin list view.
type StudentService struct {
	repo      studentRepository
	exams     studentExamRepository
	cache     trendCache
	trends    *TrendService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, exams studentExamRepository, cache trendCache, trends *TrendService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &StudentService{
		repo:      repo,
		exams:     exams,
		cache:     cache,
		trends:    trends,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

func studentListCacheKey(filter models.StudentFilter) string {
	raw := fmt.Sprintf("%s|%v|%s|%s|%s", filter.Search, filter.Grade, filter.ClassName, filter.HeadTeacher, filter.Active)
	return fmt.Sprintf("students:list:%x", sha1.Sum([]byte(raw)))
}

// List returns the admin roster view, one row per student with their
// latest exam and a coarse trend tag.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, error) {
	key := studentListCacheKey(filter)
	if s.cache != nil {
		var cached []models.StudentListItem
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeFailure(err, "failed to list students")
	}

	ids := make([]string, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	examsByStudent, err := s.exams.ListByStudents(ctx, ids)
	if err != nil {
		return nil, storeFailure(err, "failed to load exam records")
	}

	items := make([]models.StudentListItem, 0, len(students))
	for _, st := range students {
		records := models.SortRecordsDesc(examsByStudent[st.ID])
		item := models.StudentListItem{
			Student:     st,
			ExamCount:   len(records),
			LatestTrend: TrendLabelOf(records),
		}
		if len(records) > 0 {
			latest := records[0]
			item.LatestExam = &models.LatestExamSummary{
				ExamName:   latest.ExamName,
				ExamDate:   latest.ExamDate,
				TotalScore: latest.TotalScore,
				ClassRank:  latest.ClassRank,
				GradeRank:  latest.GradeRank,
			}
		}
		items = append(items, item)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, items, s.cacheTTL); err != nil {
			s.logger.Warn("student list cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeFailure(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. Grade must be one of the three
// valid values; IsActive defaults to true when omitted.
func (s *StudentService) Create(ctx context.Context, input StudentInput) (*models.Student, error) {
	student, err := s.studentFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, storeFailure(err, "failed to create student")
	}
	s.invalidateLists(ctx)
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, input StudentInput) (*models.Student, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeFailure(err, "failed to load student")
	}

	updated, err := s.studentFromInput(input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, storeFailure(err, "failed to update student")
	}
	s.invalidateLists(ctx)
	if s.trends != nil {
		s.trends.InvalidateStudent(ctx, id)
	}
	return updated, nil
}

func (s *StudentService) studentFromInput(input StudentInput) (*models.Student, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	grade := models.Grade(strings.TrimSpace(input.Grade))
	if !grade.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade must be 10, 11 or 12")
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	return &models.Student{
		Name:        strings.TrimSpace(input.Name),
		Grade:       grade,
		ClassName:   strings.TrimSpace(input.ClassName),
		HeadTeacher: strings.TrimSpace(input.HeadTeacher),
		IsActive:    active,
		Notes:       strings.TrimSpace(input.Notes),
	}, nil
}

func (s *StudentService) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "students:list:*"); err != nil {
		s.logger.Warn("student list cache invalidation failed", zap.Error(err))
	}
}
