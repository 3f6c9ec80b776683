package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

type trendStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type trendExamRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ExamRecord, error)
}

type trendCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// BuildTrendSeries yields chart points in chronological order. The
// sequence is restartable so callers can range it more than once.
func BuildTrendSeries(records []models.ExamRecord) iter.Seq[models.TrendPoint] {
	ordered := models.SortRecordsAsc(records)
	return func(yield func(models.TrendPoint) bool) {
		for _, rec := range ordered {
			if !yield(trendPoint(rec)) {
				return
			}
		}
	}
}

func trendPoint(rec models.ExamRecord) models.TrendPoint {
	point := models.TrendPoint{
		ExamID:         rec.ID,
		ExamName:       rec.ExamName,
		ExamDate:       rec.ExamDate,
		TotalScore:     rec.TotalScore,
		TotalFullScore: rec.TotalFullScore,
		ClassRank:      rec.ClassRank,
		GradeRank:      rec.GradeRank,
	}
	if rec.TotalFullScore != nil && *rec.TotalFullScore > 0 {
		rate := math.Round(rec.TotalScore/(*rec.TotalFullScore)*1000) / 10
		point.ScoreRate = &rate
	}
	return point
}

// BuildLatestChangeConclusion compares the two most recent exams.
// With fewer than two records every field stays nil.
func BuildLatestChangeConclusion(records []models.ExamRecord) models.LatestChangeConclusion {
	var conclusion models.LatestChangeConclusion
	if len(records) < 2 {
		return conclusion
	}

	ordered := models.SortRecordsDesc(records)
	latest := ordered[0]
	previous := ordered[1]

	scoreDelta := latest.TotalScore - previous.TotalScore
	conclusion.TotalScoreDelta = &scoreDelta

	// Rank deltas point upward when the numeric rank drops.
	if latest.ClassRank != nil && previous.ClassRank != nil {
		delta := *previous.ClassRank - *latest.ClassRank
		conclusion.ClassRankDelta = &delta
	}
	if latest.GradeRank != nil && previous.GradeRank != nil {
		delta := *previous.GradeRank - *latest.GradeRank
		conclusion.GradeRankDelta = &delta
	}

	previousBySubject := make(map[models.Subject]models.SubjectScore, len(previous.SubjectScores))
	for _, score := range previous.SubjectScores {
		if _, ok := previousBySubject[score.Subject]; !ok {
			previousBySubject[score.Subject] = score
		}
	}

	var best, worst *models.SubjectDelta
	for _, score := range latest.SubjectScores {
		prev, ok := previousBySubject[score.Subject]
		if !ok {
			continue
		}
		delta := score.Score - prev.Score
		candidate := models.SubjectDelta{
			Subject: score.Subject,
			Label:   models.SubjectLabels[score.Subject],
			Delta:   delta,
		}
		if best == nil || candidate.Delta > best.Delta {
			c := candidate
			best = &c
		}
		if worst == nil || candidate.Delta < worst.Delta {
			c := candidate
			worst = &c
		}
	}
	conclusion.BestImprovedSubject = best
	conclusion.WorstDroppedSubject = worst
	return conclusion
}

// TrendLabelOf classifies the latest score movement. Without two
// records there is nothing to compare and the student stays on watch.
func TrendLabelOf(records []models.ExamRecord) models.TrendLabel {
	if len(records) < 2 {
		return models.TrendWatch
	}
	ordered := models.SortRecordsDesc(records)
	switch {
	case ordered[0].TotalScore > ordered[1].TotalScore:
		return models.TrendUp
	case ordered[0].TotalScore < ordered[1].TotalScore:
		return models.TrendDown
	default:
		return models.TrendFlat
	}
}

// TrendService assembles score trend summaries for single students.
type TrendService struct {
	students trendStudentRepository
	exams    trendExamRepository
	cache    trendCache
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTrendService constructs the trend service.
func NewTrendService(students trendStudentRepository, exams trendExamRepository, cache trendCache, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *TrendService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &TrendService{
		students: students,
		exams:    exams,
		cache:    cache,
		metrics:  metrics,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func trendCacheKey(studentID string) string {
	return fmt.Sprintf("trend:summary:%s", studentID)
}

// Summary returns the full trend payload for a student.
func (s *TrendService) Summary(ctx context.Context, studentID string) (*models.TrendSummary, error) {
	if s.cache != nil {
		start := time.Now()
		var cached models.TrendSummary
		err := s.cache.Get(ctx, trendCacheKey(studentID), &cached)
		if err == nil {
			s.metrics.RecordCacheOperation(true, time.Since(start))
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false, time.Since(start))
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("trend cache read failed", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	start := time.Now()
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeFailure(err, "failed to load student")
	}
	s.metrics.ObserveDBQuery("student_by_id", time.Since(start))

	start = time.Now()
	records, err := s.exams.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure(err, "failed to load exam records")
	}
	s.metrics.ObserveDBQuery("exam_records_by_student", time.Since(start))

	summary := BuildTrendSummary(*student, records)

	if s.cache != nil {
		start := time.Now()
		if err := s.cache.Set(ctx, trendCacheKey(studentID), summary, s.cacheTTL); err != nil {
			s.logger.Warn("trend cache write failed", zap.String("student_id", studentID), zap.Error(err))
		}
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	return summary, nil
}

// BuildTrendSummary assembles the trend payload from loaded data.
func BuildTrendSummary(student models.Student, records []models.ExamRecord) *models.TrendSummary {
	ordered := models.SortRecordsDesc(records)
	summary := &models.TrendSummary{
		Student:      student,
		Records:      ordered,
		TrendPoints:  slices.Collect(BuildTrendSeries(records)),
		LatestChange: BuildLatestChangeConclusion(records),
		ExamCount:    len(records),
	}
	if summary.TrendPoints == nil {
		summary.TrendPoints = []models.TrendPoint{}
	}
	if len(ordered) > 0 {
		latest := ordered[0]
		summary.LatestExam = &latest
	}
	return summary
}

// InvalidateStudent drops cached trend data after writes.
func (s *TrendService) InvalidateStudent(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, trendCacheKey(studentID)); err != nil {
		s.logger.Warn("trend cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
