package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

type mockTrendStudents struct {
	students map[string]models.Student
	err      error
}

func (m *mockTrendStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

type mockTrendExams struct {
	records map[string][]models.ExamRecord
	err     error
}

func (m *mockTrendExams) ListByStudent(ctx context.Context, studentID string) ([]models.ExamRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records[studentID], nil
}

func examOn(id string, date time.Time, total float64, opts func(*models.ExamRecord)) models.ExamRecord {
	rec := models.ExamRecord{
		ID:         id,
		StudentID:  "stu-1",
		ExamName:   id,
		ExamType:   models.ExamMonthly,
		ExamDate:   date,
		TotalScore: total,
		CreatedAt:  date,
	}
	if opts != nil {
		opts(&rec)
	}
	return rec
}

func TestBuildTrendSeriesOrderAndRate(t *testing.T) {
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	full := 150.0
	records := []models.ExamRecord{
		examOn("second", march, 120, func(r *models.ExamRecord) { r.TotalFullScore = &full }),
		examOn("first", march.AddDate(0, -1, 0), 96, nil),
	}

	points := slices.Collect(BuildTrendSeries(records))
	require.Len(t, points, 2)

	// chronological ascending
	assert.Equal(t, "first", points[0].ExamID)
	assert.Equal(t, "second", points[1].ExamID)

	// 120 / 150 -> 80.0; no full score -> nil
	assert.Nil(t, points[0].ScoreRate)
	require.NotNil(t, points[1].ScoreRate)
	assert.Equal(t, 80.0, *points[1].ScoreRate)
}

func TestBuildTrendSeriesRestartable(t *testing.T) {
	records := []models.ExamRecord{
		examOn("a", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 80, nil),
	}
	seq := BuildTrendSeries(records)
	assert.Len(t, slices.Collect(seq), 1)
	assert.Len(t, slices.Collect(seq), 1)
}

func TestBuildTrendSeriesNonPositiveFullScore(t *testing.T) {
	zero := 0.0
	records := []models.ExamRecord{
		examOn("a", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 80, func(r *models.ExamRecord) { r.TotalFullScore = &zero }),
	}
	points := slices.Collect(BuildTrendSeries(records))
	require.Len(t, points, 1)
	assert.Nil(t, points[0].ScoreRate)
}

func TestBuildLatestChangeConclusionFewerThanTwo(t *testing.T) {
	empty := BuildLatestChangeConclusion(nil)
	assert.Nil(t, empty.TotalScoreDelta)
	assert.Nil(t, empty.ClassRankDelta)
	assert.Nil(t, empty.GradeRankDelta)
	assert.Nil(t, empty.BestImprovedSubject)
	assert.Nil(t, empty.WorstDroppedSubject)

	single := BuildLatestChangeConclusion([]models.ExamRecord{
		examOn("only", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 500, nil),
	})
	assert.Nil(t, single.TotalScoreDelta)
	assert.Nil(t, single.BestImprovedSubject)
}

func TestBuildLatestChangeConclusionDeltas(t *testing.T) {
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	prevClass, prevGrade := 20, 60
	latestClass := 15
	records := []models.ExamRecord{
		examOn("latest", march, 95, func(r *models.ExamRecord) {
			r.ClassRank = &latestClass
			r.SubjectScores = []models.SubjectScore{
				{Subject: models.SubjectMath, Score: 118},
				{Subject: models.SubjectEnglish, Score: 95},
				{Subject: models.SubjectPhysics, Score: 70},
			}
		}),
		examOn("previous", march.AddDate(0, -1, 0), 80, func(r *models.ExamRecord) {
			r.ClassRank = &prevClass
			r.GradeRank = &prevGrade
			r.SubjectScores = []models.SubjectScore{
				{Subject: models.SubjectMath, Score: 100},
				{Subject: models.SubjectEnglish, Score: 105},
			}
		}),
	}

	conclusion := BuildLatestChangeConclusion(records)

	require.NotNil(t, conclusion.TotalScoreDelta)
	assert.Equal(t, 15.0, *conclusion.TotalScoreDelta)

	// previous 20 -> latest 15 means the rank improved by 5
	require.NotNil(t, conclusion.ClassRankDelta)
	assert.Equal(t, 5, *conclusion.ClassRankDelta)
	// grade rank missing on the latest side stays nil
	assert.Nil(t, conclusion.GradeRankDelta)

	// physics has no previous counterpart and must not win either slot
	require.NotNil(t, conclusion.BestImprovedSubject)
	assert.Equal(t, models.SubjectMath, conclusion.BestImprovedSubject.Subject)
	assert.Equal(t, 18.0, conclusion.BestImprovedSubject.Delta)
	assert.Equal(t, "数学", conclusion.BestImprovedSubject.Label)

	require.NotNil(t, conclusion.WorstDroppedSubject)
	assert.Equal(t, models.SubjectEnglish, conclusion.WorstDroppedSubject.Subject)
	assert.Equal(t, -10.0, conclusion.WorstDroppedSubject.Delta)
}

func TestBuildLatestChangeConclusionTieKeepsFirst(t *testing.T) {
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []models.ExamRecord{
		examOn("latest", march, 200, func(r *models.ExamRecord) {
			r.SubjectScores = []models.SubjectScore{
				{Subject: models.SubjectChinese, Score: 110},
				{Subject: models.SubjectMath, Score: 110},
			}
		}),
		examOn("previous", march.AddDate(0, -1, 0), 190, func(r *models.ExamRecord) {
			r.SubjectScores = []models.SubjectScore{
				{Subject: models.SubjectChinese, Score: 100},
				{Subject: models.SubjectMath, Score: 100},
			}
		}),
	}

	conclusion := BuildLatestChangeConclusion(records)
	require.NotNil(t, conclusion.BestImprovedSubject)
	assert.Equal(t, models.SubjectChinese, conclusion.BestImprovedSubject.Subject)
	require.NotNil(t, conclusion.WorstDroppedSubject)
	assert.Equal(t, models.SubjectChinese, conclusion.WorstDroppedSubject.Subject)
}

func TestBuildLatestChangeConclusionSameDateTieBreak(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rankA, rankB := 10, 30
	records := []models.ExamRecord{
		examOn("A", date, 90, func(r *models.ExamRecord) {
			r.ClassRank = &rankA
			r.CreatedAt = date.Add(2 * time.Hour)
		}),
		examOn("B", date, 70, func(r *models.ExamRecord) {
			r.ClassRank = &rankB
			r.CreatedAt = date.Add(1 * time.Hour)
		}),
	}

	// B entered earlier is the previous record despite the shared date.
	conclusion := BuildLatestChangeConclusion(records)
	require.NotNil(t, conclusion.TotalScoreDelta)
	assert.Equal(t, 20.0, *conclusion.TotalScoreDelta)
	require.NotNil(t, conclusion.ClassRankDelta)
	assert.Equal(t, 20, *conclusion.ClassRankDelta)
}

func TestTrendLabelOf(t *testing.T) {
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, models.TrendWatch, TrendLabelOf(nil))
	assert.Equal(t, models.TrendWatch, TrendLabelOf([]models.ExamRecord{examOn("one", march, 90, nil)}))

	up := []models.ExamRecord{
		examOn("latest", march, 95, nil),
		examOn("previous", march.AddDate(0, -1, 0), 80, nil),
	}
	assert.Equal(t, models.TrendUp, TrendLabelOf(up))

	down := []models.ExamRecord{
		examOn("latest", march, 70, nil),
		examOn("previous", march.AddDate(0, -1, 0), 80, nil),
	}
	assert.Equal(t, models.TrendDown, TrendLabelOf(down))

	flat := []models.ExamRecord{
		examOn("latest", march, 80, nil),
		examOn("previous", march.AddDate(0, -1, 0), 80, nil),
	}
	assert.Equal(t, models.TrendFlat, TrendLabelOf(flat))
}

func TestTrendServiceSummary(t *testing.T) {
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	students := &mockTrendStudents{students: map[string]models.Student{
		"stu-1": {ID: "stu-1", Name: "王小明", Grade: models.Grade11, IsActive: true},
	}}
	exams := &mockTrendExams{records: map[string][]models.ExamRecord{
		"stu-1": {
			examOn("old", march.AddDate(0, -1, 0), 80, nil),
			examOn("new", march, 95, nil),
		},
	}}
	svc := NewTrendService(students, exams, nil, nil, 0, zap.NewNop())

	summary, err := svc.Summary(context.Background(), "stu-1")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ExamCount)
	require.NotNil(t, summary.LatestExam)
	assert.Equal(t, "new", summary.LatestExam.ID)
	assert.Equal(t, []string{"new", "old"}, []string{summary.Records[0].ID, summary.Records[1].ID})
	assert.Equal(t, "old", summary.TrendPoints[0].ExamID)
	require.NotNil(t, summary.LatestChange.TotalScoreDelta)
	assert.Equal(t, 15.0, *summary.LatestChange.TotalScoreDelta)
}

func TestTrendServiceSummaryStudentNotFound(t *testing.T) {
	svc := NewTrendService(&mockTrendStudents{}, &mockTrendExams{}, nil, nil, 0, zap.NewNop())

	_, err := svc.Summary(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTrendServiceSummaryStoreNotConfigured(t *testing.T) {
	students := &mockTrendStudents{err: appErrors.ErrStoreNotConfigured}
	svc := NewTrendService(students, &mockTrendExams{}, nil, nil, 0, zap.NewNop())

	_, err := svc.Summary(context.Background(), "stu-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStoreNotConfigured.Code, appErr.Code)
}

func TestTrendServiceSummaryMissingSchema(t *testing.T) {
	// a lookup against un-migrated tables keeps its setup-guidance code
	students := &mockTrendStudents{err: appErrors.Wrap(errPQMissingTable, appErrors.ErrMissingSchema.Code, appErrors.ErrMissingSchema.Status, appErrors.ErrMissingSchema.Message)}
	svc := NewTrendService(students, &mockTrendExams{}, nil, nil, 0, zap.NewNop())

	_, err := svc.Summary(context.Background(), "stu-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMissingSchema.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrMissingSchema.Status, appErr.Status)
}

var errPQMissingTable = errors.New(`pq: relation "students" does not exist`)

type mockTrendCache struct {
	getErr error
	sets   int
}

func (m *mockTrendCache) Get(ctx context.Context, key string, dest interface{}) error {
	return m.getErr
}

func (m *mockTrendCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	return nil
}

func (m *mockTrendCache) DeleteByPattern(ctx context.Context, pattern string) error { return nil }

func TestTrendServiceSummaryWrappedCacheMiss(t *testing.T) {
	// a miss stays a miss even when the cache layer wraps the sentinel
	core, logs := observer.New(zapcore.WarnLevel)
	students := &mockTrendStudents{students: map[string]models.Student{
		"stu-1": {ID: "stu-1", Name: "王小明", Grade: models.Grade11, IsActive: true},
	}}
	cache := &mockTrendCache{getErr: fmt.Errorf("decode trend entry: %w", appErrors.ErrCacheMiss)}
	svc := NewTrendService(students, &mockTrendExams{}, cache, nil, time.Minute, zap.New(core))

	summary, err := svc.Summary(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ExamCount)
	assert.Equal(t, 1, cache.sets)
	assert.Zero(t, logs.Len())
}

func TestTrendServiceSummaryEmptyHistory(t *testing.T) {
	students := &mockTrendStudents{students: map[string]models.Student{
		"stu-1": {ID: "stu-1", Name: "A", Grade: models.Grade10, IsActive: true},
	}}
	svc := NewTrendService(students, &mockTrendExams{}, nil, nil, 0, zap.NewNop())

	summary, err := svc.Summary(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ExamCount)
	assert.Nil(t, summary.LatestExam)
	assert.Empty(t, summary.TrendPoints)
	assert.Nil(t, summary.LatestChange.TotalScoreDelta)
}
