package models

import "time"

// TrendLabel is the coarse movement tag shown on the student list.
type TrendLabel string

const (
	TrendUp    TrendLabel = "up"
	TrendDown  TrendLabel = "down"
	TrendFlat  TrendLabel = "flat"
	TrendWatch TrendLabel = "watch"
)

// TrendPoint projects one exam record into a chart-ready shape. ScoreRate
// is the total score as a percentage of the full score, or nil when no
// positive full score was recorded.
type TrendPoint struct {
	ExamID         string    `json:"exam_id"`
	ExamName       string    `json:"exam_name"`
	ExamDate       time.Time `json:"exam_date"`
	TotalScore     float64   `json:"total_score"`
	TotalFullScore *float64  `json:"total_full_score"`
	ScoreRate      *float64  `json:"score_rate"`
	ClassRank      *int      `json:"class_rank"`
	GradeRank      *int      `json:"grade_rank"`
}

// SubjectDelta is one subject's score movement between two exams.
type SubjectDelta struct {
	Subject Subject `json:"subject"`
	Label   string  `json:"label"`
	Delta   float64 `json:"delta"`
}

// LatestChangeConclusion compares a student's two most recent exam records.
// Every field is nil when fewer than two records exist; rank deltas are nil
// unless both sides carry the rank, and a positive rank delta means the
// rank number decreased (improvement).
type LatestChangeConclusion struct {
	TotalScoreDelta     *float64      `json:"total_score_delta"`
	ClassRankDelta      *int          `json:"class_rank_delta"`
	GradeRankDelta      *int          `json:"grade_rank_delta"`
	BestImprovedSubject *SubjectDelta `json:"best_improved_subject"`
	WorstDroppedSubject *SubjectDelta `json:"worst_dropped_subject"`
}

// TrendSummary aggregates everything the student detail view needs.
type TrendSummary struct {
	Student      Student                `json:"student"`
	Records      []ExamRecord           `json:"records"`
	TrendPoints  []TrendPoint           `json:"trend_points"`
	LatestExam   *ExamRecord            `json:"latest_exam"`
	LatestChange LatestChangeConclusion `json:"latest_change"`
	ExamCount    int                    `json:"exam_count"`
}
