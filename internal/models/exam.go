package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// CalendarDate is a day-precision timestamp. The admin forms submit
// plain "2006-01-02" dates; full RFC3339 timestamps are also accepted.
type CalendarDate struct {
	time.Time
}

// CalendarDateOf wraps a time.Time.
func CalendarDateOf(t time.Time) CalendarDate {
	return CalendarDate{Time: t}
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse calendar date: %w", err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("parse calendar date %q: %w", raw, err)
	}
	d.Time = t
	return nil
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

// ExamType classifies how an assessment was administered.
type ExamType string

const (
	ExamMonthly ExamType = "monthly"
	ExamMidterm ExamType = "midterm"
	ExamFinal   ExamType = "final"
	ExamMock    ExamType = "mock"
	ExamWeekly  ExamType = "weekly"
	ExamJoint   ExamType = "joint"
	ExamOther   ExamType = "other"
)

// ExamTypes lists every valid exam type.
var ExamTypes = []ExamType{ExamMonthly, ExamMidterm, ExamFinal, ExamMock, ExamWeekly, ExamJoint, ExamOther}

// Valid reports whether the exam type is one of the known values.
func (t ExamType) Valid() bool {
	return slices.Contains(ExamTypes, t)
}

// Subject enumerates the nine tracked subjects.
type Subject string

const (
	SubjectChinese   Subject = "chinese"
	SubjectMath      Subject = "math"
	SubjectEnglish   Subject = "english"
	SubjectPhysics   Subject = "physics"
	SubjectChemistry Subject = "chemistry"
	SubjectBiology   Subject = "biology"
	SubjectPolitics  Subject = "politics"
	SubjectHistory   Subject = "history"
	SubjectGeography Subject = "geography"
)

// Subjects lists every tracked subject in display order.
var Subjects = []Subject{
	SubjectChinese, SubjectMath, SubjectEnglish,
	SubjectPhysics, SubjectChemistry, SubjectBiology,
	SubjectPolitics, SubjectHistory, SubjectGeography,
}

// SubjectLabels maps subjects to their display names.
var SubjectLabels = map[Subject]string{
	SubjectChinese:   "语文",
	SubjectMath:      "数学",
	SubjectEnglish:   "英语",
	SubjectPhysics:   "物理",
	SubjectChemistry: "化学",
	SubjectBiology:   "生物",
	SubjectPolitics:  "政治",
	SubjectHistory:   "历史",
	SubjectGeography: "地理",
}

// Valid reports whether the subject is one of the known values.
func (s Subject) Valid() bool {
	return slices.Contains(Subjects, s)
}

// SubjectScore is one subject's score within a single exam record.
type SubjectScore struct {
	ID           string    `db:"id" json:"id"`
	ExamRecordID string    `db:"exam_record_id" json:"exam_record_id"`
	Subject      Subject   `db:"subject" json:"subject"`
	Score        float64   `db:"score" json:"score"`
	FullScore    *float64  `db:"full_score" json:"full_score"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ExamRecord is one scored assessment event for one student. TotalScore is
// always present; ranks and full scores are independently optional.
type ExamRecord struct {
	ID             string         `db:"id" json:"id"`
	StudentID      string         `db:"student_id" json:"student_id"`
	ExamName       string         `db:"exam_name" json:"exam_name"`
	ExamType       ExamType       `db:"exam_type" json:"exam_type"`
	ExamDate       time.Time      `db:"exam_date" json:"exam_date"`
	TotalScore     float64        `db:"total_score" json:"total_score"`
	TotalFullScore *float64       `db:"total_full_score" json:"total_full_score"`
	ClassRank      *int           `db:"class_rank" json:"class_rank"`
	GradeRank      *int           `db:"grade_rank" json:"grade_rank"`
	Notes          string         `db:"notes" json:"notes"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	SubjectScores  []SubjectScore `json:"subject_scores"`
}

// CompareRecordsDesc orders two exam records newest first: exam_date
// descending with ties broken by created_at descending, so the more
// recently entered record wins when dates collide.
func CompareRecordsDesc(a, b ExamRecord) int {
	if c := b.ExamDate.Compare(a.ExamDate); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// SortRecordsDesc returns a copy of records sorted newest first.
func SortRecordsDesc(records []ExamRecord) []ExamRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, CompareRecordsDesc)
	return out
}

// SortRecordsAsc returns a copy of records sorted oldest first.
func SortRecordsAsc(records []ExamRecord) []ExamRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b ExamRecord) int {
		return CompareRecordsDesc(b, a)
	})
	return out
}
