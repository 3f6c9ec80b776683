package models

import (
	"database/sql"
	"database/sql/driver"
	"math"
	"strconv"
	"strings"
	"time"
)

// ScoreValue is a nullable numeric column that tolerates the mixed
// representations found in imported data: real numerics, integer
// counts, and numbers stored as text. Anything that does not parse to
// a finite float scans as null instead of failing the whole row.
type ScoreValue struct {
	Float *float64
}

func (v *ScoreValue) Scan(src any) error {
	v.Float = nil

	switch s := src.(type) {
	case nil:
		return nil
	case float64:
		v.set(s)
	case int64:
		v.set(float64(s))
	case []byte:
		v.parse(string(s))
	case string:
		v.parse(s)
	}
	return nil
}

func (v ScoreValue) Value() (driver.Value, error) {
	if v.Float == nil {
		return nil, nil
	}
	return *v.Float, nil
}

func (v *ScoreValue) parse(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}
	v.set(f)
}

func (v *ScoreValue) set(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return
	}
	v.Float = &f
}

// Int truncates the value toward zero, matching how ranks round when
// they arrive as fractional text.
func (v ScoreValue) Int() *int {
	if v.Float == nil {
		return nil
	}
	n := int(math.Trunc(*v.Float))
	return &n
}

func (v ScoreValue) Ptr() *float64 {
	if v.Float == nil {
		return nil
	}
	f := *v.Float
	return &f
}

// ScoreOf builds a ScoreValue from an optional float.
func ScoreOf(f *float64) ScoreValue {
	if f == nil {
		return ScoreValue{}
	}
	c := *f
	return ScoreValue{Float: &c}
}

// StudentRow is the database shape of Student. Optional text columns
// are nullable and collapse to empty strings in the domain model.
type StudentRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Grade       Grade          `db:"grade"`
	ClassName   string         `db:"class_name"`
	HeadTeacher sql.NullString `db:"head_teacher"`
	IsActive    sql.NullBool   `db:"is_active"`
	Notes       sql.NullString `db:"notes"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Domain converts the row to its API shape. A null is_active means
// the student predates the column and counts as active.
func (r StudentRow) Domain() Student {
	active := true
	if r.IsActive.Valid {
		active = r.IsActive.Bool
	}
	return Student{
		ID:          r.ID,
		Name:        r.Name,
		Grade:       r.Grade,
		ClassName:   r.ClassName,
		HeadTeacher: strings.TrimSpace(r.HeadTeacher.String),
		IsActive:    active,
		Notes:       r.Notes.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func StudentRowOf(s Student) StudentRow {
	return StudentRow{
		ID:          s.ID,
		Name:        s.Name,
		Grade:       s.Grade,
		ClassName:   s.ClassName,
		HeadTeacher: nullString(s.HeadTeacher),
		IsActive:    sql.NullBool{Bool: s.IsActive, Valid: true},
		Notes:       nullString(s.Notes),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ExamRecordRow is the database shape of ExamRecord. Score and rank
// columns go through ScoreValue so legacy text values survive.
type ExamRecordRow struct {
	ID             string         `db:"id"`
	StudentID      string         `db:"student_id"`
	ExamName       string         `db:"exam_name"`
	ExamType       ExamType       `db:"exam_type"`
	ExamDate       time.Time      `db:"exam_date"`
	TotalScore     ScoreValue     `db:"total_score"`
	TotalFullScore ScoreValue     `db:"total_full_score"`
	ClassRank      ScoreValue     `db:"class_rank"`
	GradeRank      ScoreValue     `db:"grade_rank"`
	Notes          sql.NullString `db:"notes"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r ExamRecordRow) Domain() ExamRecord {
	total := 0.0
	if r.TotalScore.Float != nil {
		total = *r.TotalScore.Float
	}
	return ExamRecord{
		ID:             r.ID,
		StudentID:      r.StudentID,
		ExamName:       r.ExamName,
		ExamType:       r.ExamType,
		ExamDate:       r.ExamDate,
		TotalScore:     total,
		TotalFullScore: r.TotalFullScore.Ptr(),
		ClassRank:      r.ClassRank.Int(),
		GradeRank:      r.GradeRank.Int(),
		Notes:          r.Notes.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		SubjectScores:  []SubjectScore{},
	}
}

func ExamRecordRowOf(rec ExamRecord) ExamRecordRow {
	total := rec.TotalScore
	return ExamRecordRow{
		ID:             rec.ID,
		StudentID:      rec.StudentID,
		ExamName:       rec.ExamName,
		ExamType:       rec.ExamType,
		ExamDate:       rec.ExamDate,
		TotalScore:     ScoreValue{Float: &total},
		TotalFullScore: ScoreOf(rec.TotalFullScore),
		ClassRank:      scoreOfInt(rec.ClassRank),
		GradeRank:      scoreOfInt(rec.GradeRank),
		Notes:          nullString(rec.Notes),
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

// SubjectScoreRow is the database shape of SubjectScore.
type SubjectScoreRow struct {
	ID           string     `db:"id"`
	ExamRecordID string     `db:"exam_record_id"`
	Subject      Subject    `db:"subject"`
	Score        ScoreValue `db:"score"`
	FullScore    ScoreValue `db:"full_score"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (r SubjectScoreRow) Domain() SubjectScore {
	score := 0.0
	if r.Score.Float != nil {
		score = *r.Score.Float
	}
	return SubjectScore{
		ID:           r.ID,
		ExamRecordID: r.ExamRecordID,
		Subject:      r.Subject,
		Score:        score,
		FullScore:    r.FullScore.Ptr(),
		CreatedAt:    r.CreatedAt,
	}
}

func SubjectScoreRowOf(s SubjectScore) SubjectScoreRow {
	score := s.Score
	return SubjectScoreRow{
		ID:           s.ID,
		ExamRecordID: s.ExamRecordID,
		Subject:      s.Subject,
		Score:        ScoreValue{Float: &score},
		FullScore:    ScoreOf(s.FullScore),
		CreatedAt:    s.CreatedAt,
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func scoreOfInt(n *int) ScoreValue {
	if n == nil {
		return ScoreValue{}
	}
	f := float64(*n)
	return ScoreValue{Float: &f}
}
