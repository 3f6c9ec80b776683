package models

import "time"

// Grade identifies the school year a student belongs to.
type Grade string

const (
	Grade10 Grade = "10"
	Grade11 Grade = "11"
	Grade12 Grade = "12"
)

// Grades lists every valid grade value.
var Grades = []Grade{Grade10, Grade11, Grade12}

// Valid reports whether the grade is one of the known values.
func (g Grade) Valid() bool {
	switch g {
	case Grade10, Grade11, Grade12:
		return true
	}
	return false
}

// Student represents a tutored student.
type Student struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Grade       Grade     `db:"grade" json:"grade"`
	ClassName   string    `db:"class_name" json:"class_name"`
	HeadTeacher string    `db:"head_teacher" json:"head_teacher"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	Notes       string    `db:"notes" json:"notes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ActiveFilter constrains the is_active column when listing students.
type ActiveFilter string

const (
	ActiveAll  ActiveFilter = "all"
	ActiveOnly ActiveFilter = "active"
	Inactive   ActiveFilter = "inactive"
)

// StudentFilter encapsulates the recognised student list options. Zero
// values impose no constraint.
type StudentFilter struct {
	Search      string
	Grade       Grade
	ClassName   string
	HeadTeacher string
	Active      ActiveFilter
}

// LatestExamSummary carries the single latest exam shown on the list view.
type LatestExamSummary struct {
	ExamName   string    `json:"exam_name"`
	ExamDate   time.Time `json:"exam_date"`
	TotalScore float64   `json:"total_score"`
	ClassRank  *int      `json:"class_rank"`
	GradeRank  *int      `json:"grade_rank"`
}

// StudentListItem is the admin list projection: one row per student with
// their latest exam and a coarse trend tag.
type StudentListItem struct {
	Student
	ExamCount   int                `json:"exam_count"`
	LatestExam  *LatestExamSummary `json:"latest_exam"`
	LatestTrend TrendLabel         `json:"latest_trend"`
}
