package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

// StudentRepository manages persistence for student roster records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = "id, name, grade, class_name, head_teacher, is_active, notes, created_at, updated_at"

// List returns students matching the provided filters ordered by
// grade, class and name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	if r.db == nil {
		return nil, appErrors.ErrStoreNotConfigured
	}

	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Grade != "" {
		conditions = append(conditions, fmt.Sprintf("grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.ClassName != "" {
		conditions = append(conditions, fmt.Sprintf("class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.HeadTeacher != "" {
		conditions = append(conditions, fmt.Sprintf("head_teacher = $%d", len(args)+1))
		args = append(args, filter.HeadTeacher)
	}
	switch filter.Active {
	case models.ActiveOnly:
		conditions = append(conditions, "COALESCE(is_active, true) = true")
	case models.Inactive:
		conditions = append(conditions, "COALESCE(is_active, true) = false")
	}

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY grade ASC, class_name ASC, name ASC",
		studentColumns, strings.Join(conditions, " AND "))

	var rows []models.StudentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storeErr("list students", err)
	}

	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.Domain())
	}
	return students, nil
}

// FindByID fetches a single student. Callers map sql.ErrNoRows to
// their own not-found error.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if r.db == nil {
		return nil, appErrors.ErrStoreNotConfigured
	}

	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var row models.StudentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storeErr("find student", err)
	}
	student := row.Domain()
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if r.db == nil {
		return appErrors.ErrStoreNotConfigured
	}

	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	const query = `INSERT INTO students (id, name, grade, class_name, head_teacher, is_active, notes, created_at, updated_at)
        VALUES (:id, :name, :grade, :class_name, :head_teacher, :is_active, :notes, :created_at, :updated_at)`
	row := models.StudentRowOf(*student)
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return storeErr("create student", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	if r.db == nil {
		return appErrors.ErrStoreNotConfigured
	}

	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, grade = :grade, class_name = :class_name,
        head_teacher = :head_teacher, is_active = :is_active, notes = :notes, updated_at = :updated_at
        WHERE id = :id`
	row := models.StudentRowOf(*student)
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return storeErr("update student", err)
	}
	return nil
}
