package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "grade", "class_name", "head_teacher", "is_active", "notes", "created_at", "updated_at"}).
		AddRow("stu-1", "王小明", "11", "3班", "李老师", true, "", now, now)
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT .+ FROM students WHERE 1=1 ORDER BY grade ASC, class_name ASC, name ASC").
		WillReturnRows(studentRows())

	students, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "王小明", students[0].Name)
	assert.Equal(t, models.Grade11, students[0].Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM students WHERE 1=1 AND name ILIKE \$1 AND grade = \$2 AND COALESCE\(is_active, true\) = true`).
		WithArgs("%小明%", models.Grade11).
		WillReturnRows(studentRows())

	_, err := repo.List(context.Background(), models.StudentFilter{
		Search: "小明",
		Grade:  models.Grade11,
		Active: models.ActiveOnly,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListNullableColumns(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "grade", "class_name", "head_teacher", "is_active", "notes", "created_at", "updated_at"}).
		AddRow("stu-2", "A", "10", "1班", nil, nil, nil, now, now)
	mock.ExpectQuery("SELECT .+ FROM students").WillReturnRows(rows)

	students, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.True(t, students[0].IsActive)
	assert.Equal(t, "", students[0].HeadTeacher)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM students WHERE id = \$1`).
		WithArgs("stu-1").
		WillReturnRows(studentRows())

	student, err := repo.FindByID(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDMissingSchema(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	pqErr := &pq.Error{Code: "42P01", Message: `relation "students" does not exist`}
	mock.ExpectQuery(`SELECT .+ FROM students WHERE id = \$1`).
		WithArgs("stu-1").
		WillReturnError(pqErr)

	_, err := repo.FindByID(context.Background(), "stu-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrMissingSchema.Code, appErr.Code)
}

func TestStudentRepositoryFindByIDAbsent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM students WHERE id = \$1`).
		WithArgs("stu-x").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// absence stays sql.ErrNoRows so callers can map it to not-found
	_, err := repo.FindByID(context.Background(), "stu-x")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{Name: "A", Grade: models.Grade10, ClassName: "1班", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.False(t, student.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	student := &models.Student{ID: "stu-1", Name: "A", Grade: models.Grade10, ClassName: "1班"}
	require.NoError(t, repo.Update(context.Background(), student))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryNilDB(t *testing.T) {
	repo := NewStudentRepository(nil)

	_, err := repo.List(context.Background(), models.StudentFilter{})
	assert.ErrorIs(t, err, appErrors.ErrStoreNotConfigured)

	_, err = repo.FindByID(context.Background(), "stu-1")
	assert.ErrorIs(t, err, appErrors.ErrStoreNotConfigured)

	err = repo.Create(context.Background(), &models.Student{})
	assert.ErrorIs(t, err, appErrors.ErrStoreNotConfigured)
}
