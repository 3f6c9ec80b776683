package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

func TestVideoOverrideRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVideoOverrideRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT course_id, video_url, updated_at FROM course_video_overrides ORDER BY course_id ASC").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "video_url", "updated_at"}).
			AddRow("course-1", "https://cdn.example.com/v1.mp4", now).
			AddRow("course-2", "https://cdn.example.com/v2.mp4", now))

	overrides, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	assert.Equal(t, "course-1", overrides[0].CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoOverrideRepositoryGetAbsent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVideoOverrideRepository(db)

	mock.ExpectQuery("SELECT video_url FROM course_video_overrides WHERE course_id").
		WithArgs("course-x").
		WillReturnRows(sqlmock.NewRows([]string{"video_url"}))

	url, err := repo.Get(context.Background(), "course-x")
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoOverrideRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVideoOverrideRepository(db)

	mock.ExpectExec("INSERT INTO course_video_overrides .+ ON CONFLICT \\(course_id\\) DO UPDATE").
		WithArgs("course-1", "https://cdn.example.com/v1.mp4", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), "course-1", "https://cdn.example.com/v1.mp4")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoOverrideRepositoryNilDB(t *testing.T) {
	repo := NewVideoOverrideRepository(nil)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrStoreNotConfigured)

	err = repo.Delete(context.Background(), "course-1")
	assert.ErrorIs(t, err, appErrors.ErrStoreNotConfigured)
}
