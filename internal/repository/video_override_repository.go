package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

// VideoOverrideRepository manages admin supplied course video URLs.
type VideoOverrideRepository struct {
	db *sqlx.DB
}

// NewVideoOverrideRepository constructs a VideoOverrideRepository.
func NewVideoOverrideRepository(db *sqlx.DB) *VideoOverrideRepository {
	return &VideoOverrideRepository{db: db}
}

// List returns all overrides ordered by course ID.
func (r *VideoOverrideRepository) List(ctx context.Context) ([]models.VideoOverride, error) {
	if r.db == nil {
		return nil, appErrors.ErrStoreNotConfigured
	}

	const query = `SELECT course_id, video_url, updated_at FROM course_video_overrides ORDER BY course_id ASC`
	var overrides []models.VideoOverride
	if err := r.db.SelectContext(ctx, &overrides, query); err != nil {
		return nil, storeErr("list video overrides", err)
	}
	return overrides, nil
}

// Get returns the override URL for a course, or empty when none is set.
func (r *VideoOverrideRepository) Get(ctx context.Context, courseID string) (string, error) {
	if r.db == nil {
		return "", appErrors.ErrStoreNotConfigured
	}

	const query = `SELECT video_url FROM course_video_overrides WHERE course_id = $1`
	var url string
	if err := r.db.GetContext(ctx, &url, query, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", storeErr("get video override", err)
	}
	return url, nil
}

// Upsert stores or replaces the override for a course.
func (r *VideoOverrideRepository) Upsert(ctx context.Context, courseID, videoURL string) error {
	if r.db == nil {
		return appErrors.ErrStoreNotConfigured
	}

	const query = `INSERT INTO course_video_overrides (course_id, video_url, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (course_id) DO UPDATE SET video_url = EXCLUDED.video_url, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, courseID, videoURL, time.Now().UTC()); err != nil {
		return storeErr("upsert video override", err)
	}
	return nil
}

// Delete removes a course's override. Missing rows are a no-op.
func (r *VideoOverrideRepository) Delete(ctx context.Context, courseID string) error {
	if r.db == nil {
		return appErrors.ErrStoreNotConfigured
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM course_video_overrides WHERE course_id = $1", courseID); err != nil {
		return storeErr("delete video override", err)
	}
	return nil
}
