package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

type mockOverrideRepo struct {
	overrides map[string]string
}

func (m *mockOverrideRepo) List(ctx context.Context) ([]models.VideoOverride, error) {
	out := make([]models.VideoOverride, 0, len(m.overrides))
	for id, url := range m.overrides {
		out = append(out, models.VideoOverride{CourseID: id, VideoURL: url, UpdatedAt: time.Now()})
	}
	return out, nil
}

func (m *mockOverrideRepo) Get(ctx context.Context, courseID string) (string, error) {
	return m.overrides[courseID], nil
}

func (m *mockOverrideRepo) Upsert(ctx context.Context, courseID, videoURL string) error {
	if m.overrides == nil {
		m.overrides = make(map[string]string)
	}
	m.overrides[courseID] = videoURL
	return nil
}

func (m *mockOverrideRepo) Delete(ctx context.Context, courseID string) error {
	delete(m.overrides, courseID)
	return nil
}

func TestVideoOverrideServiceSet(t *testing.T) {
	repo := &mockOverrideRepo{}
	svc := NewVideoOverrideService(repo, validator.New(), zap.NewNop())

	err := svc.Set(context.Background(), "course-1", VideoOverrideInput{VideoURL: "https://cdn.example.com/v1.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v1.mp4", repo.overrides["course-1"])
}

func TestVideoOverrideServiceSetInvalidURL(t *testing.T) {
	svc := NewVideoOverrideService(&mockOverrideRepo{}, validator.New(), zap.NewNop())

	err := svc.Set(context.Background(), "course-1", VideoOverrideInput{VideoURL: "not a url"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestVideoOverrideServiceSetMissingCourse(t *testing.T) {
	svc := NewVideoOverrideService(&mockOverrideRepo{}, validator.New(), zap.NewNop())

	err := svc.Set(context.Background(), "  ", VideoOverrideInput{VideoURL: "https://cdn.example.com/v1.mp4"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestVideoOverrideServiceGet(t *testing.T) {
	repo := &mockOverrideRepo{overrides: map[string]string{"course-1": "https://cdn.example.com/v1.mp4"}}
	svc := NewVideoOverrideService(repo, validator.New(), zap.NewNop())

	override, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v1.mp4", override.VideoURL)

	_, err = svc.Get(context.Background(), "course-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestVideoOverrideServiceDelete(t *testing.T) {
	repo := &mockOverrideRepo{overrides: map[string]string{"course-1": "https://cdn.example.com/v1.mp4"}}
	svc := NewVideoOverrideService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "course-1"))
	assert.Empty(t, repo.overrides)

	// deleting an absent override stays a no-op
	require.NoError(t, svc.Delete(context.Background(), "course-2"))
}

func TestVideoOverrideServiceListEmpty(t *testing.T) {
	svc := NewVideoOverrideService(&mockOverrideRepo{}, validator.New(), zap.NewNop())

	overrides, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, overrides)
	assert.Empty(t, overrides)
}
