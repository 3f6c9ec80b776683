package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mingshu/tutor-api/internal/models"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

type videoOverrideRepository interface {
	List(ctx context.Context) ([]models.VideoOverride, error)
	Get(ctx context.Context, courseID string) (string, error)
	Upsert(ctx context.Context, courseID, videoURL string) error
	Delete(ctx context.Context, courseID string) error
}

// VideoOverrideInput carries the replacement URL for a course video.
type VideoOverrideInput struct {
	VideoURL string `json:"video_url" validate:"required,url"`
}

// VideoOverrideService manages admin supplied course video URLs.
type VideoOverrideService struct {
	repo      videoOverrideRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVideoOverrideService constructs the video override service.
func NewVideoOverrideService(repo videoOverrideRepository, validate *validator.Validate, logger *zap.Logger) *VideoOverrideService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoOverrideService{repo: repo, validator: validate, logger: logger}
}

// List returns every configured override.
func (s *VideoOverrideService) List(ctx context.Context) ([]models.VideoOverride, error) {
	overrides, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeFailure(err, "failed to list video overrides")
	}
	if overrides == nil {
		overrides = []models.VideoOverride{}
	}
	return overrides, nil
}

// Get returns the override for one course.
func (s *VideoOverrideService) Get(ctx context.Context, courseID string) (*models.VideoOverride, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	videoURL, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return nil, storeFailure(err, "failed to get video override")
	}
	if videoURL == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no override for course")
	}
	return &models.VideoOverride{CourseID: courseID, VideoURL: videoURL}, nil
}

// Set stores or replaces the override for a course.
func (s *VideoOverrideService) Set(ctx context.Context, courseID string, input VideoOverrideInput) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if err := s.validator.Struct(input); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid video override payload")
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(input.VideoURL)); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "video url must be absolute")
	}
	if err := s.repo.Upsert(ctx, courseID, strings.TrimSpace(input.VideoURL)); err != nil {
		return storeFailure(err, "failed to store video override")
	}
	s.logger.Info("video override set", zap.String("course_id", courseID))
	return nil
}

// Delete removes a course's override. Missing rows are a no-op.
func (s *VideoOverrideService) Delete(ctx context.Context, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if err := s.repo.Delete(ctx, courseID); err != nil {
		return storeFailure(err, "failed to delete video override")
	}
	s.logger.Info("video override cleared", zap.String("course_id", courseID))
	return nil
}
