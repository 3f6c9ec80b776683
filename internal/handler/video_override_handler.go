package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mingshu/tutor-api/internal/service"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
	"github.com/mingshu/tutor-api/pkg/response"
)

// VideoOverrideHandler exposes course video override endpoints.
type VideoOverrideHandler struct {
	overrides *service.VideoOverrideService
}

// NewVideoOverrideHandler constructs VideoOverrideHandler.
func NewVideoOverrideHandler(overrides *service.VideoOverrideService) *VideoOverrideHandler {
	return &VideoOverrideHandler{overrides: overrides}
}

// List godoc
// @Summary List course video overrides
// @Tags VideoOverrides
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /video-overrides [get]
func (h *VideoOverrideHandler) List(c *gin.Context) {
	overrides, err := h.overrides.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overrides)
}

// Get godoc
// @Summary Get a course's video override
// @Tags VideoOverrides
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /video-overrides/{courseId} [get]
func (h *VideoOverrideHandler) Get(c *gin.Context) {
	override, err := h.overrides.Get(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, override)
}

// Set godoc
// @Summary Set a course's video override
// @Tags VideoOverrides
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param payload body service.VideoOverrideInput true "Override payload"
// @Success 204
// @Router /video-overrides/{courseId} [put]
func (h *VideoOverrideHandler) Set(c *gin.Context) {
	var input service.VideoOverrideInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.overrides.Set(c.Request.Context(), c.Param("courseId"), input); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Remove a course's video override
// @Tags VideoOverrides
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 204
// @Router /video-overrides/{courseId} [delete]
func (h *VideoOverrideHandler) Delete(c *gin.Context) {
	if err := h.overrides.Delete(c.Request.Context(), c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
