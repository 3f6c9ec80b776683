package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mingshu/tutor-api/internal/service"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
	"github.com/mingshu/tutor-api/pkg/response"
)

// ExamHandler exposes exam record endpoints.
type ExamHandler struct {
	exams *service.ExamService
}

// NewExamHandler constructs ExamHandler.
func NewExamHandler(exams *service.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// ListByStudent godoc
// @Summary List a student's exam records
// @Tags Exams
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/exams [get]
func (h *ExamHandler) ListByStudent(c *gin.Context) {
	records, err := h.exams.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Get godoc
// @Summary Get exam record
// @Tags Exams
// @Produce json
// @Param id path string true "Exam record ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	record, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Create godoc
// @Summary Record an exam with subject scores
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body service.CreateExamRecordInput true "Exam payload"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var input service.CreateExamRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.exams.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Update an exam and replace its subject scores
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam record ID"
// @Param payload body service.UpdateExamRecordInput true "Exam payload"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	var input service.UpdateExamRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.exams.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Delete godoc
// @Summary Delete exam record
// @Tags Exams
// @Produce json
// @Param id path string true "Exam record ID"
// @Success 204
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	if err := h.exams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
