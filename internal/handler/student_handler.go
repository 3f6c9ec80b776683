package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mingshu/tutor-api/internal/models"
	"github.com/mingshu/tutor-api/internal/service"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
	"github.com/mingshu/tutor-api/pkg/response"
)

// StudentHandler exposes student roster endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students with latest exam and trend tag
// @Tags Students
// @Produce json
// @Param q query string false "Search by name"
// @Param grade query string false "Filter by grade (10/11/12)"
// @Param class_name query string false "Filter by class"
// @Param head_teacher query string false "Filter by head teacher"
// @Param is_active query string false "all, active or inactive"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:      strings.TrimSpace(c.Query("q")),
		Grade:       models.Grade(c.Query("grade")),
		ClassName:   strings.TrimSpace(c.Query("class_name")),
		HeadTeacher: strings.TrimSpace(c.Query("head_teacher")),
		Active:      models.ActiveAll,
	}
	switch c.Query("is_active") {
	case "active":
		filter.Active = models.ActiveOnly
	case "inactive":
		filter.Active = models.Inactive
	}
	if filter.Grade != "" && !filter.Grade.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "grade must be 10, 11 or 12"))
		return
	}

	items, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.StudentInput true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var input service.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.StudentInput true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var input service.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}
