package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/timetable-api/internal/service"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
	"github.com/campushub/timetable-api/pkg/response"
)

// FacultyHandler manages faculty-course assignment endpoints.
type FacultyHandler struct {
	service *service.FacultyService
}

// NewFacultyHandler constructs handler.
func NewFacultyHandler(svc *service.FacultyService) *FacultyHandler {
	return &FacultyHandler{service: svc}
}

// List godoc
// @Summary List faculty-course assignments
// @Tags Faculty
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /faculty [get]
func (h *FacultyHandler) List(c *gin.Context) {
	assignments, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// AssignCourse godoc
// @Summary Assign a faculty member to a course
// @Tags Faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AssignFacultyRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /faculty/assign-course [post]
func (h *FacultyHandler) AssignCourse(c *gin.Context) {
	var req service.AssignFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment, "Faculty assigned to course successfully")
}
