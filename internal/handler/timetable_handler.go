package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/timetable-api/internal/service"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
	"github.com/campushub/timetable-api/pkg/response"
)

// TimetableHandler serves per-student timetables and exports.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Get godoc
// @Summary Weekly timetable for a student
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/{studentId} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	timetable, err := h.service.ForStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Export godoc
// @Summary Export a student's timetable
// @Tags Timetable
// @Produce application/pdf
// @Produce text/csv
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {file} binary
// @Router /timetable/{studentId}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	studentID := c.Param("studentId")
	format := c.DefaultQuery("format", "pdf")

	switch format {
	case "pdf":
		data, err := h.service.ExportPDF(c.Request.Context(), studentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetable-%s.pdf", studentID))
		c.Data(http.StatusOK, "application/pdf", data)
	case "csv":
		data, err := h.service.ExportCSV(c.Request.Context(), studentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetable-%s.csv", studentID))
		c.Data(http.StatusOK, "text/csv", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv"))
	}
}
