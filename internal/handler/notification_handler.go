package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/service"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
	"github.com/campushub/timetable-api/pkg/response"
)

// NotificationHandler manages broadcast endpoints.
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler constructs handler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// Announce godoc
// @Summary Send an announcement to every student
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Router /notifications/announcement [post]
func (h *NotificationHandler) Announce(c *gin.Context) {
	var req service.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	notification, err := h.service.Announce(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notification, "Announcement sent successfully")
}

// TimetableUpdate godoc
// @Summary Email every student that the timetable changed
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /notifications/timetable-update [post]
func (h *NotificationHandler) TimetableUpdate(c *gin.Context) {
	if err := h.service.BroadcastTimetableUpdate(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Timetable update notification sent successfully", nil)
}

// Announcements godoc
// @Summary List stored announcements
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/announcements [get]
func (h *NotificationHandler) Announcements(c *gin.Context) {
	announcements, err := h.service.List(c.Request.Context(), models.NotificationAnnouncement)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcements, nil)
}
