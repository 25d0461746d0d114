package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/gin-gonic/gin"
)

type notificationHandler struct {
	notificationService portssvc.NotificationSvc
}

func registerNotificationRoutes(rg *gin.RouterGroup, notificationSvc portssvc.NotificationSvc) {
	h := &notificationHandler{notificationService: notificationSvc}

	notifications := rg.Group("/notifications")
	{
		notifications.POST("/send", h.send)
		notifications.GET("", h.list)
		notifications.POST("/:id/read", h.markRead)
	}
}

// send godoc
// @Summary Send a notification
// @Description Persists an inbox entry and, when "to" is set, tries to email it. Email failures do not fail the request.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendNotificationRequest true "Notification"
// @Success 200 {object} dto.SendNotificationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /notifications/send [post]
func (h *notificationHandler) send(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req dto.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	n, email := req.ToDomain()
	saved, err := h.notificationService.Send(c.Request.Context(), identity, n, email)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SendNotificationResponse{Message: "Notification sent", Notification: *saved})
}

// list godoc
// @Summary List own notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} dto.ListNotificationsResponse
// @Failure 401 {object} ErrorResponse
// @Router /notifications [get]
func (h *notificationHandler) list(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var params dto.ListNotificationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	notifications, err := h.notificationService.ListNotifications(c.Request.Context(), identity, params.UnreadOnly, params.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListNotificationsResponse{Notifications: notifications})
}

// markRead godoc
// @Summary Mark a notification read
// @Tags notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *notificationHandler) markRead(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), identity, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
