package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	appnotification "github.com/t1tandr/uevent/internal/application/notification"
	"github.com/t1tandr/uevent/internal/infrastructure/realtime"
)

// NotificationHandler serves the caller's notifications and their live feed
type NotificationHandler struct {
	BaseHandler
	notifications *appnotification.NotificationService
	hub           *realtime.Hub
	upgrader      websocket.Upgrader
	logger        *zap.Logger
}

// NewNotificationHandler creates a new notification handler. Websocket
// upgrades are accepted from allowedOrigins only; "*" accepts any origin.
func NewNotificationHandler(
	notifications *appnotification.NotificationService,
	hub *realtime.Hub,
	allowedOrigins []string,
	logger *zap.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		hub:           hub,
		logger:        logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// List godoc
// @Summary      Caller's notifications
// @Tags         notifications
// @Produce      json
// @Param        unread query bool false "Only unread"
// @Success      200 {object} dto.Response{data=[]appnotification.NotificationResponse}
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q appnotification.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, err := h.notifications.List(c.Request.Context(), userID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// UnreadCount godoc
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200 {object} dto.Response{data=appnotification.UnreadCountResponse}
// @Security     BearerAuth
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	count, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// MarkRead godoc
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID"
// @Success      200 {object} dto.Response{data=appnotification.NotificationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	n, err := h.notifications.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, n)
}

// MarkAllRead godoc
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} dto.Response{data=appnotification.MarkAllReadResponse}
// @Security     BearerAuth
// @Router       /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	result, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete notification
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID"
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), id, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Notification deleted successfully")
}

// Stream godoc
// @Summary      Live notifications
// @Description  Websocket pushing each new notification as JSON. Browsers pass the access token as ?token=.
// @Tags         notifications
// @Param        token query string true "Access token"
// @Success      101
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /notifications/ws [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(conn, h.logger)
	h.hub.Register(userID, client)
	go client.WritePump()

	client.ReadPump()
	h.hub.Unregister(userID, client)
}
