package handler

import (
	"net/http"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *cache.NotificationCache
}

func NewNotificationHandler(notifications *cache.NotificationCache) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("notifications/device/:deviceId", h.ListForDevice)
		router.POST("notifications", h.Create)
		router.PUT("notifications/:id/read", h.MarkRead)
		router.DELETE("notifications/:id", h.Delete)
	}
}

type ListNotificationsQuery struct {
	Unread bool `form:"unread"`
}

// CreateNotificationRequest lets organizers address a message to one device.
type CreateNotificationRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	EventID  string `json:"event_id"`
	Type     string `json:"type" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
}

func (h *NotificationHandler) ListForDevice(c *gin.Context) {
	var q ListNotificationsQuery
	if err := BindQuery(c, &q); err != nil {
		return
	}
	deviceID := c.Param("deviceId")
	if q.Unread {
		c.JSON(http.StatusOK, h.notifications.UnreadForDevice(deviceID))
		return
	}
	c.JSON(http.StatusOK, h.notifications.ForDevice(deviceID))
}

func (h *NotificationHandler) Create(c *gin.Context) {
	var req CreateNotificationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	notificationType := model.NotificationType(req.Type)
	if !notificationType.IsValid() {
		handleError(c, apperrors.ErrInvalidInput, "Create")
		return
	}
	notification := &model.Notification{
		DeviceID:  req.DeviceID,
		EventID:   req.EventID,
		Type:      notificationType,
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.notifications.Create(c, notification); err != nil {
		handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, notification)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notification, err := h.notifications.GetNotification(c.Param("id"))
	if err != nil {
		handleError(c, err, "MarkRead")
		return
	}
	updated := *notification
	updated.Read = true
	if err := h.notifications.Update(c, &updated); err != nil {
		handleError(c, err, "MarkRead")
		return
	}
	c.JSON(http.StatusOK, &updated)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	notification, err := h.notifications.GetNotification(c.Param("id"))
	if err != nil {
		handleError(c, err, "Delete")
		return
	}
	if err := h.notifications.Delete(c, notification); err != nil {
		handleError(c, err, "Delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
