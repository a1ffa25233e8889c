package cache

import (
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"
)

// NotificationCache serves per-device notification feeds.
type NotificationCache struct {
	*Manager[*model.Notification]
}

func NewNotificationCache(writer Writer[*model.Notification]) *NotificationCache {
	return &NotificationCache{Manager: NewManager[*model.Notification](writer)}
}

func (c *NotificationCache) GetNotification(id string) (*model.Notification, error) {
	n, ok := c.GetByID(id)
	if !ok {
		return nil, apperrors.ErrNotificationNotFound
	}
	return n, nil
}

// ForDevice returns every notification addressed to a device.
func (c *NotificationCache) ForDevice(deviceID string) []*model.Notification {
	return c.Filter(func(n *model.Notification) bool {
		return n.DeviceID == deviceID
	})
}

// UnreadForDevice returns the device's unread notifications.
func (c *NotificationCache) UnreadForDevice(deviceID string) []*model.Notification {
	return c.Filter(func(n *model.Notification) bool {
		return n.DeviceID == deviceID && !n.Read
	})
}

// ForEvent returns every notification about an event.
func (c *NotificationCache) ForEvent(eventID string) []*model.Notification {
	return c.Filter(func(n *model.Notification) bool {
		return n.EventID == eventID
	})
}
