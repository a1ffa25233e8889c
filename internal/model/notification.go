package model

import "time"

// NotificationType categorizes why a notification was sent.
type NotificationType string

const (
	NotificationLotteryWon    NotificationType = "lottery_won"
	NotificationLotteryLost   NotificationType = "lottery_lost"
	NotificationSecondChance  NotificationType = "second_chance"
	NotificationEventCanceled NotificationType = "event_canceled"
	NotificationOrganizer     NotificationType = "organizer_message"
)

// IsValid reports whether the notification type is one of the known values.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationLotteryWon, NotificationLotteryLost,
		NotificationSecondChance, NotificationEventCanceled, NotificationOrganizer:
		return true
	}
	return false
}

// Notification is a message addressed to one device about one event.
type Notification struct {
	Base
	DeviceID  string           `json:"device_id"`
	EventID   string           `json:"event_id,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

func (n *Notification) Kind() string { return "notifications" }
