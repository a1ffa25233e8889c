package cache

import (
	"context"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"
)

// EventCache is the Event cache manager: the generic manager plus the
// event-specific query helpers the UI layers scan with.
type EventCache struct {
	*Manager[*model.Event]
}

func NewEventCache(writer Writer[*model.Event]) *EventCache {
	return &EventCache{Manager: NewManager[*model.Event](writer)}
}

func (c *EventCache) GetEvent(id string) (*model.Event, error) {
	event, ok := c.GetByID(id)
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

// OpenForRegistration returns events still accepting waitlist joins at t.
func (c *EventCache) OpenForRegistration(t time.Time) []*model.Event {
	return c.Filter(func(e *model.Event) bool {
		return e.IsOpen() && t.Before(e.RegistrationEnd)
	})
}

// ByOrganizer returns every event the given device organizes.
func (c *EventCache) ByOrganizer(deviceID string) []*model.Event {
	return c.Filter(func(e *model.Event) bool {
		return e.OrganizerID == deviceID
	})
}

// WithEntrant returns every event where the device sits on any list.
func (c *EventCache) WithEntrant(deviceID string) []*model.Event {
	return c.Filter(func(e *model.Event) bool {
		return e.OnAnyList(deviceID)
	})
}

// PendingFor returns events where the device is awaiting an accept/decline.
func (c *EventCache) PendingFor(deviceID string) []*model.Event {
	return c.Filter(func(e *model.Event) bool {
		return e.InPending(deviceID)
	})
}

// WaitlistedFor returns events where the device is still on the waitlist.
func (c *EventCache) WaitlistedFor(deviceID string) []*model.Event {
	return c.Filter(func(e *model.Event) bool {
		return e.InWaitlist(deviceID)
	})
}

// ByQRHash resolves a scanned QR token to its event.
func (c *EventCache) ByQRHash(hash string) (*model.Event, error) {
	matches := c.Filter(func(e *model.Event) bool {
		return e.QRCodeHash == hash
	})
	if len(matches) == 0 {
		return nil, apperrors.ErrEventNotFound
	}
	return matches[0], nil
}

// UpdateEvent persists a mutated copy of an event document.
func (c *EventCache) UpdateEvent(ctx context.Context, event *model.Event) error {
	return c.Update(ctx, event)
}
