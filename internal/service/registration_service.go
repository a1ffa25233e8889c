package service

import (
	"context"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/queue"
	"github.com/Matrix-F25/matrix-events-sub000/pkg/logger"

	"go.uber.org/zap"
)

// RegistrationService owns the event lifecycle and the entrant list
// transitions. Every mutation follows the same shape: read the cached
// snapshot, deep-copy it, apply the transition locally, then persist the copy
// through the cache manager. The shared view only changes once the write
// round-trips through the store's change feed.
type RegistrationService interface {
	CreateEvent(ctx context.Context, params model.CreateEventParams) (*model.Event, error)
	UpdateEvent(ctx context.Context, event *model.Event) error
	DeleteEvent(ctx context.Context, eventID string) error
	OpenRegistration(ctx context.Context, eventID string) error

	JoinWaitlist(ctx context.Context, eventID, deviceID string, location *model.GeoPoint) error
	LeaveWaitlist(ctx context.Context, eventID, deviceID string) error
	AcceptInvitation(ctx context.Context, eventID, deviceID string) error
	DeclineInvitation(ctx context.Context, eventID, deviceID string) error
}

type RegistrationServiceImpl struct {
	events            *cache.EventCache
	posters           *cache.PosterCache
	notificationQueue queue.NotificationQueue
}

func NewRegistrationService(
	events *cache.EventCache,
	posters *cache.PosterCache,
	notificationQueue queue.NotificationQueue,
) RegistrationService {
	return &RegistrationServiceImpl{
		events:            events,
		posters:           posters,
		notificationQueue: notificationQueue,
	}
}

func (s *RegistrationServiceImpl) CreateEvent(ctx context.Context, params model.CreateEventParams) (*model.Event, error) {
	event, err := model.NewEvent(params)
	if err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *RegistrationServiceImpl) UpdateEvent(ctx context.Context, event *model.Event) error {
	return s.events.Update(ctx, event)
}

// DeleteEvent removes the event and its poster document, if any.
func (s *RegistrationServiceImpl) DeleteEvent(ctx context.Context, eventID string) error {
	event, err := s.events.GetEvent(eventID)
	if err != nil {
		return err
	}
	if event.PosterID != "" {
		if poster, posterErr := s.posters.GetPoster(event.PosterID); posterErr == nil {
			if err := s.posters.Delete(ctx, poster); err != nil {
				return err
			}
		}
	}
	return s.events.Delete(ctx, event)
}

// OpenRegistration flips the organizer-controlled flag that starts accepting
// waitlist joins.
func (s *RegistrationServiceImpl) OpenRegistration(ctx context.Context, eventID string) error {
	event, err := s.events.GetEvent(eventID)
	if err != nil {
		return err
	}
	updated := event.Clone()
	updated.RegistrationOpened = true
	return s.events.UpdateEvent(ctx, updated)
}

func (s *RegistrationServiceImpl) JoinWaitlist(ctx context.Context, eventID, deviceID string, location *model.GeoPoint) error {
	event, err := s.events.GetEvent(eventID)
	if err != nil {
		return err
	}
	updated := event.Clone()
	if err := updated.JoinWaitlist(deviceID, location); err != nil {
		return err
	}
	return s.events.UpdateEvent(ctx, updated)
}

func (s *RegistrationServiceImpl) LeaveWaitlist(ctx context.Context, eventID, deviceID string) error {
	event, err := s.events.GetEvent(eventID)
	if err != nil {
		return err
	}
	updated := event.Clone()
	if err := updated.LeaveWaitlist(deviceID); err != nil {
		return err
	}
	return s.events.UpdateEvent(ctx, updated)
}

func (s *RegistrationServiceImpl) AcceptInvitation(ctx context.Context, eventID, deviceID string) error {
	event, err := s.events.GetEvent(eventID)
	if err != nil {
		return err
	}
	updated := event.Clone()
	if err := updated.JoinAccepted(deviceID); err != nil {
		return err
	}
	return s.events.UpdateEvent(ctx, updated)
}

// DeclineInvitation records the decline and, when the second chance promotes
// a waitlisted entrant, tells them about it.
func (s *RegistrationServiceImpl) DeclineInvitation(ctx context.Context, eventID, deviceID string) error {
	event, err := s.events.GetEvent(eventID)
	if err != nil {
		return err
	}
	updated := event.Clone()
	promoted, err := updated.JoinDeclined(deviceID)
	if err != nil {
		return err
	}
	if err := s.events.UpdateEvent(ctx, updated); err != nil {
		return err
	}

	if promoted != "" {
		publishNotification(ctx, s.notificationQueue, &model.Notification{
			DeviceID:  promoted,
			EventID:   updated.GetID(),
			Type:      model.NotificationSecondChance,
			Title:     "You're off the waitlist!",
			Body:      "A spot opened up for " + updated.Name + ". Accept or decline your invitation.",
			CreatedAt: time.Now().UTC(),
		})
	}
	return nil
}

// publishNotification is best-effort: a failed publish never rolls back the
// registration mutation that triggered it.
func publishNotification(ctx context.Context, q queue.NotificationQueue, n *model.Notification) {
	if q == nil {
		return
	}
	if err := q.Publish(ctx, n); err != nil {
		logger.WithComponent("service").Warn("notification publish failed",
			zap.String("device_id", n.DeviceID),
			zap.String("event_id", n.EventID),
			zap.Error(err))
	}
}
