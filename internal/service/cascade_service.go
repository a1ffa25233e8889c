package service

import (
	"context"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/queue"
)

// CascadeService implements the cross-entity deletes: removing a poster or a
// profile must leave no dangling reference in any event document.
type CascadeService interface {
	// DeletePoster removes the poster document and clears the poster field of
	// the event that references it.
	DeletePoster(ctx context.Context, posterID string) error
	// DeleteProfile cancels every event the profile organizes (attendees are
	// notified first) and scrubs the profile's device id from the lists and
	// geolocation map of every other event.
	DeleteProfile(ctx context.Context, profileID string) error
}

type CascadeServiceImpl struct {
	events            *cache.EventCache
	profiles          *cache.ProfileCache
	posters           *cache.PosterCache
	notificationQueue queue.NotificationQueue
}

func NewCascadeService(
	events *cache.EventCache,
	profiles *cache.ProfileCache,
	posters *cache.PosterCache,
	notificationQueue queue.NotificationQueue,
) CascadeService {
	return &CascadeServiceImpl{
		events:            events,
		profiles:          profiles,
		posters:           posters,
		notificationQueue: notificationQueue,
	}
}

func (s *CascadeServiceImpl) DeletePoster(ctx context.Context, posterID string) error {
	poster, err := s.posters.GetPoster(posterID)
	if err != nil {
		return err
	}

	for _, event := range s.events.GetAll() {
		if event.PosterID != posterID {
			continue
		}
		updated := event.Clone()
		updated.PosterID = ""
		if err := s.events.UpdateEvent(ctx, updated); err != nil {
			return err
		}
	}

	return s.posters.Delete(ctx, poster)
}

func (s *CascadeServiceImpl) DeleteProfile(ctx context.Context, profileID string) error {
	profile, err := s.profiles.GetProfile(profileID)
	if err != nil {
		return err
	}
	deviceID := profile.DeviceID

	// cancel organized events: notify everyone on any list, then delete
	for _, event := range s.events.ByOrganizer(deviceID) {
		if err := s.cancelEvent(ctx, event); err != nil {
			return err
		}
	}

	// scrub the device from every remaining event
	for _, event := range s.events.WithEntrant(deviceID) {
		if event.OrganizerID == deviceID {
			continue // already deleted above
		}
		updated := event.Clone()
		if updated.RemoveEverywhere(deviceID) {
			if err := s.events.UpdateEvent(ctx, updated); err != nil {
				return err
			}
		}
	}

	return s.profiles.Delete(ctx, profile)
}

func (s *CascadeServiceImpl) cancelEvent(ctx context.Context, event *model.Event) error {
	now := time.Now().UTC()
	attendees := map[string]bool{}
	for _, list := range [][]string{event.WaitList, event.PendingList, event.AcceptedList, event.DeclinedList} {
		for _, deviceID := range list {
			attendees[deviceID] = true
		}
	}
	for deviceID := range attendees {
		publishNotification(ctx, s.notificationQueue, &model.Notification{
			DeviceID:  deviceID,
			EventID:   event.GetID(),
			Type:      model.NotificationEventCanceled,
			Title:     event.Name + " was cancelled",
			Body:      "The organizer's account was removed, so the event no longer takes place.",
			CreatedAt: now,
		})
	}

	if event.PosterID != "" {
		if poster, err := s.posters.GetPoster(event.PosterID); err == nil {
			if err := s.posters.Delete(ctx, poster); err != nil {
				return err
			}
		}
	}
	return s.events.Delete(ctx, event)
}
