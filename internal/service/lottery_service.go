package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/queue"
)

// LotteryService runs the draw that promotes waitlisted entrants to pending
// and the sweep that expires unanswered invitations.
type LotteryService interface {
	// RunLottery draws up to the event capacity from the waitlist and closes
	// registration for new joins. Returns the winning device ids.
	RunLottery(ctx context.Context, eventID string) ([]string, error)
	// ExpirePending declines every entrant still pending, backfilling each
	// vacancy from the waitlist. Entrants promoted by the sweep get a fresh
	// response window.
	ExpirePending(ctx context.Context, eventID string) error
}

type LotteryServiceImpl struct {
	events            *cache.EventCache
	notificationQueue queue.NotificationQueue
	rng               *rand.Rand
}

// NewLotteryService builds the lottery service. rng may be nil, in which case
// a time-seeded source is used; tests inject a fixed seed.
func NewLotteryService(events *cache.EventCache, notificationQueue queue.NotificationQueue, rng *rand.Rand) LotteryService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &LotteryServiceImpl{
		events:            events,
		notificationQueue: notificationQueue,
		rng:               rng,
	}
}

func (s *LotteryServiceImpl) RunLottery(ctx context.Context, eventID string) ([]string, error) {
	event, err := s.events.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	updated := event.Clone()
	winners, err := updated.DrawLottery(s.rng)
	if err != nil {
		return nil, err
	}
	if err := s.events.UpdateEvent(ctx, updated); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, deviceID := range winners {
		publishNotification(ctx, s.notificationQueue, &model.Notification{
			DeviceID:  deviceID,
			EventID:   updated.GetID(),
			Type:      model.NotificationLotteryWon,
			Title:     "You won the lottery for " + updated.Name,
			Body:      "Accept or decline your invitation before the deadline.",
			CreatedAt: now,
		})
	}
	// entrants left on the waitlist stay eligible for second-chance promotion
	for _, deviceID := range updated.WaitList {
		publishNotification(ctx, s.notificationQueue, &model.Notification{
			DeviceID:  deviceID,
			EventID:   updated.GetID(),
			Type:      model.NotificationLotteryLost,
			Title:     "Not selected for " + updated.Name,
			Body:      "You stay on the waitlist and may still be promoted if someone declines.",
			CreatedAt: now,
		})
	}
	return winners, nil
}

func (s *LotteryServiceImpl) ExpirePending(ctx context.Context, eventID string) error {
	event, err := s.events.GetEvent(eventID)
	if err != nil {
		return err
	}
	updated := event.Clone()
	_, promoted, err := updated.ExpirePending()
	if err != nil {
		return err
	}
	// replacements drawn by the sweep get their own response window
	if len(promoted) > 0 {
		updated.PendingExpired = false
		windowStart := time.Now().UTC()
		updated.LotteryDrawnAt = &windowStart
	}
	if err := s.events.UpdateEvent(ctx, updated); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, deviceID := range promoted {
		publishNotification(ctx, s.notificationQueue, &model.Notification{
			DeviceID:  deviceID,
			EventID:   updated.GetID(),
			Type:      model.NotificationSecondChance,
			Title:     "You're off the waitlist!",
			Body:      "A spot opened up for " + updated.Name + ". Accept or decline your invitation.",
			CreatedAt: now,
		})
	}
	return nil
}
