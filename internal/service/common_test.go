package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/queue"
	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeBackend stands in for the store-plus-connector round trip. Every write
// immediately replays the full collection into the cache, so tests observe the
// same read-your-write-via-feed behavior as production, just synchronously.
type fakeBackend[T model.Entity] struct {
	items    []T
	listener interface{ OnCollectionChanged(items []T) }
}

func (b *fakeBackend[T]) sync() {
	if b.listener != nil {
		b.listener.OnCollectionChanged(append([]T(nil), b.items...))
	}
}

func (b *fakeBackend[T]) Create(_ context.Context, item T) error {
	item.SetID(uuid.NewString())
	b.items = append(b.items, item)
	b.sync()
	return nil
}

func (b *fakeBackend[T]) Update(_ context.Context, item T) error {
	for i, existing := range b.items {
		if existing.GetID() == item.GetID() {
			b.items[i] = item
			b.sync()
			return nil
		}
	}
	return apperrors.ErrDocumentNotFound
}

func (b *fakeBackend[T]) Delete(_ context.Context, item T) error {
	for i, existing := range b.items {
		if existing.GetID() == item.GetID() {
			b.items = append(b.items[:i], b.items[i+1:]...)
			b.sync()
			return nil
		}
	}
	return apperrors.ErrDocumentNotFound
}

// captureQueue records published notifications instead of delivering them.
type captureQueue struct {
	published []*model.Notification
}

func (q *captureQueue) Publish(_ context.Context, n *model.Notification) error {
	q.published = append(q.published, n)
	return nil
}

func (q *captureQueue) Subscribe(context.Context) (<-chan queue.Delivery, error) {
	ch := make(chan queue.Delivery)
	close(ch)
	return ch, nil
}

func (q *captureQueue) byType(t model.NotificationType) []*model.Notification {
	var out []*model.Notification
	for _, n := range q.published {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	events        *cache.EventCache
	profiles      *cache.ProfileCache
	posters       *cache.PosterCache
	queue         *captureQueue
	eventBackend  *fakeBackend[*model.Event]
	registration  RegistrationService
	lottery       LotteryService
	cascade       CascadeService
}

func newFixture(seed int64) *fixture {
	eventBackend := &fakeBackend[*model.Event]{}
	events := cache.NewEventCache(eventBackend)
	eventBackend.listener = events

	profileBackend := &fakeBackend[*model.Profile]{}
	profiles := cache.NewProfileCache(profileBackend)
	profileBackend.listener = profiles

	posterBackend := &fakeBackend[*model.Poster]{}
	posters := cache.NewPosterCache(posterBackend)
	posterBackend.listener = posters

	q := &captureQueue{}
	rng := rand.New(rand.NewSource(seed))

	return &fixture{
		events:       events,
		profiles:     profiles,
		posters:      posters,
		queue:        q,
		eventBackend: eventBackend,
		registration: NewRegistrationService(events, posters, q),
		lottery:      NewLotteryService(events, q, rng),
		cascade:      NewCascadeService(events, profiles, posters, q),
	}
}

func validEventParams() model.CreateEventParams {
	now := time.Now()
	return model.CreateEventParams{
		Name:              "Community Run",
		OrganizerID:       "organizer-1",
		EventStart:        now.Add(72 * time.Hour),
		EventEnd:          now.Add(76 * time.Hour),
		RegistrationStart: now.Add(time.Hour),
		RegistrationEnd:   now.Add(48 * time.Hour),
		EventCapacity:     2,
		WaitlistCapacity:  model.UnlimitedWaitlist,
	}
}

// seedEvent persists an event and returns its id.
func seedEvent(t *testing.T, f *fixture, mutate func(e *model.Event)) string {
	t.Helper()
	event, err := model.NewEvent(validEventParams())
	require.NoError(t, err)
	if mutate != nil {
		mutate(event)
	}
	require.NoError(t, f.eventBackend.Create(context.Background(), event))
	return event.GetID()
}

func seedProfile(t *testing.T, f *fixture, deviceID string) string {
	t.Helper()
	p := &model.Profile{DeviceID: deviceID, Name: "Profile " + deviceID}
	require.NoError(t, f.profiles.Create(context.Background(), p))
	return p.GetID()
}
