package worker

import (
	"context"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/service"
	"github.com/Matrix-F25/matrix-events-sub000/pkg/logger"

	"go.uber.org/zap"
)

// ExpiryWorker closes response windows that ran past the configured timeout.
// It scans the event cache on a ticker and runs the expiry sweep for every
// event whose pending entrants have had longer than timeout to answer.
type ExpiryWorker struct {
	events   *cache.EventCache
	lottery  service.LotteryService
	timeout  time.Duration
	interval time.Duration
	log      *zap.Logger
}

func NewExpiryWorker(events *cache.EventCache, lottery service.LotteryService, timeout, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		events:   events,
		lottery:  lottery,
		timeout:  timeout,
		interval: interval,
		log:      logger.WithComponent("expiry_worker"),
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Sweep(ctx, time.Now())
			}
		}
	}()
}

// Sweep expires every event overdue at now. Failures are logged and skipped;
// the next tick retries them.
func (w *ExpiryWorker) Sweep(ctx context.Context, now time.Time) {
	for _, event := range w.overdue(now) {
		if err := w.lottery.ExpirePending(ctx, event.GetID()); err != nil {
			w.log.Warn("expiry sweep failed",
				zap.String("event_id", event.GetID()), zap.Error(err))
			continue
		}
		w.log.Info("expired pending invitations",
			zap.String("event_id", event.GetID()),
			zap.String("event_name", event.Name))
	}
}

func (w *ExpiryWorker) overdue(now time.Time) []*model.Event {
	return w.events.Filter(func(e *model.Event) bool {
		return e.IsAwaitingResponses() &&
			e.LotteryDrawnAt != nil &&
			now.Sub(*e.LotteryDrawnAt) >= w.timeout
	})
}
