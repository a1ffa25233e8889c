package worker

import (
	"context"

	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/queue"
)

// NotificationSink persists drained notifications; the notification cache
// manager satisfies it.
type NotificationSink interface {
	Create(ctx context.Context, notification *model.Notification) error
}

// NotificationWorker drains the notification queue and persists each message
// through the notification cache manager, which makes it visible to every
// subscribed consumer via the usual change-feed round trip.
type NotificationWorker struct {
	notifications NotificationSink
	queue         queue.NotificationQueue
}

func NewNotificationWorker(notifications NotificationSink, q queue.NotificationQueue) *NotificationWorker {
	return &NotificationWorker{
		notifications: notifications,
		queue:         q,
	}
}

func (w *NotificationWorker) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			err := w.notifications.Create(ctx, msg.Data)
			if err != nil {
				// store hiccup: requeue for a delayed retry
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
