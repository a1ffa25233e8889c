package queue

import (
	"context"

	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
)

type Delivery struct {
	Data *model.Notification
	Ack  func()
	Nack func(requeue bool)
}

// NotificationQueue decouples notification fan-out (lottery results, second
// chances, cancellations) from the request path that produced them.
type NotificationQueue interface {
	Publish(ctx context.Context, notification *model.Notification) error
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

// MemoryNotificationQueue is the channel-backed queue used by tests and
// single-process runs.
type MemoryNotificationQueue struct {
	ch chan *model.Notification
}

func NewMemoryNotificationQueue(bufferSize int) *MemoryNotificationQueue {
	return &MemoryNotificationQueue{
		ch: make(chan *model.Notification, bufferSize),
	}
}

func (q *MemoryNotificationQueue) Publish(ctx context.Context, notification *model.Notification) error {
	select {
	case q.ch <- notification:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryNotificationQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case notification, ok := <-q.ch:
				if !ok {
					return
				}

				delivery := Delivery{
					Data: notification,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- notification
						}
					},
				}
				select {
				case out <- delivery:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
