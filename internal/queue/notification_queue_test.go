package queue

import (
	"context"
	"testing"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveDelivery(t *testing.T, deliveries <-chan Delivery) Delivery {
	t.Helper()
	select {
	case d := <-deliveries:
		return d
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
		return Delivery{}
	}
}

func TestMemoryNotificationQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("published notifications reach the subscriber in order", func(t *testing.T) {
		q := NewMemoryNotificationQueue(8)
		deliveries, err := q.Subscribe(ctx)
		require.NoError(t, err)

		first := &model.Notification{DeviceID: "d1", Type: model.NotificationLotteryWon}
		second := &model.Notification{DeviceID: "d2", Type: model.NotificationLotteryLost}
		require.NoError(t, q.Publish(ctx, first))
		require.NoError(t, q.Publish(ctx, second))

		d := receiveDelivery(t, deliveries)
		assert.Equal(t, "d1", d.Data.DeviceID)
		d.Ack()

		d = receiveDelivery(t, deliveries)
		assert.Equal(t, "d2", d.Data.DeviceID)
		d.Ack()
	})

	t.Run("nack with requeue redelivers the notification", func(t *testing.T) {
		q := NewMemoryNotificationQueue(8)
		deliveries, err := q.Subscribe(ctx)
		require.NoError(t, err)

		n := &model.Notification{DeviceID: "d1", Type: model.NotificationSecondChance}
		require.NoError(t, q.Publish(ctx, n))

		d := receiveDelivery(t, deliveries)
		d.Nack(true)

		d = receiveDelivery(t, deliveries)
		assert.Equal(t, "d1", d.Data.DeviceID)
		d.Ack()
	})

	t.Run("nack without requeue drops the notification", func(t *testing.T) {
		q := NewMemoryNotificationQueue(8)
		deliveries, err := q.Subscribe(ctx)
		require.NoError(t, err)

		require.NoError(t, q.Publish(ctx, &model.Notification{DeviceID: "d1"}))
		receiveDelivery(t, deliveries).Nack(false)

		select {
		case d := <-deliveries:
			t.Fatalf("unexpected redelivery for %s", d.Data.DeviceID)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("publish honors context cancellation when full", func(t *testing.T) {
		q := NewMemoryNotificationQueue(1)
		require.NoError(t, q.Publish(ctx, &model.Notification{DeviceID: "d1"}))

		cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		err := q.Publish(cancelCtx, &model.Notification{DeviceID: "d2"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancel unblocks a delivery nobody is reading", func(t *testing.T) {
		q := NewMemoryNotificationQueue(1)
		subCtx, cancel := context.WithCancel(ctx)
		deliveries, err := q.Subscribe(subCtx)
		require.NoError(t, err)

		// the subscribe goroutine picks this up and blocks on the handoff
		require.NoError(t, q.Publish(ctx, &model.Notification{DeviceID: "d1"}))
		time.Sleep(20 * time.Millisecond)
		cancel()

		deadline := time.After(time.Second)
		for {
			select {
			case _, ok := <-deliveries:
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("subscribe goroutine still running after cancel")
			}
		}
	})

	t.Run("subscriber channel closes on context cancel", func(t *testing.T) {
		q := NewMemoryNotificationQueue(1)
		subCtx, cancel := context.WithCancel(ctx)
		deliveries, err := q.Subscribe(subCtx)
		require.NoError(t, err)

		cancel()
		select {
		case _, ok := <-deliveries:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for channel close")
		}
	})
}
