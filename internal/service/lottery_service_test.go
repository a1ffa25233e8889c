package service

import (
	"context"
	"testing"

	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotteryService_RunLottery(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - draws winners and notifies both sides", func(t *testing.T) {
		f := newFixture(42)
		eventID := seedEvent(t, f, func(e *model.Event) {
			e.RegistrationOpened = true
			e.WaitList = []string{"d1", "d2", "d3", "d4"}
		})

		winners, err := f.lottery.RunLottery(ctx, eventID)
		require.NoError(t, err)
		require.Len(t, winners, 2) // capacity

		event, err := f.events.GetEvent(eventID)
		require.NoError(t, err)
		assert.True(t, event.LotteryProcessed)
		assert.False(t, event.IsOpen())
		assert.True(t, event.IsAwaitingResponses())
		assert.ElementsMatch(t, winners, event.PendingList)
		assert.Len(t, event.WaitList, 2)
		for _, w := range winners {
			assert.NotContains(t, event.WaitList, w)
		}

		won := f.queue.byType(model.NotificationLotteryWon)
		require.Len(t, won, 2)
		lost := f.queue.byType(model.NotificationLotteryLost)
		require.Len(t, lost, 2)
		for _, n := range lost {
			assert.Contains(t, event.WaitList, n.DeviceID)
		}
	})

	t.Run("Success - small waitlist selects everyone", func(t *testing.T) {
		f := newFixture(42)
		eventID := seedEvent(t, f, func(e *model.Event) {
			e.RegistrationOpened = true
			e.WaitList = []string{"d1"}
		})

		winners, err := f.lottery.RunLottery(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, []string{"d1"}, winners)
		assert.Empty(t, f.queue.byType(model.NotificationLotteryLost))
	})

	t.Run("Success - same seed draws the same winners", func(t *testing.T) {
		draw := func() []string {
			f := newFixture(7)
			eventID := seedEvent(t, f, func(e *model.Event) {
				e.RegistrationOpened = true
				e.WaitList = []string{"d1", "d2", "d3", "d4", "d5"}
			})
			winners, err := f.lottery.RunLottery(ctx, eventID)
			require.NoError(t, err)
			return winners
		}
		assert.Equal(t, draw(), draw())
	})

	t.Run("Failed - lottery already processed", func(t *testing.T) {
		f := newFixture(42)
		eventID := seedEvent(t, f, func(e *model.Event) {
			e.RegistrationOpened = true
			e.LotteryProcessed = true
		})
		_, err := f.lottery.RunLottery(ctx, eventID)
		assert.ErrorIs(t, err, apperrors.ErrWrongState)
	})

	t.Run("Failed - registration never opened", func(t *testing.T) {
		f := newFixture(42)
		eventID := seedEvent(t, f, nil)
		_, err := f.lottery.RunLottery(ctx, eventID)
		assert.ErrorIs(t, err, apperrors.ErrWrongState)
	})
}

func TestLotteryService_ExpirePending(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - expires pending, backfills from the waitlist", func(t *testing.T) {
		f := newFixture(42)
		eventID := seedEvent(t, f, func(e *model.Event) {
			e.RegistrationOpened = true
			e.LotteryProcessed = true
			e.PendingList = []string{"d1", "d2"}
			e.WaitList = []string{"d3", "d4", "d5"}
		})

		require.NoError(t, f.lottery.ExpirePending(ctx, eventID))

		event, err := f.events.GetEvent(eventID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"d1", "d2"}, event.DeclinedList)
		assert.Equal(t, []string{"d3", "d4"}, event.PendingList)
		assert.Equal(t, []string{"d5"}, event.WaitList)
		// replacements get a fresh response window
		assert.False(t, event.PendingExpired)
		assert.True(t, event.IsAwaitingResponses())

		chances := f.queue.byType(model.NotificationSecondChance)
		require.Len(t, chances, 2)
		assert.Equal(t, "d3", chances[0].DeviceID)
		assert.Equal(t, "d4", chances[1].DeviceID)
	})

	t.Run("Success - empty waitlist closes the window for good", func(t *testing.T) {
		f := newFixture(42)
		eventID := seedEvent(t, f, func(e *model.Event) {
			e.RegistrationOpened = true
			e.LotteryProcessed = true
			e.PendingList = []string{"d1"}
		})

		require.NoError(t, f.lottery.ExpirePending(ctx, eventID))

		event, err := f.events.GetEvent(eventID)
		require.NoError(t, err)
		assert.True(t, event.PendingExpired)
		assert.False(t, event.IsAwaitingResponses())
		assert.Empty(t, f.queue.published)
	})

	t.Run("Failed - before the lottery ran", func(t *testing.T) {
		f := newFixture(42)
		eventID := seedEvent(t, f, func(e *model.Event) { e.RegistrationOpened = true })
		err := f.lottery.ExpirePending(ctx, eventID)
		assert.ErrorIs(t, err, apperrors.ErrWrongState)
	})
}
