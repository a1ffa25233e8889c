package connector

import (
	"context"
	"testing"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/store"
	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listRecorder struct {
	lists chan []*model.Profile
}

func newListRecorder() *listRecorder {
	return &listRecorder{lists: make(chan []*model.Profile, 16)}
}

func (r *listRecorder) OnCollectionChanged(items []*model.Profile) {
	r.lists <- items
}

func (r *listRecorder) next(t *testing.T) []*model.Profile {
	t.Helper()
	select {
	case list := <-r.lists:
		return list
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for collection change")
		return nil
	}
}

func newProfileConnector(t *testing.T) (*Connector[*model.Profile], *listRecorder, context.CancelFunc) {
	t.Helper()
	collection := store.NewMemoryStore().Collection("profiles")
	conn := New(collection, func() *model.Profile { return &model.Profile{} })
	recorder := newListRecorder()
	conn.SetListener(recorder)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, conn.Start(ctx))
	// initial read delivers the empty collection
	assert.Empty(t, recorder.next(t))
	return conn, recorder, cancel
}

func TestConnector(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns the store id", func(t *testing.T) {
		conn, recorder, cancel := newProfileConnector(t)
		defer cancel()

		p := &model.Profile{DeviceID: "device-1", Name: "Alice"}
		require.NoError(t, conn.Create(ctx, p))
		assert.NotEmpty(t, p.GetID())

		list := recorder.next(t)
		require.Len(t, list, 1)
		assert.Equal(t, p.GetID(), list[0].GetID())
		assert.Equal(t, "Alice", list[0].Name)
	})

	t.Run("own writes surface only through the feed", func(t *testing.T) {
		conn, recorder, cancel := newProfileConnector(t)
		defer cancel()

		p := &model.Profile{DeviceID: "device-1", Name: "Alice"}
		require.NoError(t, conn.Create(ctx, p))
		recorder.next(t)

		updated := *p
		updated.Name = "Alice B."
		require.NoError(t, conn.Update(ctx, &updated))

		list := recorder.next(t)
		require.Len(t, list, 1)
		assert.Equal(t, "Alice B.", list[0].Name)

		require.NoError(t, conn.Delete(ctx, p))
		assert.Empty(t, recorder.next(t))
	})

	t.Run("update and delete guard against missing ids", func(t *testing.T) {
		conn, _, cancel := newProfileConnector(t)
		defer cancel()

		unsaved := &model.Profile{DeviceID: "device-2"}
		assert.ErrorIs(t, conn.Update(ctx, unsaved), apperrors.ErrMissingID)
		assert.ErrorIs(t, conn.Delete(ctx, unsaved), apperrors.ErrMissingID)
	})

	t.Run("changes from other clients are observed too", func(t *testing.T) {
		collection := store.NewMemoryStore().Collection("profiles")
		conn := New(collection, func() *model.Profile { return &model.Profile{} })
		recorder := newListRecorder()
		conn.SetListener(recorder)

		feedCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		require.NoError(t, conn.Start(feedCtx))
		recorder.next(t)

		// another client writing straight to the collection
		_, err := collection.Add(ctx, []byte(`{"device_id":"other","name":"Other"}`))
		require.NoError(t, err)

		list := recorder.next(t)
		require.Len(t, list, 1)
		assert.Equal(t, "other", list[0].DeviceID)
		assert.NotEmpty(t, list[0].GetID())
	})
}
