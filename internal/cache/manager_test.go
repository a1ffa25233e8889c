package cache

import (
	"context"
	"testing"

	"github.com/Matrix-F25/matrix-events-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingWriter records delegated mutations without touching any cache,
// mirroring the connector contract: writes become visible only through
// OnCollectionChanged.
type recordingWriter struct {
	created []*model.Profile
	updated []*model.Profile
	deleted []*model.Profile
}

func (w *recordingWriter) Create(ctx context.Context, p *model.Profile) error {
	w.created = append(w.created, p)
	return nil
}

func (w *recordingWriter) Update(ctx context.Context, p *model.Profile) error {
	w.updated = append(w.updated, p)
	return nil
}

func (w *recordingWriter) Delete(ctx context.Context, p *model.Profile) error {
	w.deleted = append(w.deleted, p)
	return nil
}

func profileWithID(id, deviceID string) *model.Profile {
	p := &model.Profile{DeviceID: deviceID}
	p.SetID(id)
	return p
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("mutations delegate without changing the cache", func(t *testing.T) {
		writer := &recordingWriter{}
		m := NewManager[*model.Profile](writer)

		p := profileWithID("1", "device-1")
		require.NoError(t, m.Create(ctx, p))
		require.NoError(t, m.Update(ctx, p))
		require.NoError(t, m.Delete(ctx, p))

		assert.Len(t, writer.created, 1)
		assert.Len(t, writer.updated, 1)
		assert.Len(t, writer.deleted, 1)
		// the caller's write is not synchronously visible
		assert.Empty(t, m.GetAll())
	})

	t.Run("OnCollectionChanged replaces the cache and notifies once", func(t *testing.T) {
		m := NewManager[*model.Profile](&recordingWriter{})
		notified := 0
		m.Subscribe(&ObserverFunc{F: func() { notified++ }})

		list := []*model.Profile{
			profileWithID("1", "device-1"),
			profileWithID("2", "device-2"),
		}
		m.OnCollectionChanged(list)

		assert.Equal(t, 1, notified)
		assert.Equal(t, list, m.GetAll())

		// the next full list fully replaces the previous one
		m.OnCollectionChanged([]*model.Profile{profileWithID("3", "device-3")})
		assert.Equal(t, 2, notified)
		all := m.GetAll()
		require.Len(t, all, 1)
		assert.Equal(t, "3", all[0].GetID())
	})

	t.Run("GetByID and Filter scan the snapshot", func(t *testing.T) {
		m := NewManager[*model.Profile](&recordingWriter{})
		m.OnCollectionChanged([]*model.Profile{
			profileWithID("1", "device-1"),
			profileWithID("2", "device-2"),
		})

		p, ok := m.GetByID("2")
		require.True(t, ok)
		assert.Equal(t, "device-2", p.DeviceID)

		_, ok = m.GetByID("missing")
		assert.False(t, ok)

		matched := m.Filter(func(p *model.Profile) bool { return p.DeviceID == "device-1" })
		assert.Len(t, matched, 1)
	})
}
