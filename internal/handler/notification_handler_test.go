package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationRouter(notifications ...*model.Notification) *gin.Engine {
	notificationCache := cache.NewNotificationCache(nopWriter[*model.Notification]{})
	notificationCache.OnCollectionChanged(notifications)

	router := gin.New()
	NewNotificationHandler(notificationCache).RegisterRoutes(router)
	return router
}

func TestNotificationHandler_ListForDevice(t *testing.T) {
	read := &model.Notification{DeviceID: "d1", Type: model.NotificationLotteryWon, Read: true}
	read.SetID("n1")
	unread := &model.Notification{DeviceID: "d1", Type: model.NotificationSecondChance}
	unread.SetID("n2")
	router := newNotificationRouter(read, unread)

	t.Run("Success - all notifications for the device", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/device/d1", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var got []*model.Notification
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("Success - unread filter", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/device/d1?unread=true", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var got []*model.Notification
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "n2", got[0].GetID())
	})
}

func TestNotificationHandler_Create(t *testing.T) {
	t.Run("Success - organizer message", func(t *testing.T) {
		router := newNotificationRouter()
		w := serve(router, createJSONRequest(http.MethodPost, "/api/v1/notifications",
			CreateNotificationRequest{
				DeviceID: "d1",
				EventID:  "e1",
				Type:     string(model.NotificationOrganizer),
				Title:    "Venue change",
				Body:     "We moved to the north hall.",
			}))
		require.Equal(t, http.StatusCreated, w.Code)

		var got model.Notification
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, model.NotificationOrganizer, got.Type)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("Failed - unknown type", func(t *testing.T) {
		router := newNotificationRouter()
		w := serve(router, createJSONRequest(http.MethodPost, "/api/v1/notifications",
			CreateNotificationRequest{DeviceID: "d1", Type: "carrier_pigeon", Title: "Hi"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Failed - missing required fields", func(t *testing.T) {
		router := newNotificationRouter()
		w := serve(router, createJSONRequest(http.MethodPost, "/api/v1/notifications", gin.H{"device_id": "d1"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
