package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/config"
	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/connector"
	"github.com/Matrix-F25/matrix-events-sub000/internal/database"
	"github.com/Matrix-F25/matrix-events-sub000/internal/handler"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/queue"
	"github.com/Matrix-F25/matrix-events-sub000/internal/service"
	"github.com/Matrix-F25/matrix-events-sub000/internal/store"
	"github.com/Matrix-F25/matrix-events-sub000/internal/worker"
	"github.com/Matrix-F25/matrix-events-sub000/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, notificationQueue, err := initBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store backend: %v", err)
	}
	defer backend.Close()

	// one connector + cache manager per entity kind, created once and shared
	eventConn := connector.New(backend.Collection("events"), func() *model.Event { return &model.Event{} })
	events := cache.NewEventCache(eventConn)
	eventConn.SetListener(events)

	profileConn := connector.New(backend.Collection("profiles"), func() *model.Profile { return &model.Profile{} })
	profiles := cache.NewProfileCache(profileConn)
	profileConn.SetListener(profiles)

	notificationConn := connector.New(backend.Collection("notifications"), func() *model.Notification { return &model.Notification{} })
	notifications := cache.NewNotificationCache(notificationConn)
	notificationConn.SetListener(notifications)

	posterConn := connector.New(backend.Collection("posters"), func() *model.Poster { return &model.Poster{} })
	posters := cache.NewPosterCache(posterConn)
	posterConn.SetListener(posters)

	if err := eventConn.Start(ctx); err != nil {
		log.Fatalf("Failed to start event connector: %v", err)
	}
	if err := profileConn.Start(ctx); err != nil {
		log.Fatalf("Failed to start profile connector: %v", err)
	}
	if err := notificationConn.Start(ctx); err != nil {
		log.Fatalf("Failed to start notification connector: %v", err)
	}
	if err := posterConn.Start(ctx); err != nil {
		log.Fatalf("Failed to start poster connector: %v", err)
	}

	notificationWorker := worker.NewNotificationWorker(notifications, notificationQueue)
	if err := notificationWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start notification worker: %v", err)
	}

	registrationService := service.NewRegistrationService(events, posters, notificationQueue)
	lotteryService := service.NewLotteryService(events, notificationQueue, nil)
	cascadeService := service.NewCascadeService(events, profiles, posters, notificationQueue)

	expiryWorker := worker.NewExpiryWorker(events, lotteryService, cfg.Store.PendingTimeout, time.Minute)
	expiryWorker.Start(ctx)

	router := gin.Default()
	handler.NewEventHandler(events, registrationService, lotteryService).RegisterRoutes(router)
	handler.NewProfileHandler(profiles, cascadeService).RegisterRoutes(router)
	handler.NewNotificationHandler(notifications).RegisterRoutes(router)
	handler.NewPosterHandler(posters, events, cascadeService).RegisterRoutes(router)

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// initBackend builds the configured document store and the matching
// notification queue (redis stream when redis is available, in-memory
// otherwise).
func initBackend(ctx context.Context, cfg *config.Config) (store.Store, queue.NotificationQueue, error) {
	switch cfg.Store.Backend {
	case "redis":
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		q, err := queue.NewRedisStreamNotificationQueue(rdb, "", nil)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(rdb), q, nil

	case "postgres":
		pool, err := database.InitDatabase(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		return pg, queue.NewMemoryNotificationQueue(256), nil

	default:
		return store.NewMemoryStore(), queue.NewMemoryNotificationQueue(256), nil
	}
}
