package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carewatch-data/internal/config"
	"carewatch-data/internal/database"
	"carewatch-data/internal/evaluator"
	httpapi "carewatch-data/internal/http"
	"carewatch-data/internal/logger"
	"carewatch-data/internal/mqtt"
	"carewatch-data/internal/repository"
	"carewatch-data/internal/service"
	"carewatch-data/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env 不存在时静默跳过（容器里走真实环境变量）
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "carewatch-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	kv := store.NewRedisKV(redisClient)

	loc, err := time.LoadLocation(cfg.TimeLocation)
	if err != nil {
		log.Warn("Invalid TIME_LOCATION, falling back to local time",
			zap.String("time_location", cfg.TimeLocation),
			zap.Error(err),
		)
		loc = time.Local
	}

	devicesRepo := repository.NewPostgresDevicesRepo(db)
	usersRepo := repository.NewPostgresUsersRepo(db)
	readingsRepo := repository.NewPostgresReadingsRepo(db)
	notificationsRepo := repository.NewPostgresNotificationsRepo(db)

	var notifier service.AlertNotifier
	if cfg.Webhook.Enabled && cfg.Webhook.URL != "" {
		notifier = service.NewAlertWebhook(cfg.Webhook.URL, log)
		log.Info("Alert webhook enabled", zap.String("url", cfg.Webhook.URL))
	}

	ingestion := service.NewIngestionService(
		readingsRepo,
		notificationsRepo,
		evaluator.NewThresholdEvaluator(),
		notifier,
		log,
	)
	windows := service.NewTimeWindowService(usersRepo, devicesRepo, readingsRepo, loc, log)
	sessions := httpapi.NewSessionStore(kv, time.Duration(cfg.SessionTTLHours)*time.Hour)

	router := httpapi.NewRouter(log)
	router.RegisterIngestRoutes(httpapi.NewIngestHandler(ingestion, log))
	router.RegisterEmergencyContactRoutes(httpapi.NewEmergencyContactHandler(usersRepo, log))
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(usersRepo, sessions, log))
	router.RegisterProfileRoutes(httpapi.NewProfileHandler(usersRepo, sessions, log))
	router.RegisterReadingsRoutes(httpapi.NewReadingsHandler(windows, sessions, log))
	router.RegisterAdminRoutes(httpapi.NewAdminHandler(devicesRepo, usersRepo, readingsRepo, notificationsRepo, sessions, log))
	router.RegisterExportRoutes(httpapi.NewExportHandler(readingsRepo, sessions, log))

	// 可选的 MQTT 上报通道
	var consumer *mqtt.ReadingsConsumer
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		consumer = mqtt.NewReadingsConsumer(client, ingestion, &cfg.MQTT, log)
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start MQTT consumer", zap.Error(err))
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	if consumer != nil {
		consumer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
