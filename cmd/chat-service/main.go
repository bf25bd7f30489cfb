package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/surya16122114/roomies-radar/internal/api"
	"github.com/surya16122114/roomies-radar/internal/auth"
	cfgpkg "github.com/surya16122114/roomies-radar/internal/config"
	"github.com/surya16122114/roomies-radar/internal/events"
	"github.com/surya16122114/roomies-radar/internal/logger"
	"github.com/surya16122114/roomies-radar/internal/metrics"
	"github.com/surya16122114/roomies-radar/internal/realtime"
	"github.com/surya16122114/roomies-radar/internal/repository"
	"github.com/surya16122114/roomies-radar/internal/service"
)

func main() {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(cfg.Development())
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mc, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		zlog.Fatalw("mongo connect", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	db := mc.Database(cfg.Mongo.Database)
	chatStore, err := repository.NewMongoChatStore(db.Collection("chats"))
	if err != nil {
		zlog.Fatalw("chat store init", "err", err)
	}
	userStore := repository.NewMongoUserStore(db.Collection("users"))

	hub := realtime.NewHub(zlog)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Fatalw("redis ping", "err", err)
		}
		backplane := realtime.NewRedisBackplane(rdb, cfg.Redis.Channel, hub, zlog)
		go func() {
			if err := backplane.Run(ctx); err != nil && ctx.Err() == nil {
				zlog.Errorw("backplane stopped", "err", err)
			}
		}()
	}

	var audit *events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		audit = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zlog)
		defer func() { _ = audit.Close() }()
	}

	var validator *auth.Validator
	if cfg.JWT.Secret != "" {
		validator = auth.NewValidator(cfg.JWT.Secret)
	}

	svc := service.New(chatStore, userStore, hub, audit, zlog)
	app := api.NewServer(zlog, svc, hub, validator)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.MetricsPort)
		if err := http.ListenAndServe(addr, metrics.Handler()); err != nil {
			zlog.Errorw("metrics listener", "err", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		zlog.Infow("chat service listening", "addr", addr)
		if err := app.Listen(addr); err != nil {
			zlog.Fatalw("server listen", "err", err)
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Errorw("server shutdown", "err", err)
	}
}
