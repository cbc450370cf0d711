package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/config"
	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/internal/container"
	"github.com/oksasatya/go-slot-booking/internal/infrastructure/cache"
	"github.com/oksasatya/go-slot-booking/internal/infrastructure/memory"
	"github.com/oksasatya/go-slot-booking/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/go-slot-booking/internal/infrastructure/postgres"
	"github.com/oksasatya/go-slot-booking/internal/interface/middleware"
	"github.com/oksasatya/go-slot-booking/internal/router"
	"github.com/oksasatya/go-slot-booking/pkg/helpers"
	"github.com/oksasatya/go-slot-booking/pkg/mailer"
	"github.com/oksasatya/go-slot-booking/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)

	// Storage
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		container.SetRepositories(container.Repositories{Users: store.Users(), Meetings: store.Meetings(), Slots: store.Slots()})
	default:
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()
		container.SetPGPool(pool)
		container.SetRepositories(container.Repositories{
			Users:    pginfra.NewUserRepository(pool),
			Meetings: pginfra.NewMeetingRepository(pool),
			Slots:    pginfra.NewSlotRepository(pool),
		})
	}

	// Redis backs the meeting cache and the rate limiters; both are optional.
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.RedisPing(ctx, rdb, 3*time.Second); err != nil {
			logger.WithError(err).Warn("redis unavailable; cache and rate limits disabled")
		} else {
			container.SetRedis(rdb)
			if cfg.MeetingCacheTTL > 0 {
				container.SetMeetingCache(cache.NewMeetingCache(rdb, cfg.MeetingCacheTTL))
			}
		}
	}

	// Notifications
	gateway, closeGateway := buildGateway(cfg, logger)
	defer closeGateway()
	dispatcher := application.NewDispatcher(gateway, cfg.NotifyTimeout, logger)
	container.SetDispatcher(dispatcher)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RealIP())
	r.Use(middleware.RequestIDMiddleware())
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(logger))
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, "Retry-After"},
			MaxAge:        12 * time.Hour,
		}))
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "storage": cfg.StorageDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	dispatcher.Wait()
	logger.Info("server exited properly")
}

// buildGateway selects the notification channel. The returned func releases
// any connection it opened.
func buildGateway(cfg *config.Config, logger *logrus.Logger) (application.NotificationGateway, func()) {
	noop := func() {}
	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; notifications are logged only")
		return notify.NewLogGateway(logger), noop
	}

	switch cfg.MailTransport {
	case config.MailTransportMailgun:
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		mg.Timeout = cfg.NotifyTimeout
		container.SetMailgun(mg)
		return notify.NewMailgunGateway(mg), noop
	default:
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; notifications are logged only")
			return notify.NewLogGateway(logger), noop
		}
		container.SetRabbitPub(pub)
		return notify.NewQueueGateway(pub), pub.Close
	}
}
