package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/config"
	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/internal/domain"
	pginfra "github.com/oksasatya/go-slot-booking/internal/infrastructure/postgres"
	"github.com/oksasatya/go-slot-booking/pkg/helpers"
)

const demoMeetingID = "demo-sync"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	if cfg.StorageDriver != config.StoragePostgres {
		logger.Fatal("seed requires STORAGE_DRIVER=postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}
	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{DSN: cfg.PostgresDSN(), MaxConns: 2, MinConns: 1})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	identity := application.NewIdentityService(pginfra.NewUserRepository(pool), logger)
	meetings := application.NewMeetingService(pginfra.NewMeetingRepository(pool), identity, nil, logger)

	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	d, err := meetings.Create(ctx, application.CreateMeetingInput{
		ID:          demoMeetingID,
		Title:       "Demo sync",
		Description: "Seeded meeting with three open slots",
		Date:        date,
		SlotTexts:   []string{"09:00 AM - 09:30 AM", "10:00 AM - 10:30 AM", "02:00 PM - 02:30 PM"},
		Creator:     application.Identity{Username: "demo-host", DisplayName: "Demo Host", Email: "host@example.com"},
	})
	switch {
	case domain.IsKind(err, domain.KindConflict):
		logger.WithField("meeting_id", demoMeetingID).Info("demo meeting already seeded")
		return
	case err != nil:
		logger.WithError(err).Fatal("failed to seed meeting")
	}

	logger.WithFields(logrus.Fields{
		"meeting_id": d.ID,
		"host":       d.CreatedBy.Username,
		"date":       date,
		"slots":      len(d.Slots),
	}).Info("seeded demo meeting")
	for _, s := range d.Slots {
		logger.WithFields(logrus.Fields{"slot_id": s.ID, "start": s.StartTime.Format(time.RFC3339)}).Info("open slot")
	}
}
