package router

import (
	"context"

	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/internal/container"
	handlers "github.com/oksasatya/go-slot-booking/internal/interface/http"
	"github.com/oksasatya/go-slot-booking/internal/interface/middleware"
	"github.com/oksasatya/go-slot-booking/internal/router/modules"
)

// Services are the application services built from the container.
type Services struct {
	Identity *application.IdentityService
	Meetings *application.MeetingService
	Booking  *application.BookingService
	Profiles *application.ProfileService
}

// BuildServices wires application services from the container singletons.
func BuildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repos := container.GetRepositories()
	cache := container.GetMeetingCache()

	identity := application.NewIdentityService(repos.Users, logger)
	return Services{
		Identity: identity,
		Meetings: application.NewMeetingService(repos.Meetings, identity, cache, logger),
		Booking: application.NewBookingService(
			repos.Slots,
			identity,
			cache,
			container.GetDispatcher(),
			application.BookingPolicy{BlockHostSelfBooking: cfg.BlockHostSelfBooking},
			application.MailSettings{AppName: cfg.AppName, PublicBaseURL: cfg.PublicBaseURL},
			logger,
		),
		Profiles: application.NewProfileService(repos.Users, repos.Meetings, repos.Slots, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	svc := BuildServices()

	limits := modules.RateLimits{
		Redis:          container.GetRedis(),
		CreatesPerMin:  cfg.RateLimitCreatesPerMin,
		BookingsPerMin: cfg.RateLimitBookingsPerMin,
	}
	if cfg.RateLimitBypassPrivate {
		limits.Allow = middleware.AllowPrivateIP()
	}

	r.Add(modules.NewMeetingModule(
		handlers.NewMeetingHandler(svc.Meetings, logger),
		handlers.NewBookingHandler(svc.Booking, logger),
		limits,
	))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Profiles, logger)))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}

	checks := map[string]modules.Pinger{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	r.Engine.GET("/healthz", modules.NewHealthModule(checks).Handle)
}
