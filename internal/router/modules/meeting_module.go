package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-slot-booking/internal/interface/http"
	"github.com/oksasatya/go-slot-booking/internal/interface/middleware"
)

// RateLimits are per-IP budgets per minute; 0 disables a limiter.
type RateLimits struct {
	Redis          *redis.Client
	CreatesPerMin  int
	BookingsPerMin int
	Allow          middleware.AllowFunc
}

// MeetingModule wires meeting creation, retrieval and slot booking
// POST /api/v1/meetings
// GET  /api/v1/meetings/:id
// POST /api/v1/slots/:slotId/book
type MeetingModule struct {
	Meetings *handlers.MeetingHandler
	Bookings *handlers.BookingHandler
	Limits   RateLimits
}

func NewMeetingModule(meetings *handlers.MeetingHandler, bookings *handlers.BookingHandler, limits RateLimits) *MeetingModule {
	return &MeetingModule{Meetings: meetings, Bookings: bookings, Limits: limits}
}

func (m *MeetingModule) Register(rg *gin.RouterGroup) {
	createLimiter := middleware.RateLimit(m.Limits.Redis, m.Limits.CreatesPerMin, time.Minute, middleware.KeyByIP(), m.Limits.Allow)
	bookLimiter := middleware.RateLimit(m.Limits.Redis, m.Limits.BookingsPerMin, time.Minute, middleware.KeyByIPAndPath(), m.Limits.Allow)

	v1 := rg.Group("/v1")
	v1.POST("/meetings", createLimiter, m.Meetings.Create)
	v1.GET("/meetings/:id", m.Meetings.Get)
	v1.POST("/slots/:slotId/book", bookLimiter, m.Bookings.Book)
}
