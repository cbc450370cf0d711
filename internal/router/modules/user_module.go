package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-slot-booking/internal/interface/http"
)

// UserModule serves read-only user projections
// GET /api/v1/users/:username
// GET /api/v1/users/:username/availability?date=YYYY-MM-DD
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	v1 := rg.Group("/v1")
	v1.GET("/users/:username", m.Handler.GetProfile)
	v1.GET("/users/:username/availability", m.Handler.GetAvailability)
}
