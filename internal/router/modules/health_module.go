package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-slot-booking/pkg/response"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

// HealthModule answers GET /healthz on the engine root.
type HealthModule struct {
	Checks map[string]Pinger
}

func NewHealthModule(checks map[string]Pinger) *HealthModule {
	return &HealthModule{Checks: checks}
}

func (m *HealthModule) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(m.Checks))
	for name, ping := range m.Checks {
		if err := ping(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	if status != http.StatusOK {
		response.Error[any](c, status, "unhealthy", results)
		return
	}
	response.Success(c, status, results, "ok", nil)
}
