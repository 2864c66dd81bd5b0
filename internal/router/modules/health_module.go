package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edu-verify/pkg/response"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// HealthModule is the only unauthenticated route.
type HealthModule struct {
	Checks map[string]Pinger
}

func NewHealthModule(checks map[string]Pinger) *HealthModule {
	return &HealthModule{Checks: checks}
}

func (m *HealthModule) Name() string { return "health" }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.health)
}

func (m *HealthModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, ping := range m.Checks {
		if err := ping(ctx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}
	if !healthy {
		response.ErrorWithData(c, http.StatusServiceUnavailable, "degraded", status, nil)
		return
	}
	response.Success(c, http.StatusOK, status, "ok", nil)
}
