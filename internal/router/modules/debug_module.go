package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edu-verify/internal/interface/middleware"
	"github.com/oksasatya/edu-verify/pkg/helpers"
)

// DebugModule serves expvar, including the verification_outcomes counters.
type DebugModule struct {
	Tokens *helpers.ServiceTokenManager
}

func NewDebugModule(tokens *helpers.ServiceTokenManager) *DebugModule {
	return &DebugModule{Tokens: tokens}
}

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", middleware.ServiceAuth(m.Tokens), gin.WrapH(expvar.Handler()))
}
