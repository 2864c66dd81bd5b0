package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/edu-verify/internal/interface/http"
	"github.com/oksasatya/edu-verify/internal/interface/middleware"
	"github.com/oksasatya/edu-verify/pkg/helpers"
)

// VerificationModule exposes registration and code submission to chat adapters.
// All routes require a service token.
type VerificationModule struct {
	Handler *handlers.VerificationHandler
	Tokens  *helpers.ServiceTokenManager
}

func NewVerificationModule(h *handlers.VerificationHandler, tokens *helpers.ServiceTokenManager) *VerificationModule {
	return &VerificationModule{Handler: h, Tokens: tokens}
}

func (m *VerificationModule) Name() string { return "verification" }

func (m *VerificationModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.ServiceAuth(m.Tokens))
	{
		auth.POST("/register", m.Handler.Register)
		auth.POST("/verify", m.Handler.Verify)
		auth.POST("/verify/interactive", m.Handler.BeginInteractive)
		auth.POST("/verify/interactive/submit", m.Handler.SubmitInteractive)
	}
}
