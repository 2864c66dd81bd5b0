package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/edu-verify/internal/interface/http"
	"github.com/oksasatya/edu-verify/internal/interface/middleware"
	"github.com/oksasatya/edu-verify/pkg/helpers"
)

type IdentityModule struct {
	Handler *handlers.IdentityHandler
	Tokens  *helpers.ServiceTokenManager
}

func NewIdentityModule(h *handlers.IdentityHandler, tokens *helpers.ServiceTokenManager) *IdentityModule {
	return &IdentityModule{Handler: h, Tokens: tokens}
}

func (m *IdentityModule) Name() string { return "identity" }

func (m *IdentityModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/identities")
	auth.Use(middleware.ServiceAuth(m.Tokens))
	{
		// static segment first so it is not captured as a platform id
		auth.GET("/search", m.Handler.Search)
		auth.GET("/:platform_id", m.Handler.Get)
		auth.PUT("/:platform_id/council", m.Handler.SetCouncil)
	}
}
