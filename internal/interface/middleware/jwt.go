package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edu-verify/pkg/helpers"
	"github.com/oksasatya/edu-verify/pkg/response"
)

const CtxAdapterKey = "adapter"

// ServiceAuth requires an "Authorization: Bearer <service token>" header and
// injects the calling adapter's name into the context.
func ServiceAuth(tokens *helpers.ServiceTokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Abort(c, http.StatusUnauthorized, "missing service token", nil)
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid service token", nil)
			return
		}
		c.Set(CtxAdapterKey, claims.Adapter)
		c.Next()
	}
}
