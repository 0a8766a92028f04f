package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/GoPolymarket/polyexec/internal/config"
	"github.com/gin-gonic/gin"
)

const HeaderGatewayKey = "X-Gateway-Key"

// AuthMiddleware guards the execution surface with a single shared key.
// When RequireAPIKey is off the service runs open, for local use.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || !cfg.Auth.RequireAPIKey {
			c.Next()
			return
		}

		apiKey := c.GetHeader(HeaderGatewayKey)
		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.Auth.APIKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
