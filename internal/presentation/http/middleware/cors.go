package middleware

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sangkips/notas-backoffice/internal/config"
)

var defaultAllowedHeaders = []string{"Accept", "Authorization", "Content-Type", "Origin"}

// CORSMiddleware allows the dashboard origins. The request id and
// Idempotency-Key headers are always allowed, and the download and replay
// headers are exposed to the browser.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	c := cors.DefaultConfig()
	c.AllowCredentials = true
	c.AllowOrigins = []string{"http://localhost:3000"}
	if len(cfg.AllowedOrigins) > 0 {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	if len(cfg.AllowedMethods) > 0 {
		c.AllowMethods = cfg.AllowedMethods
	}

	headers := defaultAllowedHeaders
	if len(cfg.AllowedHeaders) > 0 {
		headers = cfg.AllowedHeaders
	}
	c.AllowHeaders = slices.Clone(headers)
	for _, h := range []string{RequestIDHeader, IdempotencyKeyHeader} {
		if !slices.Contains(c.AllowHeaders, h) {
			c.AllowHeaders = append(c.AllowHeaders, h)
		}
	}

	c.ExposeHeaders = []string{"Content-Disposition", RequestIDHeader, IdempotencyReplayedHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	return cors.New(c)
}
