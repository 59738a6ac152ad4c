package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins []string
	AllowHeaders []string
	MaxAge       time.Duration
}

// DefaultCORSConfig lists no origins: browser pages are refused and only
// clients sending no Origin header get through.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowHeaders: []string{
			"Content-Type",
			"Accept",
			"Origin",
			"X-Trace-ID",
		},
		MaxAge: 12 * time.Hour,
	}
}

// CORS creates a CORS middleware. Extension origins such as
// chrome-extension://<id> are accepted as listed.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:           []string{"GET", "OPTIONS"},
		AllowHeaders:           cfg.AllowHeaders,
		ExposeHeaders:          []string{"X-Trace-ID", "X-Span-ID"},
		AllowBrowserExtensions: true,
		AllowWebSockets:        true,
		MaxAge:                 cfg.MaxAge,
	}
	switch {
	case len(cfg.AllowOrigins) == 0:
		c.AllowOriginFunc = func(string) bool { return false }
	case len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*":
		c.AllowAllOrigins = true
	default:
		c.AllowOrigins = cfg.AllowOrigins
	}
	return cors.New(c)
}
