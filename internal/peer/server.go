package peer

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/config"
	"github.com/vovakirdan/wirechat-client/internal/proto"
)

// NewRouter builds the gin engine serving the room endpoint and health.
func NewRouter(hub *Hub, cfg config.PeerConfig, logger *zerolog.Logger) *gin.Engine {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.UseRawPath = true
	r.Use(gin.Recovery(), LoggerMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET(proto.ChatPathPrefix+":room/", NewWSHandler(hub, cfg.MaxRoomLength, logger).Serve)

	return r
}

// NewServer builds an HTTP server for the room peer.
func NewServer(hub *Hub, cfg config.PeerConfig, logger *zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(hub, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// LoggerMiddleware logs each HTTP request after it completes.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
