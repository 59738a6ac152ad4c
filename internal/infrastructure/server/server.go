package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/api/middleware"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/background"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/ws"
)

// Server is the privileged agent's HTTP listener
type Server struct {
	engine  *gin.Engine
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	router  *background.Router
	session *background.Session
}

// New builds the gin engine over an already wired router and session
func New(cfg *config.Config, logger *logging.Logger, router *background.Router, session *background.Session, metrics *monitoring.Metrics, tracer *tracing.Tracer) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(gin.Recovery())
	if tracer != nil {
		engine.Use(tracing.HTTPMiddleware(tracer))
	}
	engine.Use(monitoring.Middleware(metrics))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowOrigins) > 0 {
		cors.AllowOrigins = cfg.Server.AllowOrigins
	}
	engine.Use(middleware.CORS(cors))

	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	s := &Server{
		engine:  engine,
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		router:  router,
		session: session,
	}

	wsHandler := ws.NewHandler(router, cfg.Server.AllowOrigins, logger.For("runtime"), metrics)

	engine.GET("/health", s.health)
	engine.GET("/runtime", wsHandler.HandleConnection)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"authenticated": s.session.Authenticated(c.Request.Context()),
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	wait := s.config.Server.ShutdownWait
	if wait <= 0 {
		wait = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wait)
	defer cancel()

	s.logger.Info("Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	drained := make(chan struct{})
	go func() {
		s.router.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		s.logger.Warn("control messages still in flight at shutdown")
	}
	return nil
}
