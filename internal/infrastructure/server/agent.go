package server

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/background"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/crm"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/gateway"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/host"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/storage"
)

// Agent is the fully wired privileged agent
type Agent struct {
	*Server

	store   *storage.SQLite
	browser *host.Browser
	tracer  *tracing.Tracer
}

// NewAgent opens storage, connects the browser and wires the router.
// A browser that cannot be reached leaves sign-in and tab opening failing
// with host.ErrNotConnected; everything else keeps working.
func NewAgent(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Agent, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Info("Initializing ChatRelay agent",
		zap.String("addr", cfg.Addr()),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("chatrelay", logger.Logger)

	store, err := storage.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	browser, err := host.Connect(ctx, host.Config{
		ControlURL: cfg.Browser.ControlURL,
		Headless:   cfg.Browser.Headless,
	}, logger.For("host"))
	if err != nil {
		logger.Warn("Browser unavailable; sign-in and tabs disabled", zap.Error(err))
	}

	session := background.NewSession(
		store,
		host.NewAuthWindow(browser, cfg.Auth.RedirectPrefix, logger.For("host")),
		cfg.Auth.Timeout,
		logger.For(logging.ContextOAuth),
		metrics,
	)

	gw := gateway.New(gateway.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		UserAgent: cfg.Backend.UserAgent,
		RateLimit: cfg.Backend.RateLimit,
	}, session.Credentials(), logger.For(logging.ContextGateway), metrics)

	handlers := background.NewHandlers(crm.New(gw), session, browser, logger.For(logging.ContextBackground))
	router, err := background.NewRouter(handlers.Table(), logger.For("router"), metrics, tracer)
	if err != nil {
		_ = browser.Close()
		_ = store.Close()
		tracer.Close()
		return nil, fmt.Errorf("wire router: %w", err)
	}

	return &Agent{
		Server:  New(cfg, logger, router, session, metrics, tracer),
		store:   store,
		browser: browser,
		tracer:  tracer,
	}, nil
}

// Close releases the browser and storage
func (a *Agent) Close() error {
	a.logger.Info("Closing agent")
	var errs []error
	if err := a.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	a.tracer.Close()
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
