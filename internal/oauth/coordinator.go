package oauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/storage"
	"go.uber.org/zap"
)

// DefaultFlowTimeout bounds the interactive flow
const DefaultFlowTimeout = 5 * time.Minute

// Launcher runs an interactive authorization flow and returns the final
// redirect URL. Only the privileged agent has one.
type Launcher interface {
	LaunchAuthFlow(ctx context.Context, authURL string) (string, error)
}

// TokenWriter persists the credential
type TokenWriter interface {
	SetToken(ctx context.Context, token string) error
}

// Coordinator is the privileged half of the handshake
type Coordinator struct {
	session  storage.KV
	tokens   TokenWriter
	launcher Launcher
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *monitoring.Metrics

	mu     sync.Mutex
	active bool
}

// NewCoordinator creates a coordinator; timeout <= 0 selects DefaultFlowTimeout
func NewCoordinator(session storage.KV, tokens TokenWriter, launcher Launcher, timeout time.Duration, logger *zap.Logger, metrics *monitoring.Metrics) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultFlowTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		session:  session,
		tokens:   tokens,
		launcher: launcher,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// Start runs the interactive flow for authURL and stores the credential on
// success. The session state is erased before Start returns. Only one flow
// runs at a time; a second Start fails with ErrSignInInProgress and leaves
// the open flow's state alone.
func (c *Coordinator) Start(ctx context.Context, authURL, state string) (err error) {
	if !c.acquire() {
		c.metrics.RecordSignIn(Outcome(ErrSignInInProgress))
		return ErrSignInInProgress
	}
	defer c.release()

	if err := c.session.Set(ctx, storage.KeyOAuthState, state); err != nil {
		return fmt.Errorf("store oauth state: %w", err)
	}
	defer func() {
		if derr := c.session.Delete(context.WithoutCancel(ctx), storage.KeyOAuthState); derr != nil {
			c.logger.Error("failed to erase oauth state", zap.Error(derr))
		}
		c.metrics.RecordSignIn(Outcome(err))
		if err != nil {
			c.logger.Info("sign-in failed", zap.String("outcome", Outcome(err)), zap.Error(err))
		} else {
			c.logger.Info("sign-in completed")
		}
	}()

	flowCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	redirect, err := c.launcher.LaunchAuthFlow(flowCtx, authURL)
	if err != nil {
		return classifyLaunchError(err)
	}

	token, err := ValidateRedirect(redirect)
	if err != nil {
		return err
	}

	if err := c.tokens.SetToken(ctx, token); err != nil {
		return fmt.Errorf("%w: store credential: %v", ErrSignInFailed, err)
	}
	return nil
}

func (c *Coordinator) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return false
	}
	c.active = true
	return true
}

func (c *Coordinator) release() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
}

// Pending reports whether a flow is in progress
func (c *Coordinator) Pending(ctx context.Context) bool {
	_, ok, err := c.session.Get(ctx, storage.KeyOAuthState)
	return err == nil && ok
}
