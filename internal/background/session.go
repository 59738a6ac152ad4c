package background

import (
	"context"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/oauth"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/storage"
	"go.uber.org/zap"
)

// Session is the privileged agent's single sign-in session. It is built
// once at startup and shared by every handler.
type Session struct {
	creds       *storage.Credentials
	state       storage.KV
	coordinator *oauth.Coordinator
	logger      *zap.Logger
}

// NewSession creates the session over a durable store. The OAuth state lives
// in a process-lifetime store owned by the session.
func NewSession(durable storage.KV, launcher oauth.Launcher, flowTimeout time.Duration, logger *zap.Logger, metrics *monitoring.Metrics) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	creds := storage.NewCredentials(durable)
	state := storage.NewMemory()
	return &Session{
		creds:       creds,
		state:       state,
		coordinator: oauth.NewCoordinator(state, creds, launcher, flowTimeout, logger.Named("oauth"), metrics),
		logger:      logger,
	}
}

// Credentials returns the stored-credential slots
func (s *Session) Credentials() *storage.Credentials {
	return s.creds
}

// Authenticated reports whether a credential is stored
func (s *Session) Authenticated(ctx context.Context) bool {
	token, err := s.creds.Token(ctx)
	if err != nil {
		s.logger.Warn("credential read failed", zap.Error(err))
		return false
	}
	return token != ""
}

// SignIn runs the interactive handshake
func (s *Session) SignIn(ctx context.Context, authURL, state string) error {
	return s.coordinator.Start(ctx, authURL, state)
}

// SignInPending reports whether a handshake is in flight
func (s *Session) SignInPending(ctx context.Context) bool {
	return s.coordinator.Pending(ctx)
}

// SignOut deletes the stored credential
func (s *Session) SignOut(ctx context.Context) error {
	return s.creds.ClearToken(ctx)
}
