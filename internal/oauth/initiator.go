package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/messages"
	"go.uber.org/zap"
)

// AuthURLSource asks the backend for an authorization URL bound to state
type AuthURLSource interface {
	AuthURL(ctx context.Context, state string) (string, error)
}

// Sender delivers a control message to the privileged router
type Sender interface {
	Send(ctx context.Context, req messages.Request) (messages.Response, error)
}

// Initiator is the isolated half of the handshake
type Initiator struct {
	extensionID string
	source      AuthURLSource
	sender      Sender
	logger      *zap.Logger
}

// NewInitiator creates an initiator for the given installation id
func NewInitiator(extensionID string, source AuthURLSource, sender Sender, logger *zap.Logger) *Initiator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initiator{
		extensionID: extensionID,
		source:      source,
		sender:      sender,
		logger:      logger,
	}
}

// SignIn runs the whole handshake and returns once the router has answered
func (i *Initiator) SignIn(ctx context.Context) error {
	encoded, err := NewState(i.extensionID).Encode()
	if err != nil {
		return err
	}

	authURL, err := i.source.AuthURL(ctx, encoded)
	if err != nil {
		return fmt.Errorf("fetch authorization url: %w", err)
	}
	i.logger.Debug("authorization url received")

	resp, err := i.sender.Send(ctx, &messages.SignInStart{AuthURL: authURL, State: encoded})
	if err != nil {
		return err
	}

	switch r := resp.(type) {
	case *messages.SignInStartSuccess:
		return nil
	case *messages.ErrorResponse:
		return ResponseError(r)
	default:
		return fmt.Errorf("%w: unexpected reply %s", ErrSignInFailed, resp.Type())
	}
}

// ResponseError restores the sentinel behind a sign-in error response so
// callers can branch with errors.Is
func ResponseError(r *messages.ErrorResponse) error {
	var sentinel error
	switch r.Code {
	case messages.CodeUserCancelled:
		sentinel = ErrUserCancelled
	case messages.CodeBetaAccessRequired:
		sentinel = ErrBetaAccessRequired
	case messages.CodeSecurityValidation:
		sentinel = ErrSecurityValidation
	case messages.CodeSignInInProgress:
		sentinel = ErrSignInInProgress
	default:
		return r
	}
	return errors.Join(sentinel, r)
}
