package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/messages"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/runtime"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"
	"go.uber.org/zap"
)

// ErrUnsupported is returned when the router answers UNKNOWN_MESSAGE
var ErrUnsupported = errors.New("message not supported by the privileged agent")

// Relay sends control messages to the privileged router
type Relay struct {
	port   runtime.Port
	logger *zap.Logger
}

// NewRelay creates a relay over port
func NewRelay(port runtime.Port, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{port: port, logger: logger}
}

// Send delivers req and returns the router's reply, success or error variant
func (r *Relay) Send(ctx context.Context, req messages.Request) (messages.Response, error) {
	raw, err := messages.Encode(req)
	if err != nil {
		return nil, err
	}
	reply, err := r.port.Send(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", req.Type(), err)
	}
	resp, err := messages.DecodeResponse(reply)
	if err != nil {
		return nil, fmt.Errorf("reply to %s: %w", req.Type(), err)
	}
	if _, ok := resp.(*messages.UnknownMessage); ok {
		return resp, nil
	}
	if kind, _ := resp.Type().Request(); kind != req.Type() {
		return nil, fmt.Errorf("reply to %s has type %s", req.Type(), resp.Type())
	}
	return resp, nil
}

// Do sends req and returns its success variant. An error variant comes back
// as a *messages.ErrorResponse error.
func Do[T messages.Response](ctx context.Context, r *Relay, req messages.Request) (T, error) {
	var zero T
	resp, err := r.Send(ctx, req)
	if err != nil {
		return zero, err
	}
	switch v := resp.(type) {
	case T:
		return v, nil
	case *messages.ErrorResponse:
		r.logger.Debug("request failed",
			zap.String("type", string(req.Type())),
			zap.Int("status", v.StatusCode),
			zap.String("message", v.Message),
		)
		return zero, v
	case *messages.UnknownMessage:
		return zero, ErrUnsupported
	default:
		return zero, fmt.Errorf("unexpected reply %s", resp.Type())
	}
}

// LookupPerson finds a person by phone; (nil, nil) when none matches
func (r *Relay) LookupPerson(ctx context.Context, phone string) (*types.Person, error) {
	resp, err := Do[*messages.PersonLookupSuccess](ctx, r, &messages.PersonLookup{Phone: phone})
	if err != nil {
		return nil, err
	}
	return resp.Person, nil
}

// SaveConversation stores messages as a note on a person
func (r *Relay) SaveConversation(ctx context.Context, personID int64, contactName string, msgs []types.Message) (types.Note, error) {
	resp, err := Do[*messages.NoteCreateSuccess](ctx, r, &messages.NoteCreate{
		PersonID:    personID,
		ContactName: contactName,
		Messages:    msgs,
	})
	if err != nil {
		return types.Note{}, err
	}
	return resp.Note, nil
}

// Authenticated reports whether the privileged agent holds a credential
func (r *Relay) Authenticated(ctx context.Context) (bool, error) {
	resp, err := Do[*messages.AuthStatusSuccess](ctx, r, &messages.AuthStatus{})
	if err != nil {
		return false, err
	}
	return resp.Authenticated, nil
}

// SignOut deletes the stored credential
func (r *Relay) SignOut(ctx context.Context) error {
	_, err := Do[*messages.SignOutSuccess](ctx, r, &messages.SignOut{})
	return err
}
