// Package runtime is the inter-process channel between the isolated agent
// and the privileged router.
//
// A Port carries one raw control message and returns the one raw reply.
// Local connects to a router in the same process; Client connects to the
// privileged agent's /runtime websocket. Over the socket every frame is an
// Envelope whose id pairs a reply with its request.
package runtime

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrPortClosed is returned when the channel goes away before a reply
var ErrPortClosed = errors.New("message port closed before a response was received")

// Port sends a control message and waits for its reply
type Port interface {
	Send(ctx context.Context, message []byte) ([]byte, error)
}

// Dispatcher is the receiving end of a port. It must call reply exactly once.
type Dispatcher interface {
	Dispatch(ctx context.Context, message []byte, reply func([]byte))
}

// Envelope is one websocket frame
type Envelope struct {
	ID      string          `json:"id"`
	Message json.RawMessage `json:"message"`
}
