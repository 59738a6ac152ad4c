package runtime

import (
	"context"
)

// Local is a port to a dispatcher in the same process
type Local struct {
	dispatcher Dispatcher
}

// NewLocal creates an in-process port
func NewLocal(d Dispatcher) *Local {
	return &Local{dispatcher: d}
}

// Send dispatches message and waits for the reply or ctx
func (l *Local) Send(ctx context.Context, message []byte) ([]byte, error) {
	replies := make(chan []byte, 1)
	l.dispatcher.Dispatch(ctx, message, func(reply []byte) {
		select {
		case replies <- reply:
		default:
		}
	})

	select {
	case reply := <-replies:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
