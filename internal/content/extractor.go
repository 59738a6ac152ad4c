package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/bridge"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/id"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single extraction
const DefaultTimeout = 10 * time.Second

var (
	// ErrExtractionTimeout is returned when no matching response arrives in time
	ErrExtractionTimeout = errors.New("extraction timed out")

	// ErrPageNotReady matches failures reporting uninitialized page state
	ErrPageNotReady = errors.New("page not ready")
)

// FailureError is a failure reported by the page observer
type FailureError struct {
	Code   string
	Reason string
}

func (e *FailureError) Error() string {
	if e.Reason == "" {
		return "extraction failed"
	}
	return e.Reason
}

// Is lets errors.Is match ErrPageNotReady
func (e *FailureError) Is(target error) bool {
	return target == ErrPageNotReady && e.Code == types.CodeNotReady
}

// Params selects the conversation context of an extraction
type Params struct {
	ContactName string
	UserName    string
}

// Result is a successful extraction
type Result struct {
	Messages []types.Message `json:"messages"`
	Chat     *types.Chat     `json:"chat,omitempty"`
}

// Extractor issues correlated extraction requests over the bridge
type Extractor struct {
	bus     *bridge.Bus
	timeout time.Duration
	logger  *zap.Logger
	metrics *monitoring.Metrics
	newID   func() id.CorrelationID
}

// NewExtractor creates an extractor; timeout <= 0 selects DefaultTimeout
func NewExtractor(bus *bridge.Bus, timeout time.Duration, logger *zap.Logger, metrics *monitoring.Metrics) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		bus:     bus,
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
		newID:   id.NewCorrelationID,
	}
}

// Extract returns the message history of the active conversation
func (e *Extractor) Extract(ctx context.Context, p Params) ([]types.Message, error) {
	res, err := e.Snapshot(ctx, p)
	if err != nil {
		return nil, err
	}
	return res.Messages, nil
}

// Snapshot returns the messages and chat identity of the active conversation.
// It returns after the first matching response, the timeout, or ctx
// cancellation, whichever comes first.
func (e *Extractor) Snapshot(ctx context.Context, p Params) (*Result, error) {
	cid := e.newID()
	log := e.logger.With(zap.String("identifier", cid.String()))

	replies := make(chan types.ExtractionResponse, 1)
	unsubscribe := e.bus.Subscribe(types.ExtractResponseEvent, func(payload []byte) {
		var resp types.ExtractionResponse
		if err := sonic.Unmarshal(payload, &resp); err != nil {
			return
		}
		if resp.Identifier != cid.String() {
			return
		}
		select {
		case replies <- resp:
		default:
		}
	})
	defer unsubscribe()

	payload, err := sonic.Marshal(types.ExtractionRequest{
		Identifier:  cid.String(),
		ContactName: p.ContactName,
		UserName:    p.UserName,
	})
	if err != nil {
		return nil, fmt.Errorf("encode extraction request: %w", err)
	}

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	e.bus.Publish(types.ExtractRequestEvent, payload)

	select {
	case resp := <-replies:
		if !resp.Success {
			e.metrics.RecordExtraction("failure")
			log.Debug("extraction failed", zap.String("code", resp.Code), zap.String("reason", resp.Error))
			return nil, &FailureError{Code: resp.Code, Reason: resp.Error}
		}
		e.metrics.RecordExtraction("success")
		msgs := resp.Messages
		if msgs == nil {
			msgs = []types.Message{}
		}
		return &Result{Messages: msgs, Chat: resp.Chat}, nil

	case <-timer.C:
		e.metrics.RecordExtraction("timeout")
		log.Warn("extraction timed out", zap.Duration("timeout", e.timeout))
		return nil, ErrExtractionTimeout

	case <-ctx.Done():
		e.metrics.RecordExtraction("cancelled")
		return nil, ctx.Err()
	}
}
