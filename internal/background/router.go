package background

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/messages"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxInFlight bounds concurrently running handlers
const DefaultMaxInFlight = 64

// Dispatch outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
	OutcomeUnknown = "unknown"
)

// Router dispatches control messages to handlers
type Router struct {
	handlers map[messages.Type]HandlerFunc
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	slots    *semaphore.Weighted

	wg sync.WaitGroup
}

// NewRouter creates a router. Every request kind must have a handler.
func NewRouter(handlers map[messages.Type]HandlerFunc, logger *zap.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) (*Router, error) {
	var missing []string
	for _, kind := range messages.RequestTypes() {
		if handlers[kind] == nil {
			missing = append(missing, string(kind))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("no handler for %s", strings.Join(missing, ", "))
	}
	for kind := range handlers {
		if !kind.Known() {
			return nil, fmt.Errorf("handler for unknown kind %s", kind)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Router{
		handlers: handlers,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		slots:    semaphore.NewWeighted(DefaultMaxInFlight),
	}, nil
}

// SetMaxInFlight replaces the handler concurrency bound. Call before the
// first Dispatch.
func (r *Router) SetMaxInFlight(n int64) {
	if n > 0 {
		r.slots = semaphore.NewWeighted(n)
	}
}

// Dispatch handles raw on its own goroutine and calls reply exactly once
func (r *Router) Dispatch(ctx context.Context, raw []byte, reply func([]byte)) {
	var once sync.Once
	guarded := func(b []byte) {
		once.Do(func() { reply(b) })
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.slots.Acquire(ctx, 1); err != nil {
			guarded(r.reject(raw, err))
			return
		}
		defer r.slots.Release(1)
		guarded(r.Handle(ctx, raw))
	}()
}

// reject answers a message that never reached a handler
func (r *Router) reject(raw []byte, err error) []byte {
	var resp messages.Response = &messages.UnknownMessage{}
	if kind, perr := messages.PeekType(raw); perr == nil && kind.Known() {
		resp = toErrorResponse(kind, err)
	}
	out, _ := messages.Encode(resp)
	return out
}

// Wait blocks until every dispatched message has been answered
func (r *Router) Wait() {
	r.wg.Wait()
}

// Handle processes raw synchronously and returns the encoded reply
func (r *Router) Handle(ctx context.Context, raw []byte) []byte {
	start := time.Now()
	r.metrics.DispatchStarted()

	resp, outcome, kind := r.route(ctx, raw)

	label := string(kind)
	if outcome == OutcomeUnknown {
		label = string(messages.TypeUnknown)
	}
	r.metrics.DispatchFinished(label, outcome, time.Since(start))

	out, err := messages.Encode(resp)
	if err != nil {
		r.logger.Error("encode reply", zap.String("type", string(resp.Type())), zap.Error(err))
		out, _ = messages.Encode(toErrorResponse(kind, err))
	}
	return out
}

func (r *Router) route(ctx context.Context, raw []byte) (messages.Response, string, messages.Type) {
	kind, req, err := messages.DecodeRequest(raw)
	switch {
	case errors.Is(err, messages.ErrMalformed):
		r.logger.Debug("malformed request", zap.String("type", string(kind)), zap.Error(err))
		return invalidRequest(kind, "malformed body"), OutcomeInvalid, kind
	case err != nil:
		r.logger.Debug("unknown message", zap.String("type", string(kind)))
		return &messages.UnknownMessage{}, OutcomeUnknown, kind
	}

	if v, ok := req.(messages.Validator); ok {
		if err := v.Validate(); err != nil {
			return invalidRequest(kind, err.Error()), OutcomeInvalid, kind
		}
	}

	if r.tracer != nil {
		var span *tracing.Span
		span, ctx = r.tracer.StartSpan(ctx, string(kind))
		defer r.tracer.Finish(span)
		defer func() {
			if err != nil {
				span.SetError(err)
			}
		}()
	}

	var resp messages.Response
	resp, err = r.invoke(ctx, kind, req)
	if err != nil {
		er := toErrorResponse(kind, err)
		fields := []zap.Field{
			zap.String("type", string(kind)),
			zap.Int("status", er.StatusCode),
			zap.Error(err),
		}
		if er.StatusCode >= 500 || er.Code == messages.CodeInternal {
			r.logger.Error("handler failed", fields...)
		} else {
			r.logger.Info("handler failed", fields...)
		}
		return er, OutcomeError, kind
	}
	if resp == nil || resp.Type() != kind.Success() {
		err = fmt.Errorf("handler returned %v", resp)
		r.logger.Error("handler returned wrong reply", zap.String("type", string(kind)), zap.Error(err))
		return toErrorResponse(kind, err), OutcomeError, kind
	}
	return resp, OutcomeSuccess, kind
}

// invoke runs the handler and converts a panic into an error
func (r *Router) invoke(ctx context.Context, kind messages.Type, req messages.Request) (resp messages.Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			resp = nil
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return r.handlers[kind](ctx, req)
}
