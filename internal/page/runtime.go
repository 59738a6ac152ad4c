package page

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// ErrClosed is returned by a Runtime after Close
var ErrClosed = errors.New("page runtime closed")

// Config controls a scripted page runtime
type Config struct {
	Timeout       time.Duration // per evaluation
	MaxCallStack  int
	EnableConsole bool // route console.* to the logger
}

// DefaultConfig returns the runtime defaults
func DefaultConfig() Config {
	return Config{
		Timeout:       2 * time.Second,
		MaxCallStack:  1024,
		EnableConsole: true,
	}
}

// Runtime is a scripted page: a goja VM whose globals play the host
// application's client state. Access is serialized like a page event loop.
type Runtime struct {
	config Config
	logger *zap.Logger

	mu sync.Mutex
	vm *goja.Runtime
}

// NewRuntime creates an empty page
func NewRuntime(config Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runtime{config: config, logger: logger}
	if err := r.reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// Load runs a page script that installs host state
func (r *Runtime) Load(script string) error {
	_, err := r.run(context.Background(), func(vm *goja.Runtime) (goja.Value, error) {
		return vm.RunString(script)
	})
	if err != nil {
		return fmt.Errorf("load page script: %w", err)
	}
	return nil
}

// Evaluate calls fn with the page global as receiver
func (r *Runtime) Evaluate(ctx context.Context, fn string) (string, error) {
	val, err := r.run(ctx, func(vm *goja.Runtime) (goja.Value, error) {
		fv, err := vm.RunString("(" + fn + ")")
		if err != nil {
			return nil, err
		}
		call, ok := goja.AssertFunction(fv)
		if !ok {
			return nil, errors.New("expression is not a function")
		}
		return call(vm.GlobalObject())
	})
	if err != nil {
		return "", err
	}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return "", nil
	}
	return val.String(), nil
}

func (r *Runtime) run(ctx context.Context, fn func(*goja.Runtime) (goja.Value, error)) (goja.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, ErrClosed
	}
	vm := r.vm

	timeout := r.config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-timer.C:
			vm.Interrupt("evaluation timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	val, err := fn(vm)
	close(done)
	// the watchdog may still be interrupting; clear only once it has exited
	<-stopped
	vm.ClearInterrupt()

	return val, err
}

// Reset discards all page state
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reset()
}

func (r *Runtime) reset() error {
	vm := goja.New()
	if r.config.MaxCallStack > 0 {
		vm.SetMaxCallStackSize(r.config.MaxCallStack)
	}

	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}
	if err := vm.Set("window", vm.GlobalObject()); err != nil {
		return err
	}

	if r.config.EnableConsole {
		console := vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error"} {
			if err := console.Set(level, r.consoleFunc(level)); err != nil {
				return err
			}
		}
		if err := vm.Set("console", console); err != nil {
			return err
		}
	}

	r.vm = vm
	return nil
}

func (r *Runtime) consoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		r.logger.Debug("page console",
			zap.String("level", level),
			zap.String("message", strings.Join(parts, " ")),
		)
		return goja.Undefined()
	}
}

// Close releases the VM
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vm = nil
	return nil
}
