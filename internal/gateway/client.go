package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/tracing"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TokenStore holds the single stored credential
type TokenStore interface {
	// Token returns the credential, or "" when none is stored
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

// Config configures the backend client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64 // requests per second, 0 is unlimited
}

// Options describes one call
type Options struct {
	Method    string // defaults to GET
	Query     map[string]string
	Body      interface{}
	Resource  string // noun used in the 404 message
	Anonymous bool   // skip the credential
}

// Client calls the CRM backend
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	tokens  TokenStore
	logger  *zap.Logger
	metrics *monitoring.Metrics
	mu      sync.RWMutex
}

// New creates a backend client
func New(cfg Config, tokens TokenStore, logger *zap.Logger, metrics *monitoring.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	r := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		r.SetHeader("User-Agent", cfg.UserAgent)
	}

	c := &Client{
		resty:   r,
		tokens:  tokens,
		logger:  logger,
		metrics: metrics,
	}
	c.SetRateLimit(cfg.RateLimit)
	return c
}

// SetRateLimit configures client-side pacing (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.resty.BaseURL
}

// Call performs one request and decodes a 2xx JSON body into out (if non-nil).
// Failures are *Error except for context cancellation.
func (c *Client) Call(ctx context.Context, endpoint string, opts Options, out interface{}) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	log := c.logger.With(zap.String("method", method), zap.String("endpoint", endpoint))

	var token string
	if !opts.Anonymous {
		var err error
		token, err = c.tokens.Token(ctx)
		if err != nil {
			log.Error("credential read failed", zap.Error(err))
			return &Error{StatusCode: http.StatusInternalServerError, Message: MsgGeneric, Err: err}
		}
		if token == "" {
			return &Error{StatusCode: http.StatusUnauthorized, Message: MsgNotAuthenticated}
		}
	}

	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req := c.resty.R().SetContext(ctx).SetHeaders(tracing.Headers(ctx))
	if token != "" {
		req.SetAuthToken(token)
	}
	if len(opts.Query) > 0 {
		req.SetQueryParams(opts.Query)
	}
	if opts.Body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(opts.Body)
	}

	start := time.Now()
	resp, err := req.Execute(method, endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.metrics.RecordGatewayStatus(StatusTransport)
		log.Warn("backend unreachable", zap.Error(err))
		return &Error{StatusCode: StatusTransport, Message: MsgConnection, Err: err}
	}

	status := resp.StatusCode()
	c.metrics.RecordGatewayStatus(status)
	log = log.With(zap.Int("status", status), zap.Duration("duration", time.Since(start)))

	if status < 200 || status > 299 {
		gerr := classify(status, opts.Resource)
		switch status {
		case http.StatusUnauthorized:
			if !opts.Anonymous {
				if err := c.tokens.ClearToken(ctx); err != nil {
					log.Error("failed to clear expired credential", zap.Error(err))
				}
			}
			log.Info("credential rejected")
		case http.StatusNotFound:
			log.Debug("not found")
		default:
			log.Warn("backend call failed")
		}
		return gerr
	}

	log.Debug("backend call succeeded")
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return &Error{StatusCode: status, Message: MsgGeneric, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
