package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/oauth"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// AuthWindow runs the interactive authorization flow in its own tab. The
// flow ends when the tab reaches a URL under RedirectPrefix or is closed.
type AuthWindow struct {
	browser        *Browser
	redirectPrefix string
	logger         *zap.Logger
}

// NewAuthWindow creates a launcher bound to b
func NewAuthWindow(b *Browser, redirectPrefix string, logger *zap.Logger) *AuthWindow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthWindow{browser: b, redirectPrefix: redirectPrefix, logger: logger}
}

// LaunchAuthFlow opens authURL and returns the redirect URL
func (w *AuthWindow) LaunchAuthFlow(ctx context.Context, authURL string) (string, error) {
	if w.browser == nil || w.browser.browser == nil {
		return "", ErrNotConnected
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	page, err := w.browser.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("open auth window: %w", err)
	}
	defer func() { _ = page.Close() }()

	redirect := make(chan string, 1)
	closed := make(chan struct{}, 1)

	waitNav := page.Context(ctx).EachEvent(func(ev *proto.PageFrameNavigated) bool {
		if ev.Frame.ParentID != "" || !IsRedirect(ev.Frame.URL, w.redirectPrefix) {
			return false
		}
		select {
		case redirect <- ev.Frame.URL:
		default:
		}
		return true
	})
	waitClose := w.browser.browser.Context(ctx).EachEvent(func(ev *proto.TargetTargetDestroyed) bool {
		if ev.TargetID != page.TargetID {
			return false
		}
		select {
		case closed <- struct{}{}:
		default:
		}
		return true
	})
	go waitNav()
	go waitClose()

	if err := page.Context(ctx).Navigate(authURL); err != nil {
		return "", fmt.Errorf("navigate auth window: %w", err)
	}
	w.logger.Debug("auth window open")

	select {
	case u := <-redirect:
		return u, nil
	case <-closed:
		return "", oauth.ErrUserCancelled
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// IsRedirect reports whether u is under prefix, ignoring query and fragment
func IsRedirect(u, prefix string) bool {
	if prefix == "" {
		return false
	}
	base := u
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	return strings.HasPrefix(base, strings.TrimRight(prefix, "?"))
}
