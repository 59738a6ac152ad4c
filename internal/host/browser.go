// Package host drives the Chrome instance the agent runs against.
//
// The privileged agent uses it for the interactive sign-in window and for
// opening tabs; the page-world observer evaluates inside a chat tab found by
// URL prefix.
package host

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// ErrNotConnected is returned before Connect succeeds
var ErrNotConnected = errors.New("browser not connected")

// Config selects the browser to drive. An empty ControlURL launches a local
// Chrome through rod's launcher.
type Config struct {
	ControlURL string
	Headless   bool
}

// Browser is a connected Chrome
type Browser struct {
	browser    *rod.Browser
	controlURL string
	launched   *launcher.Launcher
	logger     *zap.Logger
}

// Connect attaches to cfg.ControlURL or launches a browser
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Browser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var l *launcher.Launcher
	controlURL := cfg.ControlURL
	if controlURL == "" {
		l = launcher.New().Headless(cfg.Headless).Leakless(false)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	if err := (proto.TargetSetDiscoverTargets{Discover: true}).Call(browser); err != nil {
		logger.Warn("target discovery unavailable", zap.Error(err))
	}

	logger.Info("browser connected", zap.String("control_url", controlURL))
	return &Browser{
		browser:    browser,
		controlURL: controlURL,
		launched:   l,
		logger:     logger,
	}, nil
}

// ControlURL returns the DevTools websocket URL
func (b *Browser) ControlURL() string {
	return b.controlURL
}

// OpenTab opens url in a new tab and leaves it open
func (b *Browser) OpenTab(ctx context.Context, url string) error {
	if b == nil || b.browser == nil {
		return ErrNotConnected
	}
	if _, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url}); err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	b.logger.Debug("tab opened", zap.String("url", url))
	return nil
}

// FindPage returns the first tab whose URL starts with prefix
func (b *Browser) FindPage(ctx context.Context, prefix string) (*rod.Page, error) {
	if b == nil || b.browser == nil {
		return nil, ErrNotConnected
	}
	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if strings.HasPrefix(info.URL, prefix) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no tab matching %s", prefix)
}

// Close disconnects, and kills the browser if this process launched it
func (b *Browser) Close() error {
	if b == nil || b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	if b.launched != nil {
		b.launched.Kill()
	}
	return err
}
