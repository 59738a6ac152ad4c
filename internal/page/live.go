package page

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
)

// Live evaluates inside a real browser tab
type Live struct {
	page *rod.Page
}

// NewLive wraps a rod page
func NewLive(p *rod.Page) *Live {
	return &Live{page: p}
}

// Evaluate runs fn in the tab's main world
func (l *Live) Evaluate(ctx context.Context, fn string) (string, error) {
	res, err := l.page.Context(ctx).Eval(fn)
	if err != nil {
		return "", fmt.Errorf("evaluate in tab: %w", err)
	}
	return res.Value.Str(), nil
}
