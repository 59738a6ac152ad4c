package host

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/oauth"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/page"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRedirect(t *testing.T) {
	const prefix = "https://ext.example/oauth/callback"

	tests := []struct {
		url  string
		want bool
	}{
		{prefix + "?verification_code=x&success=true", true},
		{prefix, true},
		{prefix + "#done", true},
		{"https://auth.example/authorize?redirect=" + prefix, false},
		{"https://ext.example/other", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRedirect(tt.url, prefix), tt.url)
	}
	assert.False(t, IsRedirect(prefix, ""))
}

func TestNotConnected(t *testing.T) {
	var b *Browser
	assert.ErrorIs(t, b.OpenTab(context.Background(), "https://x.example"), ErrNotConnected)
	_, err := b.FindPage(context.Background(), "https://x.example")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, b.Close())

	_, err = NewAuthWindow(nil, "https://x.example", nil).LaunchAuthFlow(context.Background(), "https://x.example")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func connectOrSkip(t *testing.T) *Browser {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no chrome binary found")
	}
	b, err := Connect(context.Background(), Config{Headless: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestAuthWindowFollowsRedirect(t *testing.T) {
	b := connectOrSkip(t)

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authorize":
			http.Redirect(w, r, srv.URL+"/callback?verification_code=tok&success=true", http.StatusFound)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	redirect, err := NewAuthWindow(b, srv.URL+"/callback", nil).LaunchAuthFlow(ctx, srv.URL+"/authorize")
	require.NoError(t, err)

	token, err := oauth.ValidateRedirect(redirect)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestOpenTabAndFindPage(t *testing.T) {
	b := connectOrSkip(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>chat</body></html>"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	require.NoError(t, b.OpenTab(ctx, srv.URL+"/chat"))
	var tab *rod.Page
	require.Eventually(t, func() bool {
		p, err := b.FindPage(ctx, srv.URL)
		tab = p
		return err == nil
	}, 10*time.Second, 100*time.Millisecond)

	require.NoError(t, tab.Context(ctx).WaitLoad())
	out, err := page.NewLive(tab).Evaluate(ctx, `() => document.body.textContent`)
	require.NoError(t, err)
	assert.Equal(t, "chat", out)
}
