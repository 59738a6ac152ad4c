package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/background"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/content"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/messages"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/runtime"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/storage"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, origins ...string) (*httptest.Server, *background.Session) {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	cfg.Server.AllowOrigins = origins

	metrics := monitoring.NewMetrics()
	session := background.NewSession(storage.NewMemory(), new(testutil.MockLauncher), time.Second, nil, metrics)
	router, err := background.NewRouter(
		background.NewHandlers(testutil.NewMockCRM(t), session, new(testutil.MockTabOpener), nil).Table(),
		nil, metrics, nil,
	)
	require.NoError(t, err)

	srv := httptest.NewServer(New(cfg, nil, router, session, metrics, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, session
}

func TestHealth(t *testing.T) {
	srv, session := newTestServer(t)

	get := func() string {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}

	assert.JSONEq(t, `{"status":"ok","authenticated":false}`, get())
	require.NoError(t, session.Credentials().SetToken(context.Background(), "tok"))
	assert.JSONEq(t, `{"status":"ok","authenticated":true}`, get())
}

func TestRuntimeEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	client, err := runtime.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http")+"/runtime", nil, nil)
	require.NoError(t, err)
	defer client.Close()

	relay := content.NewRelay(client, nil)
	person, err := relay.LookupPerson(context.Background(), "+15550100")
	require.NoError(t, err)
	assert.Nil(t, person)

	_, err = content.Do[*messages.NoteCreateSuccess](context.Background(), relay, &messages.NoteCreate{PersonID: 1})
	var er *messages.ErrorResponse
	require.ErrorAs(t, err, &er)
	assert.Equal(t, messages.CodeInvalidRequest, er.Code)
}

func TestRuntimeRefusesForeignOrigin(t *testing.T) {
	const extension = "chrome-extension://abcdefghijklmnop"
	srv, session := newTestServer(t, extension)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/runtime"
	ctx := context.Background()
	require.NoError(t, session.Credentials().SetToken(ctx, "stored-token"))

	_, err := runtime.Dial(ctx, url, http.Header{"Origin": {"https://evil.example"}}, nil)
	require.Error(t, err)
	token, err := session.Credentials().Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)

	client, err := runtime.Dial(ctx, url, http.Header{"Origin": {extension}}, nil)
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, content.NewRelay(client, nil).SignOut(ctx))
	token, err = session.Credentials().Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	_, _ = http.Get(srv.URL + "/health")
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "chatrelay_http_requests_total")
}

func TestAgentWithoutBrowser(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := config.Default()
	cfg.Storage.Path = ":memory:"
	cfg.Browser.ControlURL = "ws://127.0.0.1:1/devtools/browser/none"
	cfg.Server.Port = strconv.Itoa(port)
	cfg.Server.ShutdownWait = time.Second

	agent, err := NewAgent(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer agent.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agent.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Addr() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	client, err := runtime.Dial(context.Background(), "ws://"+cfg.Addr()+"/runtime", nil, nil)
	require.NoError(t, err)
	reply, err := client.Send(context.Background(), []byte(`{"type":"TAB_OPEN","url":"https://crm.example/p/1"}`))
	require.NoError(t, err)
	resp, err := messages.DecodeResponse(reply)
	require.NoError(t, err)
	assert.Equal(t, messages.TypeTabOpen.Error(), resp.Type())
	_ = client.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
