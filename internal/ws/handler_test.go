package ws

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/content"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/messages"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/runtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoDispatcher replies with the request's tag turned into a success tag
type echoDispatcher struct {
	delay time.Duration
}

func (d echoDispatcher) Dispatch(_ context.Context, msg []byte, reply func([]byte)) {
	go func() {
		kind, _ := messages.PeekType(msg)
		if d.delay > 0 && kind == messages.TypeConfigGet {
			time.Sleep(d.delay)
		}
		if !kind.Known() {
			reply([]byte(`{"type":"UNKNOWN_MESSAGE"}`))
			return
		}
		reply([]byte(fmt.Sprintf(`{"type":%q,"authenticated":true}`, kind.Success())))
	}()
}

func newServer(t *testing.T, d runtime.Dispatcher, metrics *monitoring.Metrics, origins ...string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/runtime", NewHandler(d, origins, nil, metrics).HandleConnection)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/runtime"
}

func TestRelayOverSocket(t *testing.T) {
	url := newServer(t, echoDispatcher{}, nil)

	client, err := runtime.Dial(context.Background(), url, nil, nil)
	require.NoError(t, err)
	defer client.Close()

	relay := content.NewRelay(client, nil)
	ok, err := relay.Authenticated(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepliesMatchedByEnvelope(t *testing.T) {
	url := newServer(t, echoDispatcher{delay: 50 * time.Millisecond}, nil)

	client, err := runtime.Dial(context.Background(), url, nil, nil)
	require.NoError(t, err)
	defer client.Close()

	kinds := []messages.Type{messages.TypeConfigGet, messages.TypeAuthStatus, messages.TypeSignOut}
	got := make([]messages.Type, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind messages.Type) {
			defer wg.Done()
			reply, err := client.Send(context.Background(), []byte(fmt.Sprintf(`{"type":%q}`, kind)))
			if assert.NoError(t, err) {
				got[i], _ = messages.PeekType(reply)
			}
		}(i, kind)
	}
	wg.Wait()

	for i, kind := range kinds {
		assert.Equal(t, kind.Success(), got[i])
	}
}

func TestUnknownOverSocket(t *testing.T) {
	url := newServer(t, echoDispatcher{}, nil)

	client, err := runtime.Dial(context.Background(), url, nil, nil)
	require.NoError(t, err)
	defer client.Close()

	reply, err := client.Send(context.Background(), []byte(`{"type":"SEND_FAX"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"UNKNOWN_MESSAGE"}`, string(reply))
}

func TestFrameWithoutIDIsDropped(t *testing.T) {
	metrics := monitoring.NewMetrics()
	url := newServer(t, echoDispatcher{}, metrics)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":{"type":"AUTH_STATUS"}}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"msg_1","message":{"type":"AUTH_STATUS"}}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"msg_1","message":{"type":"AUTH_STATUS_SUCCESS","authenticated":true}}`, string(data))
}

func TestOriginCheck(t *testing.T) {
	const extension = "chrome-extension://abcdefghijklmnop"
	url := newServer(t, echoDispatcher{}, nil, extension)

	tests := []struct {
		name   string
		origin string
		status int
	}{
		{"no origin", "", http.StatusSwitchingProtocols},
		{"configured extension", extension, http.StatusSwitchingProtocols},
		{"foreign web page", "https://evil.example", http.StatusForbidden},
		{"other extension", "chrome-extension://zzzzzzzzzzzzzzzz", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusSwitchingProtocols {
				require.NoError(t, err)
				conn.Close()
			} else {
				assert.ErrorIs(t, err, websocket.ErrBadHandshake)
			}
		})
	}
}

func TestForeignOriginCannotSignOut(t *testing.T) {
	var dispatched atomic.Int32
	d := dispatchFunc(func(ctx context.Context, message []byte, reply func([]byte)) {
		dispatched.Add(1)
		reply([]byte(`{"type":"SIGN_OUT_SUCCESS"}`))
	})
	url := newServer(t, d, nil)

	_, err := runtime.Dial(context.Background(), url, http.Header{"Origin": {"https://evil.example"}}, nil)
	require.Error(t, err)
	assert.Zero(t, dispatched.Load())
}

func TestWildcardOrigin(t *testing.T) {
	url := newServer(t, echoDispatcher{}, nil, "*")

	client, err := runtime.Dial(context.Background(), url, http.Header{"Origin": {"https://any.example"}}, nil)
	require.NoError(t, err)
	client.Close()
}

type dispatchFunc func(ctx context.Context, message []byte, reply func([]byte))

func (f dispatchFunc) Dispatch(ctx context.Context, message []byte, reply func([]byte)) {
	f(ctx, message, reply)
}
