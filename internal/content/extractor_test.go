package content

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/bridge"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/page"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, bus *bridge.Bus, resp types.ExtractionResponse) {
	t.Helper()
	payload, err := sonic.Marshal(resp)
	require.NoError(t, err)
	bus.Publish(types.ExtractResponseEvent, payload)
}

func decodeRequest(t *testing.T, payload []byte) types.ExtractionRequest {
	t.Helper()
	var req types.ExtractionRequest
	require.NoError(t, sonic.Unmarshal(payload, &req))
	return req
}

func TestExtractEndToEnd(t *testing.T) {
	bus := bridge.New("chatrelay", nil)

	rt, err := page.NewRuntime(page.DefaultConfig(), nil)
	require.NoError(t, err)
	defer rt.Close()
	script, err := os.ReadFile("../page/testdata/two_messages.js")
	require.NoError(t, err)
	require.NoError(t, rt.Load(string(script)))

	obs := page.NewObserver(bus, rt, nil)
	obs.Attach()
	defer obs.Detach()

	ext := NewExtractor(bus, time.Second, nil, nil)
	msgs, err := ext.Extract(context.Background(), Params{ContactName: "John", UserName: "Me"})
	require.NoError(t, err)

	assert.Equal(t, []types.Message{
		{ID: "1", Text: "Hi", Timestamp: 1700000000, FromMe: false, SenderName: "John"},
		{ID: "2", Text: "Hello", Timestamp: 1700000010, FromMe: true, SenderName: "Me"},
	}, msgs)
	assert.Zero(t, bus.Subscribers(types.ExtractResponseEvent))
}

func TestUnmatchedResponseIsIgnored(t *testing.T) {
	bus := bridge.New("t", nil)

	bus.Subscribe(types.ExtractRequestEvent, func(p []byte) {
		req := decodeRequest(t, p)
		publish(t, bus, types.ExtractionResponse{Identifier: "someone-else", Success: false, Error: "wrong"})
		publish(t, bus, types.ExtractionResponse{Identifier: req.Identifier, Success: true, Messages: []types.Message{{ID: "ok"}}})
		publish(t, bus, types.ExtractionResponse{Identifier: req.Identifier, Success: false, Error: "duplicate"})
	})

	msgs, err := NewExtractor(bus, time.Second, nil, nil).Extract(context.Background(), Params{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "ok", msgs[0].ID)
}

func TestStrayResponseWithNoOutstandingRequest(t *testing.T) {
	bus := bridge.New("t", nil)
	assert.Equal(t, 0, bus.Publish(types.ExtractResponseEvent, []byte(`{"identifier":"ext_x","success":true}`)))
}

func TestTimeoutDeregistersListener(t *testing.T) {
	bus := bridge.New("t", nil)

	var issued string
	bus.Subscribe(types.ExtractRequestEvent, func(p []byte) {
		issued = decodeRequest(t, p).Identifier
	})

	ext := NewExtractor(bus, 30*time.Millisecond, nil, nil)
	start := time.Now()
	msgs, err := ext.Extract(context.Background(), Params{})

	assert.ErrorIs(t, err, ErrExtractionTimeout)
	assert.Equal(t, "extraction timed out", err.Error())
	assert.Nil(t, msgs)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.NotEmpty(t, issued)

	// a late, correctly identified response reaches nobody
	assert.Zero(t, bus.Subscribers(types.ExtractResponseEvent))
	publish(t, bus, types.ExtractionResponse{Identifier: issued, Success: true})
}

func TestFailureResponses(t *testing.T) {
	tests := []struct {
		name     string
		resp     types.ExtractionResponse
		notReady bool
		reason   string
	}{
		{"not ready", types.ExtractionResponse{Code: types.CodeNotReady, Error: page.ReasonNotReady}, true, page.ReasonNotReady},
		{"no active chat", types.ExtractionResponse{Code: types.CodeNoActiveChat, Error: page.ReasonNoActiveChat}, false, page.ReasonNoActiveChat},
		{"no reason", types.ExtractionResponse{}, false, "extraction failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := bridge.New("t", nil)
			bus.Subscribe(types.ExtractRequestEvent, func(p []byte) {
				resp := tt.resp
				resp.Identifier = decodeRequest(t, p).Identifier
				publish(t, bus, resp)
			})

			_, err := NewExtractor(bus, time.Second, nil, nil).Extract(context.Background(), Params{})
			require.Error(t, err)
			assert.Equal(t, tt.reason, err.Error())
			assert.Equal(t, tt.notReady, errors.Is(err, ErrPageNotReady))

			var fe *FailureError
			assert.True(t, errors.As(err, &fe))
		})
	}
}

func TestEmptyConversationIsSuccess(t *testing.T) {
	bus := bridge.New("t", nil)
	bus.Subscribe(types.ExtractRequestEvent, func(p []byte) {
		publish(t, bus, types.ExtractionResponse{Identifier: decodeRequest(t, p).Identifier, Success: true})
	})

	msgs, err := NewExtractor(bus, time.Second, nil, nil).Extract(context.Background(), Params{})
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestOutOfOrderResponses(t *testing.T) {
	bus := bridge.New("t", nil)

	var mu sync.Mutex
	var pending []types.ExtractionRequest
	bus.Subscribe(types.ExtractRequestEvent, func(p []byte) {
		mu.Lock()
		pending = append(pending, decodeRequest(t, p))
		mu.Unlock()
	})

	ext := NewExtractor(bus, 2*time.Second, nil, nil)

	type outcome struct {
		contact string
		msgs    []types.Message
		err     error
	}
	results := make(chan outcome, 2)
	for _, contact := range []string{"first", "second"} {
		go func(contact string) {
			msgs, err := ext.Extract(context.Background(), Params{ContactName: contact})
			results <- outcome{contact, msgs, err}
		}(contact)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pending) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	reqs := append([]types.ExtractionRequest(nil), pending...)
	mu.Unlock()
	for i := len(reqs) - 1; i >= 0; i-- {
		publish(t, bus, types.ExtractionResponse{
			Identifier: reqs[i].Identifier,
			Success:    true,
			Messages:   []types.Message{{ID: reqs[i].ContactName}},
		})
	}

	for i := 0; i < 2; i++ {
		r := <-results
		require.NoError(t, r.err)
		require.Len(t, r.msgs, 1)
		assert.Equal(t, r.contact, r.msgs[0].ID)
	}
}

func TestContextCancellation(t *testing.T) {
	bus := bridge.New("t", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(bus, time.Second, nil, nil).Extract(ctx, Params{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, bus.Subscribers(types.ExtractResponseEvent))
}

func TestSnapshotCarriesChat(t *testing.T) {
	bus := bridge.New("t", nil)
	bus.Subscribe(types.ExtractRequestEvent, func(p []byte) {
		publish(t, bus, types.ExtractionResponse{
			Identifier: decodeRequest(t, p).Identifier,
			Success:    true,
			Chat:       &types.Chat{ID: "c1", Title: "John"},
		})
	})

	res, err := NewExtractor(bus, time.Second, nil, nil).Snapshot(context.Background(), Params{})
	require.NoError(t, err)
	require.NotNil(t, res.Chat)
	assert.Equal(t, "John", res.Chat.Title)
}
