package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribersInOrder(t *testing.T) {
	bus := New("test", nil)

	var got []string
	bus.Subscribe("ping", func(p []byte) { got = append(got, "a:"+string(p)) })
	bus.Subscribe("ping", func(p []byte) { got = append(got, "b:"+string(p)) })
	bus.Subscribe("other", func(p []byte) { got = append(got, "x") })

	n := bus.Publish("ping", []byte("1"))
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a:1", "b:1"}, got)
}

func TestNamespacesDoNotMix(t *testing.T) {
	a := New("a", nil)
	assert.Equal(t, "a:ping", a.Event("ping"))
	assert.Equal(t, "ping", New("", nil).Event("ping"))
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	bus := New("test", nil)

	calls := 0
	unsub := bus.Subscribe("ping", func([]byte) { calls++ })
	keep := bus.Subscribe("ping", func([]byte) {})
	defer keep()

	unsub()
	unsub()
	bus.Publish("ping", nil)

	assert.Zero(t, calls)
	assert.Equal(t, 1, bus.Subscribers("ping"))
}

func TestUnsubscribeDuringDelivery(t *testing.T) {
	bus := New("test", nil)

	var calls int
	var unsub func()
	unsub = bus.Subscribe("ping", func([]byte) {
		calls++
		unsub()
	})

	bus.Publish("ping", nil)
	bus.Publish("ping", nil)
	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.Subscribers("ping"))
}

func TestPublishFromHandler(t *testing.T) {
	bus := New("test", nil)

	var reply []byte
	bus.Subscribe("response", func(p []byte) { reply = p })
	bus.Subscribe("request", func(p []byte) { bus.Publish("response", append([]byte("re:"), p...)) })

	bus.Publish("request", []byte("x"))
	require.NotNil(t, reply)
	assert.Equal(t, "re:x", string(reply))
}

func TestPanickingHandlerIsContained(t *testing.T) {
	bus := New("test", nil)

	reached := false
	bus.Subscribe("ping", func([]byte) { panic("boom") })
	bus.Subscribe("ping", func([]byte) { reached = true })

	assert.NotPanics(t, func() { bus.Publish("ping", nil) })
	assert.True(t, reached)
}
