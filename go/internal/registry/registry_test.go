package registry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyDelivery(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	c := r.Register(id)

	r.Notify(id, ":outbid widget 30")

	select {
	case line := <-c.Send():
		assert.Equal(t, ":outbid widget 30", line)
	default:
		t.Fatal("expected a queued line")
	}
}

func TestNotifyDisconnectedDropsSilently(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	c := r.Register(id)
	r.Disconnect(id)

	// Must not panic and must not queue anything.
	r.Notify(id, ":won widget 15")

	line, ok := <-c.Send()
	assert.False(t, ok, "queue is closed after disconnect")
	assert.Empty(t, line)
}

func TestNotifyUnknownTarget(t *testing.T) {
	r := NewRegistry()
	assert.NotPanics(t, func() {
		r.Notify(uuid.New(), ":sold widget 15")
	})
}

func TestConnectedLifecycle(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	assert.False(t, r.Connected(id))

	r.Register(id)
	assert.True(t, r.Connected(id))

	r.Disconnect(id)
	assert.False(t, r.Connected(id), "record survives but reads as disconnected")

	// A second disconnect is a no-op, not a double close.
	assert.NotPanics(t, func() { r.Disconnect(id) })
}

func TestActiveAndCompletedCounts(t *testing.T) {
	r := NewRegistry()
	a, b := uuid.New(), uuid.New()

	r.Register(a)
	r.Register(b)
	require.Equal(t, 2, r.Active())
	require.Equal(t, 0, r.Completed())

	r.Disconnect(a)
	assert.Equal(t, 1, r.Active())
	assert.Equal(t, 1, r.Completed())

	r.Disconnect(b)
	assert.Equal(t, 0, r.Active())
	assert.Equal(t, 2, r.Completed())
}

func TestNotifyFullQueueDropsRatherThanBlock(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	r.Register(id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < sendBuffer+10; i++ {
			r.Notify(id, ":outbid widget 1")
		}
	}()
	<-done // would deadlock if Notify blocked on the full queue
}
