// Package registry tracks which connections are attached and owns the
// per-connection outbound queues that notifications and replies flow through.
package registry

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// sendBuffer bounds the outbound queue per connection. Async notifications
// that would overrun it are dropped; delivery is best effort.
const sendBuffer = 64

// Client is one connection's registry record. Records are append-only: a
// disconnect flips the connected flag but the entry stays, so item owner and
// bidder references remain resolvable for the life of the process.
type Client struct {
	ID        uuid.UUID
	send      chan string
	connected bool
}

// Send exposes the outbound queue for the connection's write pump.
func (c *Client) Send() <-chan string {
	return c.send
}

// Reply queues a direct command response. Only the connection's own read loop
// may call it: that loop is the one that later closes the queue, so the send
// can never race the close.
func (c *Client) Reply(line string) {
	c.send <- line
}

// Registry maps connection identifiers to their records.
type Registry struct {
	mu        sync.RWMutex
	clients   map[uuid.UUID]*Client
	completed int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[uuid.UUID]*Client)}
}

// Register records a newly accepted connection and returns its record.
func (r *Registry) Register(id uuid.UUID) *Client {
	c := &Client{ID: id, send: make(chan string, sendBuffer), connected: true}
	r.mu.Lock()
	r.clients[id] = c
	r.mu.Unlock()
	return c
}

// Disconnect marks the connection as gone and closes its outbound queue. The
// record itself is retained. Closing under the write lock guarantees no
// Notify is mid-send on the queue.
func (r *Registry) Disconnect(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || !c.connected {
		return
	}
	c.connected = false
	r.completed++
	close(c.send)
}

// Notify queues line for the identified connection if it is still attached.
// Unknown or disconnected targets are dropped silently; a full queue drops
// the line rather than block the caller.
func (r *Registry) Notify(id uuid.UUID, line string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok || !c.connected {
		return
	}
	select {
	case c.send <- line:
	default:
		log.Warn().
			Str("client", id.String()).
			Str("line", line).
			Msg("outbound queue full, notification dropped")
	}
}

// Connected reports whether the identified connection is still attached.
func (r *Registry) Connected(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return ok && c.connected
}

// Active counts currently attached connections.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients) - r.completed
}

// Completed counts connections that have come and gone.
func (r *Registry) Completed() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.completed
}
