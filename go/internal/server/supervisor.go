// Package server accepts connections, enforces the admission ceiling and runs
// the per-connection read/write loops.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionhouse/go/internal/protocol"
	"github.com/mcdev12/auctionhouse/go/internal/registry"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// maxLineBytes bounds a single command line. Anything longer than this is not
// a protocol the server speaks.
const maxLineBytes = 64 * 1024

// Supervisor owns the accept loop and spawns one handling goroutine per
// admitted connection.
type Supervisor struct {
	handler  *protocol.Handler
	registry *registry.Registry

	// admission is nil when maxConnections is 0 (unbounded).
	admission *semaphore.Weighted
}

// NewSupervisor creates a supervisor. maxConnections of 0 means no ceiling.
func NewSupervisor(handler *protocol.Handler, reg *registry.Registry, maxConnections int) *Supervisor {
	s := &Supervisor{handler: handler, registry: reg}
	if maxConnections > 0 {
		s.admission = semaphore.NewWeighted(int64(maxConnections))
	}
	return s
}

// Serve accepts connections from ln until ctx is cancelled or the listener
// fails. When the ceiling is reached the accept path blocks on the admission
// semaphore, so the (N+1)-th client is not accepted until a slot frees.
func (s *Supervisor) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		if err := ln.Close(); err != nil {
			log.Warn().Err(err).Msg("closing listener")
		}
	}()

	for {
		if s.admission != nil {
			if err := s.admission.Acquire(ctx, 1); err != nil {
				return nil // ctx cancelled while at capacity
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if s.admission != nil {
				s.admission.Release(1)
			}
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Error().Err(err).Msg("accept failed")
			continue
		}

		go s.handleConn(conn)
	}
}

// Admit blocks until a connection slot is free. Transports that accept
// streams outside Serve (the websocket endpoint) call this before handing the
// stream to HandleConn, and Release when HandleConn returns.
func (s *Supervisor) Admit(ctx context.Context) error {
	if s.admission == nil {
		return nil
	}
	return s.admission.Acquire(ctx, 1)
}

// Release frees a slot taken by Admit.
func (s *Supervisor) Release() {
	if s.admission != nil {
		s.admission.Release(1)
	}
}

// HandleConn runs one already-admitted stream through the command loop.
func (s *Supervisor) HandleConn(conn io.ReadWriteCloser) {
	s.serveClient(conn)
}

func (s *Supervisor) handleConn(conn net.Conn) {
	defer func() {
		if s.admission != nil {
			s.admission.Release(1)
		}
	}()
	s.serveClient(conn)
}

// serveClient registers the connection, pumps its outbound queue and loops
// read line / handle / queue reply until the stream ends.
func (s *Supervisor) serveClient(conn io.ReadWriteCloser) {
	id := uuid.New()
	client := s.registry.Register(id)

	log.Info().Str("client", id.String()).Msg("client connected")

	// Sole writer of the stream. Drains until Disconnect closes the queue;
	// write errors cannot be reported to anyone, so they only stop further
	// writes from being attempted.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		w := bufio.NewWriter(conn)
		broken := false
		for line := range client.Send() {
			if broken {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
				broken = true
				continue
			}
			if err := w.Flush(); err != nil {
				broken = true
			}
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		client.Reply(s.handler.Handle(id, scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		log.Debug().Err(err).Str("client", id.String()).Msg("read loop ended")
	}

	s.registry.Disconnect(id)
	<-writeDone
	if err := conn.Close(); err != nil {
		log.Debug().Err(err).Str("client", id.String()).Msg("closing connection")
	}

	log.Info().Str("client", id.String()).Msg("client disconnected")
}
