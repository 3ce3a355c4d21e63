package server

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// WSServer exposes the same line protocol over websocket text messages, one
// message per line, so browser clients can join the auction.
type WSServer struct {
	supervisor *Supervisor
	upgrader   websocket.Upgrader
}

// NewWSServer creates the websocket front for the supervisor.
func NewWSServer(supervisor *Supervisor) *WSServer {
	return &WSServer{
		supervisor: supervisor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins in development - restrict in production
				return true
			},
		},
	}
}

// Handler returns the CORS-wrapped HTTP handler serving /ws.
func (s *WSServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodHead, http.MethodGet},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}

func (s *WSServer) serveWS(w http.ResponseWriter, r *http.Request) {
	// Admission applies to websocket clients the same as TCP ones.
	if err := s.supervisor.Admit(r.Context()); err != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.supervisor.Release()
		log.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	go func() {
		defer s.supervisor.Release()
		s.supervisor.HandleConn(&wsConn{conn: conn})
	}()
}

// wsConn adapts a websocket connection to the byte-stream interface the
// supervisor reads. Each inbound text message is surfaced as one
// newline-terminated line; each complete outbound line becomes one text
// message.
type wsConn struct {
	conn *websocket.Conn
	in   bytes.Buffer
	out  bytes.Buffer
}

func (c *wsConn) Read(p []byte) (int, error) {
	for c.in.Len() == 0 {
		kind, msg, err := c.conn.ReadMessage()
		if err != nil {
			return 0, io.EOF
		}
		if kind != websocket.TextMessage {
			continue
		}
		c.in.Write(bytes.TrimRight(msg, "\r\n"))
		c.in.WriteByte('\n')
	}
	return c.in.Read(p)
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.out.Write(p)
	for {
		line, err := c.out.ReadBytes('\n')
		if err != nil {
			// Incomplete line, keep it buffered for the next Write.
			c.out.Write(line)
			return len(p), nil
		}
		line = bytes.TrimRight(line, "\n")
		if err := c.conn.WriteMessage(websocket.TextMessage, line); err != nil {
			return 0, err
		}
	}
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
