package transport

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsDefaultReadTimeout bounds how long the read loop waits for a
// message (including server pings) before treating the connection as
// dead.
const wsDefaultReadTimeout = 90 * time.Second

// WSStream receives updates over a WebSocket connection. Each text
// message carries one envelope payload.
type WSStream struct {
	callbacks

	url         string
	dialer      *websocket.Dialer
	readTimeout time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	closed    bool
}

// WSOption configures a WSStream.
type WSOption func(*WSStream)

// WithDialer sets the websocket dialer.
func WithDialer(d *websocket.Dialer) WSOption {
	return func(s *WSStream) {
		s.dialer = d
	}
}

// WithReadTimeout sets the per-message read deadline.
func WithReadTimeout(d time.Duration) WSOption {
	return func(s *WSStream) {
		s.readTimeout = d
	}
}

// NewWSStream creates a stream for the given ws:// or wss:// URL.
func NewWSStream(url string, opts ...WSOption) *WSStream {
	s := &WSStream{
		url:         url,
		dialer:      websocket.DefaultDialer,
		readTimeout: wsDefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials the server and starts the read loop.
func (s *WSStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.mu.Unlock()

	conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	})

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.closed = false
	s.mu.Unlock()

	s.fireOpen()
	go s.readLoop(conn)
	return nil
}

// readLoop reads messages until the connection closes or errors.
func (s *WSStream) readLoop(conn *websocket.Conn) {
	for {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			wasClosed := s.closed
			s.connected = false
			s.mu.Unlock()

			if !wasClosed && websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				s.fireError(err)
			}
			return
		}
		if len(msg) == 0 {
			continue
		}
		s.fireMessage(msg)
	}
}

// Close sends a close frame and tears down the connection.
func (s *WSStream) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.closed = true
	s.connected = false
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return conn.Close()
}

// URL returns the stream's endpoint.
func (s *WSStream) URL() string {
	return s.url
}
