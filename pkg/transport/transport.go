// Package transport provides the client-side push streams sigstream
// receives updates on.
//
// A Stream owns exactly one live server-to-client connection and
// surfaces three events: opened, message received (raw payload), and
// error. Streams never interpret payloads; dispatching is the caller's
// concern. Keep-alive and reconnection are handled underneath (by the
// SSE library's retry strategy, or by the host for WebSocket) and are
// not part of this interface.
package transport

import (
	"context"
	"errors"
)

// ErrAlreadyConnected is returned by Connect when the stream already
// has a live connection. Callers that want idempotent initialization
// treat it as a no-op.
var ErrAlreadyConnected = errors.New("transport: already connected")

// Stream is a single long-lived push connection.
//
// Callbacks must be registered before Connect and are invoked from the
// stream's own goroutine, one at a time, in message arrival order.
type Stream interface {
	// Connect establishes the connection and starts delivering messages.
	// It does not block for the lifetime of the stream. A second call on
	// a live stream returns ErrAlreadyConnected.
	Connect(ctx context.Context) error

	// Close tears down the connection. Message delivery stops; already
	// delivered messages are unaffected.
	Close() error

	// OnOpen registers the connection-opened callback.
	OnOpen(fn func())

	// OnMessage registers the raw payload callback.
	OnMessage(fn func(data []byte))

	// OnError registers the transport failure callback. Errors are
	// surfaced, not retried here.
	OnError(fn func(err error))
}

// callbacks is the shared callback set embedded by stream
// implementations. The zero value is usable; unset callbacks are
// no-ops.
type callbacks struct {
	open    func()
	message func(data []byte)
	failure func(err error)
}

func (c *callbacks) OnOpen(fn func())               { c.open = fn }
func (c *callbacks) OnMessage(fn func(data []byte)) { c.message = fn }
func (c *callbacks) OnError(fn func(err error))     { c.failure = fn }

func (c *callbacks) fireOpen() {
	if c.open != nil {
		c.open()
	}
}

func (c *callbacks) fireMessage(data []byte) {
	if c.message != nil {
		c.message(data)
	}
}

func (c *callbacks) fireError(err error) {
	if c.failure != nil {
		c.failure(err)
	}
}
