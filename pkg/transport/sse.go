package transport

import (
	"context"
	"net/http"
	"sync"

	sse "github.com/r3labs/sse/v2"
)

// SSEStream receives updates over a Server-Sent Events connection using
// github.com/r3labs/sse. Reconnection and keep-alive are the library's
// responsibility; this type only owns the subscription lifecycle.
type SSEStream struct {
	callbacks

	url    string
	client *sse.Client

	mu        sync.Mutex
	cancel    context.CancelFunc
	connected bool
}

// SSEOption configures an SSEStream.
type SSEOption func(*SSEStream)

// WithHTTPClient sets the HTTP client used for the event stream.
func WithHTTPClient(hc *http.Client) SSEOption {
	return func(s *SSEStream) {
		s.client.Connection = hc
	}
}

// WithHeader adds a request header to the stream subscription.
func WithHeader(key, value string) SSEOption {
	return func(s *SSEStream) {
		s.client.Headers[key] = value
	}
}

// NewSSEStream creates a stream for the given event-stream URL.
func NewSSEStream(url string, opts ...SSEOption) *SSEStream {
	s := &SSEStream{
		url:    url,
		client: sse.NewClient(url),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect subscribes to the event stream. The subscription runs in its
// own goroutine until Close or a terminal transport failure.
func (s *SSEStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	subCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.connected = true
	s.mu.Unlock()

	s.client.OnConnect(func(*sse.Client) {
		s.fireOpen()
	})

	go func() {
		err := s.client.SubscribeRawWithContext(subCtx, func(msg *sse.Event) {
			// Keep-alive comments arrive as events with no data.
			if len(msg.Data) == 0 {
				return
			}
			s.fireMessage(msg.Data)
		})

		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()

		if err != nil && subCtx.Err() == nil {
			s.fireError(err)
		}
	}()

	return nil
}

// Close stops the subscription.
func (s *SSEStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.connected = false
	return nil
}

// URL returns the stream's endpoint.
func (s *SSEStream) URL() string {
	return s.url
}
