package signals

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sigstream/sigstream/pkg/jsonpatch"
	"github.com/sigstream/sigstream/pkg/transport"
)

// connState tracks the context lifecycle.
type connState uint8

const (
	stateIdle connState = iota
	stateConnected
	stateClosed
)

// Context owns one push-stream connection, the registry of named cells
// it feeds, and the buffer for patches that arrive before their cell
// exists. Construct with New, connect once, close on teardown.
type Context struct {
	mu       sync.Mutex
	state    connState
	registry map[string]*entry
	pending  map[string][]jsonpatch.Patch

	stream  transport.Stream
	msgs    chan []byte
	done    chan struct{}
	loopWG  sync.WaitGroup
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the context logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics instance. Use NewMetrics with a private
// registerer to isolate contexts (required when creating more than one
// context against the same registry).
func WithMetrics(m *Metrics) Option {
	return func(c *Context) {
		c.metrics = m
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used for
// dispatch spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Context) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// WithStream injects the transport stream. When unset, Connect builds
// an SSE stream for the URL it is given.
func WithStream(s transport.Stream) Option {
	return func(c *Context) {
		c.stream = s
	}
}

const tracerName = "sigstream"

// New creates an unconnected context.
func New(opts ...Option) *Context {
	c := &Context{
		registry: make(map[string]*entry),
		pending:  make(map[string][]jsonpatch.Patch),
		msgs:     make(chan []byte, 64),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "signals")
	if c.metrics == nil {
		c.metrics = getDefaultMetrics()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// Connect establishes the push-stream connection and starts the
// dispatch loop. It is idempotent: calling it on a connected context
// logs and returns nil without opening a second stream. url is ignored
// when a stream was injected with WithStream.
func (c *Context) Connect(ctx context.Context, url string) error {
	c.mu.Lock()
	switch c.state {
	case stateConnected:
		c.mu.Unlock()
		c.logger.Info("already connected", "url", url)
		return nil
	case stateClosed:
		c.mu.Unlock()
		return ErrClosed
	}
	if c.stream == nil {
		c.stream = transport.NewSSEStream(url)
	}
	stream := c.stream
	c.mu.Unlock()

	// One stable dispatch function for the stream's lifetime.
	stream.OnMessage(c.enqueueMessage)
	stream.OnOpen(func() {
		c.logger.Info("stream opened", "url", url)
	})
	stream.OnError(func(err error) {
		c.metrics.ConnectionErrors.Inc()
		c.logger.Error("stream error", "url", url, "error", err)
	})

	if err := stream.Connect(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = stateConnected
	c.mu.Unlock()

	c.loopWG.Add(1)
	go c.dispatchLoop()
	return nil
}

// Close tears down the stream and stops the dispatch loop. Buffered
// patches are retained; registrations after Close fail with ErrClosed.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.state == stateClosed {
		c.mu.Unlock()
		return nil
	}
	wasConnected := c.state == stateConnected
	c.state = stateClosed
	stream := c.stream
	c.mu.Unlock()

	var err error
	if stream != nil {
		err = stream.Close()
	}
	if wasConnected {
		close(c.done)
		c.loopWG.Wait()
	}
	return err
}

// enqueueMessage hands a raw payload to the dispatch goroutine,
// preserving arrival order.
func (c *Context) enqueueMessage(data []byte) {
	select {
	case c.msgs <- data:
	case <-c.done:
	}
}

// dispatchLoop is the single goroutine that owns all patch application.
func (c *Context) dispatchLoop() {
	defer c.loopWG.Done()
	for {
		select {
		case data := <-c.msgs:
			c.dispatch(data)
		case <-c.done:
			return
		}
	}
}

// register creates or returns the cell for name, draining any buffered
// patches into its initial value. Idempotent for a matching scope;
// a scope mismatch is a configuration error.
func (c *Context) register(name string, scope Scope, initial any) (*cell, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateIdle:
		return nil, ErrNotInitialized
	case stateClosed:
		return nil, ErrClosed
	}

	if e, ok := c.registry[name]; ok {
		if e.scope != scope {
			return nil, ErrScopeConflict
		}
		return e.cell, nil
	}

	value := initial
	if buffered, ok := c.pending[name]; ok {
		delete(c.pending, name)
		c.metrics.PendingSignals.Set(float64(len(c.pending)))
		value = c.applyAll(name, value, buffered)
	}

	cl := newCell(name, value)
	c.registry[name] = &entry{scope: scope, cell: cl}
	c.metrics.RegisteredSignals.Set(float64(len(c.registry)))
	c.logger.Debug("signal registered", "name", name, "scope", scope.String())
	return cl, nil
}

// applyAll folds patches over a value in order, stopping at the first
// failure and keeping the last successfully-applied value.
func (c *Context) applyAll(name string, value any, patches []jsonpatch.Patch) any {
	for _, p := range patches {
		next, err := jsonpatch.Apply(value, p)
		if err != nil {
			c.metrics.ApplyErrors.Inc()
			c.logger.Error("patch apply failed",
				"name", name,
				"kind", jsonpatch.KindOf(err).String(),
				"error", err)
			return value
		}
		value = next
	}
	return value
}
