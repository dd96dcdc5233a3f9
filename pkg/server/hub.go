package server

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sigstream/sigstream/pkg/jsonpatch"
	"github.com/sigstream/sigstream/pkg/protocol"
)

// ErrSourceExists is returned when registering a source under a name
// the hub already tracks.
var ErrSourceExists = errors.New("server: source name already registered")

// ErrHubClosed is returned for operations on a closed hub.
var ErrHubClosed = errors.New("server: hub closed")

// defaultKeepAlive is the interval between SSE keep-alive comments and
// WebSocket pings.
const defaultKeepAlive = 15 * time.Second

// subscriberBuffer is the per-subscriber envelope queue depth. A full
// buffer marks the subscriber as slow and disconnects it.
const subscriberBuffer = 64

// source is one tracked signal on the server.
type source struct {
	zero  any // the type's zero value, JSON-shaped; catch-up baseline
	value any // current JSON-shaped value
}

// subscriber is one attached client connection.
type subscriber struct {
	ch   chan []byte
	done chan struct{}
	once sync.Once
}

// drop marks the subscriber dead. Safe to call more than once.
func (s *subscriber) drop() {
	s.once.Do(func() { close(s.done) })
}

// Hub tracks named sources and fans out one envelope per change to all
// attached subscribers.
type Hub struct {
	mu      sync.Mutex
	sources map[string]*source
	subs    map[*subscriber]struct{}
	closed  bool

	keepAlive time.Duration
	logger    *slog.Logger
	metrics   *hubMetrics
	tracer    trace.Tracer
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithKeepAlive sets the SSE comment / WebSocket ping interval.
func WithKeepAlive(d time.Duration) HubOption {
	return func(h *Hub) {
		h.keepAlive = d
	}
}

// WithMetrics sets the hub metrics. Use NewHubMetrics with a private
// registerer when running more than one hub against the same registry.
func WithMetrics(m *HubMetrics) HubOption {
	return func(h *Hub) {
		h.metrics = (*hubMetrics)(m)
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used for
// broadcast spans.
func WithTracerProvider(tp trace.TracerProvider) HubOption {
	return func(h *Hub) {
		h.tracer = tp.Tracer("sigstream")
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		sources:   make(map[string]*source),
		subs:      make(map[*subscriber]struct{}),
		keepAlive: defaultKeepAlive,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.logger = h.logger.With("component", "hub")
	if h.metrics == nil {
		h.metrics = getDefaultHubMetrics()
	}
	if h.tracer == nil {
		h.tracer = otel.Tracer("sigstream")
	}
	return h
}

// addSource registers a new tracked name. If the initial value differs
// from the type's zero value, the difference is broadcast so attached
// clients converge immediately.
func (h *Hub) addSource(name string, zero, initial any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if _, ok := h.sources[name]; ok {
		return ErrSourceExists
	}
	h.sources[name] = &source{zero: zero, value: initial}
	h.metrics.sources.Set(float64(len(h.sources)))

	if patch := jsonpatch.Diff(zero, initial); len(patch) > 0 {
		h.broadcastLocked(name, patch)
	}
	h.logger.Info("source registered", "name", name)
	return nil
}

// publish records a source's new value and broadcasts the structural
// difference from its previous one. No-op when nothing changed.
func (h *Hub) publish(name string, next any) error {
	_, span := h.tracer.Start(context.Background(), "sigstream.broadcast",
		trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(attribute.String("signal.name", name))

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	src, ok := h.sources[name]
	if !ok {
		return errors.New("server: unknown source " + name)
	}

	patch := jsonpatch.Diff(src.value, next)
	src.value = next
	if len(patch) == 0 {
		return nil
	}
	span.SetAttributes(attribute.Int("patch.ops", len(patch)))
	h.broadcastLocked(name, patch)
	return nil
}

// broadcastLocked encodes one envelope and hands it to every
// subscriber. Callers hold h.mu. Slow subscribers are dropped, never
// waited on.
func (h *Hub) broadcastLocked(name string, patch jsonpatch.Patch) {
	data, err := protocol.EncodeUpdate(&protocol.Update{Name: name, Patch: patch})
	if err != nil {
		h.logger.Error("encode update failed", "name", name, "error", err)
		return
	}
	h.metrics.broadcasts.Inc()

	for sub := range h.subs {
		select {
		case sub.ch <- data:
		default:
			delete(h.subs, sub)
			sub.drop()
			h.metrics.dropped.Inc()
			h.metrics.subscribers.Set(float64(len(h.subs)))
			h.logger.Warn("dropping slow subscriber", "name", name)
		}
	}
}

// attach registers a new subscriber and queues its catch-up envelopes:
// one per source, diffing the zero value against the current value, so
// a late or reconnecting client converges before live updates resume.
func (h *Hub) attach() (*subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	// Room for every catch-up envelope plus the live buffer.
	sub := &subscriber{
		ch:   make(chan []byte, subscriberBuffer+len(h.sources)),
		done: make(chan struct{}),
	}

	names := make([]string, 0, len(h.sources))
	for name := range h.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		src := h.sources[name]
		patch := jsonpatch.Diff(src.zero, src.value)
		if len(patch) == 0 {
			continue
		}
		data, err := protocol.EncodeUpdate(&protocol.Update{Name: name, Patch: patch})
		if err != nil {
			h.logger.Error("encode catch-up failed", "name", name, "error", err)
			continue
		}
		sub.ch <- data
	}

	h.subs[sub] = struct{}{}
	h.metrics.subscribers.Set(float64(len(h.subs)))
	return sub, nil
}

// detach removes a subscriber.
func (h *Hub) detach(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		h.metrics.subscribers.Set(float64(len(h.subs)))
	}
	sub.drop()
}

// Close detaches every subscriber and rejects further publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		sub.drop()
		delete(h.subs, sub)
	}
	h.metrics.subscribers.Set(0)
	h.logger.Info("hub closed")
}

// Subscribers returns the number of attached subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
