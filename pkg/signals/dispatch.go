package signals

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sigstream/sigstream/pkg/jsonpatch"
	"github.com/sigstream/sigstream/pkg/protocol"
)

// dispatch handles one raw message. Runs only on the dispatch
// goroutine. Nothing here is fatal: malformed envelopes are dropped,
// failed patches leave their cell at the last good value, and other
// signals are unaffected.
func (c *Context) dispatch(data []byte) {
	c.metrics.Updates.Inc()
	_, span := c.tracer.Start(context.Background(), "sigstream.dispatch",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	upd, err := protocol.DecodeUpdate(data)
	if err != nil {
		c.metrics.DecodeErrors.Inc()
		c.logger.Error("dropping malformed update", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return
	}
	span.SetAttributes(
		attribute.String("signal.name", upd.Name),
		attribute.Int("patch.ops", len(upd.Patch)),
	)

	c.mu.Lock()
	e, ok := c.registry[upd.Name]
	if !ok {
		// Signal not registered yet: buffer in arrival order.
		c.pending[upd.Name] = append(c.pending[upd.Name], upd.Patch)
		c.metrics.PatchesBuffered.Inc()
		c.metrics.PendingSignals.Set(float64(len(c.pending)))
		c.mu.Unlock()
		c.logger.Debug("buffered patch for unregistered signal", "name", upd.Name)
		span.SetAttributes(attribute.String("outcome", "buffered"))
		return
	}

	// Buffered patches apply before the live one. Registration drains
	// the buffer under the same lock, so this is normally empty; the
	// drain here keeps the ordering invariant self-contained.
	patches := append(c.pending[upd.Name], upd.Patch)
	if _, had := c.pending[upd.Name]; had {
		delete(c.pending, upd.Name)
		c.metrics.PendingSignals.Set(float64(len(c.pending)))
	}
	c.mu.Unlock()

	value := e.cell.get()
	applied := c.applyAll(upd.Name, value, patches)
	if !jsonpatch.Equal(value, applied) {
		e.cell.set(applied)
	}
	span.SetAttributes(attribute.String("outcome", "applied"))
}
