// Package signals is the client side of sigstream: read-only reactive
// cells whose authoritative values live on the server.
//
// A Context owns one push-stream connection and the registry of named
// cells it feeds. The server sends one update envelope per state
// change; the dispatcher applies each envelope's JSON Patch to the
// matching cell and notifies subscribers. Envelopes that arrive before
// their signal is registered are buffered per name and replayed, in
// arrival order, the moment the signal registers.
//
// # Usage
//
//	sc := signals.New()
//	if err := sc.Connect(ctx, "http://localhost:8080/sse"); err != nil {
//	    return err
//	}
//	defer sc.Close()
//
//	count, err := signals.Signal[Count](sc, "counter")
//	if err != nil {
//	    return err
//	}
//	count.Subscribe(func(c Count) {
//	    fmt.Println("count is", c.Value)
//	})
//
// Signal registers in the shared scope; SignalLocal in the confined
// scope. A name belongs to exactly one scope: re-registering it with
// the other scope fails with ErrScopeConflict, while re-registering
// with the same scope returns the existing cell unchanged.
//
// # Ordering and failure isolation
//
// All patch application runs on the context's single dispatch
// goroutine. For one name, patches apply strictly in arrival order,
// buffered patches before live ones; across names no ordering is
// guaranteed. Failures are per-message: a malformed envelope is
// dropped, an unapplyable patch leaves its cell at the last
// successfully-applied value, and neither stops the dispatch loop or
// affects other signals.
//
// # Staleness after reconnect
//
// The protocol carries no client-initiated resynchronization. If the
// transport drops and reconnects, cell values may be stale until the
// server emits again; the sigstream hub compensates by sending each
// tracked signal's current value to every newly attached subscriber.
package signals
