// Package server holds the authoritative side of sigstream: named
// sources whose every change is diffed and pushed to all attached
// clients as one update envelope.
//
// A Hub owns the sources and the subscriber set. Create typed sources
// with NewSource; each Set or Update computes a JSON Patch against the
// previous value and broadcasts it when non-empty. Mount the hub's
// SSEHandler (or WSHandler) on any router:
//
//	hub := server.NewHub()
//	counter, _ := server.NewSource(hub, "counter", Count{})
//
//	r := chi.NewRouter()
//	r.Handle("/sse", hub.SSEHandler())
//
//	counter.Update(func(c Count) Count {
//	    c.Value++
//	    return c
//	})
//
// # Catch-up
//
// The protocol has no client-initiated resynchronization, so the hub
// closes the gap at attach time: every new subscriber immediately
// receives one envelope per source diffing the source type's zero
// value against its current value. Clients seed cells with the zero
// value, so late joiners and reconnecting clients converge on their
// first message batch.
//
// # Slow subscribers
//
// Broadcasts never block the hub. A subscriber whose buffer is full is
// disconnected rather than throttling every other client; the
// underlying transport's reconnect brings it back with fresh catch-up
// state.
package server
