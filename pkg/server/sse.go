package server

import (
	"fmt"
	"net/http"
	"time"
)

// SSEHandler returns the hub's Server-Sent Events endpoint. Each
// attached request receives catch-up envelopes, then one data event per
// broadcast, with keep-alive comments in between. The handler blocks
// until the client disconnects, the subscriber falls behind, or the hub
// closes.
func (h *Hub) SSEHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		sub, err := h.attach()
		if err != nil {
			http.Error(w, "hub closed", http.StatusServiceUnavailable)
			return
		}
		defer h.detach(sub)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		h.logger.Debug("sse subscriber attached", "remote", r.RemoteAddr)

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		for {
			select {
			case data := <-sub.ch:
				if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case <-sub.done:
				return
			case <-r.Context().Done():
				return
			}
		}
	})
}
