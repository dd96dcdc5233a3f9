package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// wsWriteTimeout bounds each outbound write.
const wsWriteTimeout = 10 * time.Second

// WSHandler returns the hub's WebSocket endpoint: the same envelope
// stream as SSEHandler, one text message per envelope. Inbound messages
// are read only to detect the close handshake; the protocol is
// push-only.
func (h *Hub) WSHandler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Error("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		sub, err := h.attach()
		if err != nil {
			return
		}
		defer h.detach(sub)

		h.logger.Debug("ws subscriber attached", "remote", r.RemoteAddr)

		// Reader goroutine: drain until the peer closes.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		for {
			select {
			case data := <-sub.ch:
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-sub.done:
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			case <-closed:
				return
			case <-r.Context().Done():
				return
			}
		}
	})
}
