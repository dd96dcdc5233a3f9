package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sigstream/sigstream/pkg/server"
)

// Count is the demo signal: a counter incremented on a fixed interval.
type Count struct {
	Value int `json:"value"`
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>sigstream demo</title></head>
<body>
<h1>Count: <span id="count">0</span></h1>
<p>The count updates as the server pushes patches to /sse.</p>
<script>
const es = new EventSource("/sse");
es.onmessage = (e) => {
  const update = JSON.parse(e.data);
  if (update.name !== "counter") return;
  for (const op of update.patch) {
    if (op.path === "/value") {
      document.getElementById("count").textContent = op.value;
    }
  }
};
</script>
</body>
</html>`

func serveCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo counter server",
		Long: `Runs an HTTP server with a "counter" signal incremented every
interval, streamed to clients at /sse (SSE) and /ws (WebSocket).
Prometheus metrics are exposed at /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, interval)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "counter increment interval")
	return cmd
}

func runServe(addr string, interval time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	hub := server.NewHub(server.WithLogger(logger))
	defer hub.Close()

	counter, err := server.NewSource(hub, "counter", Count{})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := counter.Update(func(c Count) Count {
					c.Value++
					return c
				}); err != nil {
					logger.Error("counter update failed", "error", err)
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/sse", hub.SSEHandler())
	r.Handle("/ws", hub.WSHandler())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexPage)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
