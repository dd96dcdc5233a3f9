package server

import (
	"bufio"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// waitForSubscribers polls until n subscribers are attached.
func waitForSubscribers(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers() < n {
		if time.Now().After(deadline) {
			t.Fatalf("never reached %d subscribers", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSSEHandlerStreamsEnvelopes(t *testing.T) {
	h := newTestHub(t)
	counter, err := NewSource(h, "counter", count{})
	if err != nil {
		t.Fatalf("source failed: %v", err)
	}

	srv := httptest.NewServer(h.SSEHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}

	waitForSubscribers(t, h, 1)
	if err := counter.Set(count{Value: 1}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	reader := bufio.NewReader(resp.Body)
	deadline := time.Now().Add(2 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("data event never arrived")
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			if payload != `{"name":"counter","patch":[{"op":"replace","path":"/value","value":1}]}` {
				t.Errorf("unexpected payload: %s", payload)
			}
			return
		}
	}
}

func TestSSEHandlerSendsCatchUpFirst(t *testing.T) {
	h := newTestHub(t)
	counter, err := NewSource(h, "counter", count{})
	if err != nil {
		t.Fatalf("source failed: %v", err)
	}
	if err := counter.Set(count{Value: 5}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	srv := httptest.NewServer(h.SSEHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") || !strings.Contains(line, `"name":"counter"`) {
		t.Errorf("expected catch-up envelope first, got %q", line)
	}
}

func TestSSEHandlerRejectsAfterClose(t *testing.T) {
	h := NewHub(
		WithMetrics(NewHubMetrics(prometheus.NewRegistry())),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	h.Close()

	srv := httptest.NewServer(h.SSEHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}
