package signals

import (
	"testing"
	"time"
)

type count struct {
	Value int `json:"value"`
}

func TestDispatchAppliesPatch(t *testing.T) {
	sc, _ := newTestContext(t)

	counter, err := Signal[count](sc, "counter")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":1}]}`))

	if got := counter.Get(); got.Value != 1 {
		t.Errorf("expected value 1, got %d", got.Value)
	}
}

func TestDispatchBuffersUnregistered(t *testing.T) {
	// Two envelopes arrive before the signal exists; registration must
	// replay them in order onto the zero value.
	sc, _ := newTestContext(t)

	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":1}]}`))
	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":2}]}`))

	counter, err := Signal[count](sc, "counter")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if got := counter.Get(); got.Value != 2 {
		t.Errorf("expected value 2 after replay, got %d", got.Value)
	}
}

func TestOrderedBuffering(t *testing.T) {
	// p1, p2, p3 buffered before registration apply in arrival order.
	sc, _ := newTestContext(t)

	sc.dispatch([]byte(`{"name":"x","patch":[{"op":"replace","path":"","value":{"log":["p1"]}}]}`))
	sc.dispatch([]byte(`{"name":"x","patch":[{"op":"add","path":"/log/-","value":"p2"}]}`))
	sc.dispatch([]byte(`{"name":"x","patch":[{"op":"add","path":"/log/-","value":"p3"}]}`))

	sig, err := Signal[map[string]any](sc, "x")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	log, ok := sig.Get()["log"].([]any)
	if !ok || len(log) != 3 {
		t.Fatalf("expected 3 log entries, got %v", sig.Get())
	}
	if log[0] != "p1" || log[1] != "p2" || log[2] != "p3" {
		t.Errorf("buffered patches applied out of order: %v", log)
	}
}

func TestCrossSignalIsolation(t *testing.T) {
	sc, _ := newTestContext(t)

	a, err := Signal[count](sc, "a")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	b, err := Signal[count](sc, "b")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	sc.dispatch([]byte(`{"name":"a","patch":[{"op":"replace","path":"/value","value":7}]}`))

	if got := a.Get(); got.Value != 7 {
		t.Errorf("a: expected 7, got %d", got.Value)
	}
	if got := b.Get(); got.Value != 0 {
		t.Errorf("b: expected 0, got %d", got.Value)
	}
}

func TestPartialFailureIsolation(t *testing.T) {
	// An unapplyable patch for x leaves x untouched and does not stop a
	// later valid message for y.
	sc, _ := newTestContext(t)

	x, err := Signal[count](sc, "x")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	y, err := Signal[count](sc, "y")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	sc.dispatch([]byte(`{"name":"x","patch":[{"op":"remove","path":"/missing"}]}`))
	sc.dispatch([]byte(`{"name":"y","patch":[{"op":"replace","path":"/value","value":5}]}`))

	if got := x.Get(); got.Value != 0 {
		t.Errorf("x should be unchanged, got %d", got.Value)
	}
	if got := y.Get(); got.Value != 5 {
		t.Errorf("y: expected 5, got %d", got.Value)
	}
}

func TestMalformedPayloadDropped(t *testing.T) {
	sc, _ := newTestContext(t)

	counter, err := Signal[count](sc, "counter")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	sc.dispatch([]byte(`{not json`))
	if got := counter.Get(); got.Value != 0 {
		t.Errorf("malformed payload mutated state: %d", got.Value)
	}

	// The next valid envelope processes normally.
	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":3}]}`))
	if got := counter.Get(); got.Value != 3 {
		t.Errorf("expected 3 after recovery, got %d", got.Value)
	}
}

func TestFailedPatchKeepsLastGoodValue(t *testing.T) {
	sc, _ := newTestContext(t)

	counter, err := Signal[count](sc, "counter")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":1}]}`))
	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"test","path":"/value","value":99},{"op":"replace","path":"/value","value":2}]}`))

	if got := counter.Get(); got.Value != 1 {
		t.Errorf("cell should keep last successfully-applied value 1, got %d", got.Value)
	}
}

func TestIdempotentRegistration(t *testing.T) {
	sc, _ := newTestContext(t)

	first, err := Signal[count](sc, "counter")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":4}]}`))

	// Re-registering returns the same cell without resetting its value.
	second, err := Signal[count](sc, "counter")
	if err != nil {
		t.Fatalf("re-register failed: %v", err)
	}
	if second.Get().Value != 4 {
		t.Errorf("re-registration reset the value: %d", second.Get().Value)
	}

	// Both views observe identical subsequent updates.
	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":5}]}`))
	if first.Get().Value != 5 || second.Get().Value != 5 {
		t.Errorf("views diverged: %d vs %d", first.Get().Value, second.Get().Value)
	}
}

func TestSubscribeNotifiesOnChange(t *testing.T) {
	sc, _ := newTestContext(t)

	counter, err := Signal[count](sc, "counter")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	var got []int
	cancel := counter.Subscribe(func(c count) { got = append(got, c.Value) })

	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":1}]}`))
	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":2}]}`))

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("unexpected notifications: %v", got)
	}

	cancel()
	sc.dispatch([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":3}]}`))
	if len(got) != 2 {
		t.Errorf("cancelled subscriber still notified: %v", got)
	}
}

func TestNoChangeNoNotify(t *testing.T) {
	sc, _ := newTestContext(t)

	counter, err := Signal[count](sc, "counter")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	notified := 0
	counter.Subscribe(func(count) { notified++ })

	// An empty patch is a no-op transition.
	sc.dispatch([]byte(`{"name":"counter","patch":[]}`))
	if notified != 0 {
		t.Errorf("no-op envelope notified subscribers %d times", notified)
	}
}

func TestEndToEndThroughStream(t *testing.T) {
	sc, stream := newTestContext(t)

	counter, err := Signal[count](sc, "counter")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	done := make(chan count, 1)
	counter.Subscribe(func(c count) { done <- c })

	stream.push([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":9}]}`))

	select {
	case got := <-done:
		if got.Value != 9 {
			t.Errorf("expected 9, got %d", got.Value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("update never dispatched")
	}
}
