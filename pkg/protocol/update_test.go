package protocol

import (
	"errors"
	"testing"

	"github.com/sigstream/sigstream/pkg/jsonpatch"
)

type count struct {
	Value int `json:"value"`
}

func TestNewUpdateDiffsValues(t *testing.T) {
	u, err := NewUpdate("counter", count{Value: 0}, count{Value: 1})
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}
	if u.Name != "counter" {
		t.Errorf("expected name counter, got %q", u.Name)
	}
	if len(u.Patch) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(u.Patch))
	}
	op := u.Patch[0]
	if op.Op != jsonpatch.OpReplace || op.Path != "/value" {
		t.Errorf("expected replace at /value, got %s %s", op.Op, op.Path)
	}
}

func TestNewUpdateNoChange(t *testing.T) {
	u, err := NewUpdate("counter", count{Value: 2}, count{Value: 2})
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}
	if !u.Empty() {
		t.Errorf("expected empty update, got %v", u.Patch)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	u, err := NewUpdate("counter", count{Value: 0}, count{Value: 1})
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}

	data, err := EncodeUpdate(u)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := DecodeUpdate(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Name != u.Name || len(got.Patch) != len(u.Patch) {
		t.Errorf("round trip mismatch: %+v vs %+v", got, u)
	}
}

func TestDecodeWireShape(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"name":"counter","patch":[{"op":"replace","path":"/value","value":1}],"extra":true}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if u.Name != "counter" || len(u.Patch) != 1 {
		t.Fatalf("unexpected update: %+v", u)
	}
	if u.Patch[0].Op != jsonpatch.OpReplace || u.Patch[0].Path != "/value" {
		t.Errorf("unexpected operation: %+v", u.Patch[0])
	}
	if !jsonpatch.Equal(u.Patch[0].Value, float64(1)) {
		t.Errorf("unexpected value: %v", u.Patch[0].Value)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, payload := range []string{
		`{not json`,
		`[]`,
		`{"patch":[]}`,
		`{"name":"","patch":[]}`,
	} {
		_, err := DecodeUpdate([]byte(payload))
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("payload %q: expected DecodeError, got %v", payload, err)
		}
	}
}
