package jsonpatch

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOperationMarshalShape(t *testing.T) {
	data, err := json.Marshal(Operation{Op: OpRemove, Path: "/a", Value: float64(1)})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "value") {
		t.Errorf("remove must not carry a value field: %s", data)
	}

	// An explicit null value must survive for replace.
	data, err = json.Marshal(Operation{Op: OpReplace, Path: "/a", Value: nil})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"value":null`) {
		t.Errorf("replace must carry its null value: %s", data)
	}
}

func TestPatchJSONRoundTrip(t *testing.T) {
	in := Patch{
		{Op: OpReplace, Path: "/value", Value: float64(1)},
		{Op: OpMove, From: "/a", Path: "/b"},
		{Op: OpTest, Path: "/b", Value: map[string]any{"k": "v"}},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out Patch
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d ops, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].Op != in[i].Op || out[i].Path != in[i].Path || out[i].From != in[i].From {
			t.Errorf("op %d mismatch: %+v vs %+v", i, out[i], in[i])
		}
		if !Equal(out[i].Value, in[i].Value) {
			t.Errorf("op %d value mismatch: %v vs %v", i, out[i].Value, in[i].Value)
		}
	}
}

func TestPointerEscaping(t *testing.T) {
	tokens, err := parsePointer("/a~1b/c~0d/~01")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []string{"a/b", "c~d", "~1"}
	for i, w := range want {
		if tokens[i] != w {
			t.Errorf("token %d: expected %q, got %q", i, w, tokens[i])
		}
	}

	if got := escapeToken("a/b~c"); got != "a~1b~0c" {
		t.Errorf("escape: expected a~1b~0c, got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	type count struct {
		Value int `json:"value"`
	}
	v, err := Normalize(count{Value: 3})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if !Equal(v, map[string]any{"value": float64(3)}) {
		t.Errorf("unexpected shape: %v", v)
	}
}
