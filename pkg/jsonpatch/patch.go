package jsonpatch

import "encoding/json"

// Op identifies a patch operation type.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	OpMove    Op = "move"
	OpCopy    Op = "copy"
	OpTest    Op = "test"
)

// valid reports whether the op is one of the six RFC 6902 operations.
func (op Op) valid() bool {
	switch op {
	case OpAdd, OpRemove, OpReplace, OpMove, OpCopy, OpTest:
		return true
	}
	return false
}

// Operation is a single structural edit addressed by a JSON Pointer path.
// Value is meaningful for add, replace, and test; From for move and copy.
type Operation struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	From  string `json:"from,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Patch is an ordered sequence of operations. Order is significant and
// must be preserved end-to-end.
type Patch []Operation

// MarshalJSON emits only the fields meaningful for the operation, so
// that an explicit null value survives the round trip for add, replace,
// and test.
func (o Operation) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"op":   o.Op,
		"path": o.Path,
	}
	switch o.Op {
	case OpAdd, OpReplace, OpTest:
		m["value"] = o.Value
	case OpMove, OpCopy:
		m["from"] = o.From
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an operation, tolerating unknown fields.
func (o *Operation) UnmarshalJSON(data []byte) error {
	type plain Operation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Operation(p)
	return nil
}
