package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/sigstream/sigstream/pkg/jsonpatch"
)

// Update is the unit transmitted per state change: the signal it
// belongs to and the patch transforming its previous value into the
// current one.
type Update struct {
	Name  string          `json:"name"`
	Patch jsonpatch.Patch `json:"patch"`
}

// NewUpdate builds an update by normalizing two arbitrary Go values and
// diffing them. old and new are typically successive snapshots of the
// same application type.
func NewUpdate(name string, old, new any) (*Update, error) {
	left, err := jsonpatch.Normalize(old)
	if err != nil {
		return nil, fmt.Errorf("protocol: normalize old value for %q: %w", name, err)
	}
	right, err := jsonpatch.Normalize(new)
	if err != nil {
		return nil, fmt.Errorf("protocol: normalize new value for %q: %w", name, err)
	}
	return &Update{Name: name, Patch: jsonpatch.Diff(left, right)}, nil
}

// NewUpdateFromValues builds an update from two values that are already
// JSON-shaped.
func NewUpdateFromValues(name string, old, new any) *Update {
	return &Update{Name: name, Patch: jsonpatch.Diff(old, new)}
}

// Empty reports whether the update carries no operations. Empty updates
// represent no state change and need not be transmitted.
func (u *Update) Empty() bool {
	return len(u.Patch) == 0
}

// EncodeUpdate serializes an update to its wire form.
func EncodeUpdate(u *Update) ([]byte, error) {
	return json.Marshal(u)
}

// DecodeError reports a payload that could not be decoded into an
// Update. It is non-fatal: the message is dropped and processing
// continues.
type DecodeError struct {
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return "protocol: malformed update: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeUpdate parses a wire payload. The payload must be a JSON object
// with a non-empty name; unknown fields are ignored.
func DecodeUpdate(data []byte) (*Update, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if u.Name == "" {
		return nil, &DecodeError{Err: fmt.Errorf("missing signal name")}
	}
	return &u, nil
}
