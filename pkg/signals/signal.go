package signals

import (
	"encoding/json"
	"fmt"

	"github.com/sigstream/sigstream/pkg/jsonpatch"
)

// ReadSignal is a typed, read-only view of a server-controlled cell.
// It starts at T's zero value and changes only when the server pushes
// patches. Values are decoded from the cell's JSON-shaped state on
// each read.
type ReadSignal[T any] struct {
	name string
	cell *cell
}

// Signal registers name in the shared scope and returns its typed view.
// Registering an already-registered name returns a view of the same
// cell without resetting its value; patches buffered before this call
// are applied, in arrival order, before the view is returned.
func Signal[T any](sc *Context, name string) (*ReadSignal[T], error) {
	return newSignal[T](sc, name, ScopeShared)
}

// SignalLocal is Signal for values confined to a single concurrency
// domain. Same name semantics; different scope tag.
func SignalLocal[T any](sc *Context, name string) (*ReadSignal[T], error) {
	return newSignal[T](sc, name, ScopeConfined)
}

func newSignal[T any](sc *Context, name string, scope Scope) (*ReadSignal[T], error) {
	var zero T
	initial, err := jsonpatch.Normalize(zero)
	if err != nil {
		return nil, fmt.Errorf("signals: type %T is not JSON-serializable: %w", zero, err)
	}
	cl, err := sc.register(name, scope, initial)
	if err != nil {
		return nil, err
	}
	return &ReadSignal[T]{name: name, cell: cl}, nil
}

// Name returns the signal name.
func (s *ReadSignal[T]) Name() string {
	return s.name
}

// Get returns the current value. If the server's value no longer
// decodes into T, the zero value is returned; use Value to observe the
// decode error.
func (s *ReadSignal[T]) Get() T {
	v, _ := s.Value()
	return v
}

// Value returns the current value and any decode error.
func (s *ReadSignal[T]) Value() (T, error) {
	return decodeAs[T](s.cell.get())
}

// Raw returns the cell's current JSON-shaped value.
func (s *ReadSignal[T]) Raw() any {
	return s.cell.get()
}

// Subscribe registers fn to run after each server-applied change, with
// the decoded new value. Values that fail to decode are skipped. The
// returned func cancels the subscription.
func (s *ReadSignal[T]) Subscribe(fn func(T)) func() {
	return s.cell.subscribe(func(raw any) {
		v, err := decodeAs[T](raw)
		if err != nil {
			return
		}
		fn(v)
	})
}

// decodeAs converts a JSON-shaped value into T through encoding/json.
func decodeAs[T any](raw any) (T, error) {
	var out T
	data, err := json.Marshal(raw)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
