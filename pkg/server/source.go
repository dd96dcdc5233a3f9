package server

import (
	"fmt"
	"sync"

	"github.com/sigstream/sigstream/pkg/jsonpatch"
)

// Source is the writable handle for one server-authoritative signal.
// Every accepted write diffs against the previous value and broadcasts
// the difference to all attached clients.
type Source[T any] struct {
	hub  *Hub
	name string

	mu  sync.Mutex
	cur T
}

// NewSource registers a named signal on the hub with its initial value.
// When initial differs from T's zero value, the difference is broadcast
// immediately so already-attached clients converge.
func NewSource[T any](h *Hub, name string, initial T) (*Source[T], error) {
	var zeroT T
	zero, err := jsonpatch.Normalize(zeroT)
	if err != nil {
		return nil, fmt.Errorf("server: type %T is not JSON-serializable: %w", zeroT, err)
	}
	init, err := jsonpatch.Normalize(initial)
	if err != nil {
		return nil, fmt.Errorf("server: initial value for %q: %w", name, err)
	}
	if err := h.addSource(name, zero, init); err != nil {
		return nil, err
	}
	return &Source[T]{hub: h, name: name, cur: initial}, nil
}

// Name returns the signal name.
func (s *Source[T]) Name() string {
	return s.name
}

// Get returns the current value.
func (s *Source[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Set replaces the value and broadcasts the change.
func (s *Source[T]) Set(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(v)
}

// Update applies a read-modify-write atomically with respect to other
// writers of this source.
func (s *Source[T]) Update(fn func(T) T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(fn(s.cur))
}

// write normalizes and publishes while holding s.mu.
func (s *Source[T]) write(v T) error {
	next, err := jsonpatch.Normalize(v)
	if err != nil {
		return fmt.Errorf("server: value for %q: %w", s.name, err)
	}
	if err := s.hub.publish(s.name, next); err != nil {
		return err
	}
	s.cur = v
	return nil
}
