package signals

import "errors"

// ErrNotInitialized is returned when a signal is registered before the
// context has a connection. Call Connect first.
var ErrNotInitialized = errors.New("signals: context not connected; call Connect before registering signals")

// ErrClosed is returned when registering a signal on a closed context.
var ErrClosed = errors.New("signals: context closed")

// ErrScopeConflict is returned when a name already registered in one
// scope is registered again in the other. A name belongs to exactly one
// scope for the lifetime of the context.
var ErrScopeConflict = errors.New("signals: name already registered in a different scope")
