package signals

// Scope tags how a signal's values are used by the host application.
// The distinction matters to reactive hosts that confine some values to
// a single concurrency domain; the dispatcher itself looks up names
// across both scopes.
type Scope uint8

const (
	// ScopeShared marks values safe to hand across concurrency domains.
	ScopeShared Scope = iota

	// ScopeConfined marks values owned by a single domain.
	ScopeConfined
)

// String returns the string representation of the scope.
func (s Scope) String() string {
	if s == ScopeConfined {
		return "confined"
	}
	return "shared"
}

// entry is one registered signal: its cell plus the scope the name was
// first registered in.
type entry struct {
	scope Scope
	cell  *cell
}
