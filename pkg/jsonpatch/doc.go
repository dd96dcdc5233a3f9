// Package jsonpatch implements structural diffing and patching of
// JSON-shaped values per RFC 6902 (JSON Patch) and RFC 6901 (JSON
// Pointer).
//
// A JSON-shaped value is the result of decoding JSON with encoding/json
// into `any`: map[string]any, []any, string, float64, bool, or nil.
// Arbitrary Go values can be converted with Normalize.
//
// # Diffing
//
// Diff compares two values and returns the ordered operation sequence
// that transforms the first into the second:
//
//	patch := jsonpatch.Diff(old, new)
//	result, err := jsonpatch.Apply(old, patch)
//	// result is structurally equal to new
//
// Diff is a pure function and safe for concurrent use. It emits
// add/remove/replace operations only; move detection is not attempted.
//
// # Applying
//
// Apply executes a patch strictly in order. Each operation's path
// resolves against the intermediate value produced by the operations
// before it. Application is all-or-nothing: the input value is never
// mutated, and on error the returned value is nil and the caller's
// document is unchanged. Failures carry a Kind (PathNotFound,
// TypeMismatch, TestFailed, ...) recoverable with KindOf or errors.As.
package jsonpatch
