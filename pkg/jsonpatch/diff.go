package jsonpatch

import "sort"

// Diff compares two JSON-shaped values and returns the operation
// sequence that transforms old into new. Applying the result to old
// yields a value structurally equal to new.
//
// Objects diff key by key (remove, add, recurse on change). Arrays diff
// positionally: common indexes recurse, a longer new array appends, a
// longer old array removes from the tail downward. Anything else that
// differs becomes a replace at its path. Diff never emits move or copy.
func Diff(old, new any) Patch {
	var patch Patch
	diff(old, new, "", &patch)
	return patch
}

// diff recursively compares values and appends operations.
func diff(old, new any, path string, patch *Patch) {
	switch ov := old.(type) {
	case map[string]any:
		nv, ok := new.(map[string]any)
		if !ok {
			*patch = append(*patch, Operation{Op: OpReplace, Path: path, Value: new})
			return
		}
		diffObject(ov, nv, path, patch)
	case []any:
		nv, ok := new.([]any)
		if !ok {
			*patch = append(*patch, Operation{Op: OpReplace, Path: path, Value: new})
			return
		}
		diffArray(ov, nv, path, patch)
	default:
		if !Equal(old, new) {
			*patch = append(*patch, Operation{Op: OpReplace, Path: path, Value: new})
		}
	}
}

// diffObject compares two objects key by key. Keys are visited in
// sorted order so the same inputs always produce the same patch.
func diffObject(old, new map[string]any, path string, patch *Patch) {
	for _, key := range sortedKeys(old) {
		nv, ok := new[key]
		if !ok {
			*patch = append(*patch, Operation{Op: OpRemove, Path: appendPointer(path, key)})
			continue
		}
		diff(old[key], nv, appendPointer(path, key), patch)
	}
	for _, key := range sortedKeys(new) {
		if _, ok := old[key]; !ok {
			*patch = append(*patch, Operation{Op: OpAdd, Path: appendPointer(path, key), Value: new[key]})
		}
	}
}

// sortedKeys returns the map's keys in sorted order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// diffArray compares two arrays positionally. Removals run from the
// tail downward so that each operation's index is valid when applied in
// sequence.
func diffArray(old, new []any, path string, patch *Patch) {
	n := len(old)
	if len(new) < n {
		n = len(new)
	}
	for i := 0; i < n; i++ {
		diff(old[i], new[i], appendIndex(path, i), patch)
	}
	for i := len(old); i < len(new); i++ {
		*patch = append(*patch, Operation{Op: OpAdd, Path: appendIndex(path, i), Value: new[i]})
	}
	for i := len(old) - 1; i >= len(new); i-- {
		*patch = append(*patch, Operation{Op: OpRemove, Path: appendIndex(path, i)})
	}
}
