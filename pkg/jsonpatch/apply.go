package jsonpatch

// Apply executes a patch against a JSON-shaped document and returns the
// resulting value. Operations run strictly in order; each path resolves
// against the intermediate value produced by the operations before it.
//
// Apply is all-or-nothing: it works on a deep copy, never mutates doc,
// and on error returns (nil, err) leaving the caller's value untouched.
func Apply(doc any, patch Patch) (any, error) {
	out := deepCopy(doc)
	for _, op := range patch {
		var err error
		out, err = applyOp(out, op)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// applyOp executes a single operation and returns the new document root.
func applyOp(doc any, op Operation) (any, error) {
	if !op.Op.valid() {
		return nil, &Error{Kind: KindInvalidOp, Op: op.Op, Path: op.Path, Msg: "unknown op"}
	}

	tokens, err := parsePointer(op.Path)
	if err != nil {
		return nil, err
	}

	switch op.Op {
	case OpAdd:
		return setValue(doc, op.Op, op.Path, tokens, deepCopy(op.Value), true)
	case OpReplace:
		if _, err := getValue(doc, op.Op, op.Path, tokens); err != nil {
			return nil, err
		}
		return setValue(doc, op.Op, op.Path, tokens, deepCopy(op.Value), false)
	case OpRemove:
		return removeValue(doc, op.Op, op.Path, tokens)
	case OpMove:
		return moveValue(doc, op, true)
	case OpCopy:
		return moveValue(doc, op, false)
	case OpTest:
		got, err := getValue(doc, op.Op, op.Path, tokens)
		if err != nil {
			return nil, err
		}
		if !Equal(got, op.Value) {
			return nil, errTestFailed(op.Path)
		}
		return doc, nil
	}
	return doc, nil
}

// moveValue implements move (remove=true) and copy (remove=false).
func moveValue(doc any, op Operation, remove bool) (any, error) {
	fromTokens, err := parsePointer(op.From)
	if err != nil {
		return nil, err
	}
	val, err := getValue(doc, op.Op, op.From, fromTokens)
	if err != nil {
		return nil, err
	}
	val = deepCopy(val)
	if remove {
		doc, err = removeValue(doc, op.Op, op.From, fromTokens)
		if err != nil {
			return nil, err
		}
	}
	tokens, err := parsePointer(op.Path)
	if err != nil {
		return nil, err
	}
	return setValue(doc, op.Op, op.Path, tokens, val, true)
}

// getValue resolves a pointer and returns the value it addresses.
func getValue(doc any, op Op, path string, tokens []string) (any, error) {
	cur := doc
	for _, tok := range tokens {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[tok]
			if !ok {
				return nil, errPathNotFound(op, path)
			}
			cur = v
		case []any:
			i, ok := arrayIndex(tok, len(c))
			if !ok || i >= len(c) {
				return nil, errPathNotFound(op, path)
			}
			cur = c[i]
		default:
			return nil, errPathNotFound(op, path)
		}
	}
	return cur, nil
}

// setValue writes val at the pointer and returns the new document root.
// With insert set, array writes splice the value in (add semantics and
// the "-" append token); otherwise they overwrite in place (replace
// semantics).
func setValue(doc any, op Op, path string, tokens []string, val any, insert bool) (any, error) {
	if len(tokens) == 0 {
		// Whole-document write.
		return val, nil
	}

	parent, err := getValue(doc, op, path, tokens[:len(tokens)-1])
	if err != nil {
		return nil, err
	}
	last := tokens[len(tokens)-1]

	switch p := parent.(type) {
	case map[string]any:
		p[last] = val
		return doc, nil
	case []any:
		i, ok := arrayIndex(last, len(p))
		if !ok {
			return nil, errTypeMismatch(op, path, "invalid array index %q", last)
		}
		if insert {
			if i > len(p) {
				return nil, errTypeMismatch(op, path, "index %d out of bounds for length %d", i, len(p))
			}
			p = append(p, nil)
			copy(p[i+1:], p[i:])
			p[i] = val
		} else {
			if i >= len(p) {
				return nil, errPathNotFound(op, path)
			}
			p[i] = val
		}
		return replaceParent(doc, op, path, tokens[:len(tokens)-1], p)
	default:
		return nil, errTypeMismatch(op, path, "cannot descend into %T", parent)
	}
}

// removeValue deletes the value at the pointer and returns the new
// document root.
func removeValue(doc any, op Op, path string, tokens []string) (any, error) {
	if len(tokens) == 0 {
		return nil, errTypeMismatch(op, path, "cannot remove document root")
	}

	parent, err := getValue(doc, op, path, tokens[:len(tokens)-1])
	if err != nil {
		return nil, err
	}
	last := tokens[len(tokens)-1]

	switch p := parent.(type) {
	case map[string]any:
		if _, ok := p[last]; !ok {
			return nil, errPathNotFound(op, path)
		}
		delete(p, last)
		return doc, nil
	case []any:
		i, ok := arrayIndex(last, len(p))
		if !ok || i >= len(p) {
			return nil, errPathNotFound(op, path)
		}
		p = append(p[:i], p[i+1:]...)
		return replaceParent(doc, op, path, tokens[:len(tokens)-1], p)
	default:
		return nil, errTypeMismatch(op, path, "cannot descend into %T", parent)
	}
}

// replaceParent writes a re-sliced array back into its own parent.
// Maps mutate in place so only array parents need this.
func replaceParent(doc any, op Op, path string, tokens []string, arr []any) (any, error) {
	if len(tokens) == 0 {
		return any(arr), nil
	}

	grand, err := getValue(doc, op, path, tokens[:len(tokens)-1])
	if err != nil {
		return nil, err
	}
	last := tokens[len(tokens)-1]

	switch g := grand.(type) {
	case map[string]any:
		g[last] = arr
		return doc, nil
	case []any:
		i, ok := arrayIndex(last, len(g))
		if !ok || i >= len(g) {
			return nil, errPathNotFound(op, path)
		}
		g[i] = arr
		return doc, nil
	default:
		return nil, errTypeMismatch(op, path, "cannot descend into %T", grand)
	}
}
