package jsonpatch

import (
	"strconv"
	"strings"
)

// parsePointer splits an RFC 6901 pointer into unescaped reference
// tokens. The empty pointer refers to the whole document and yields no
// tokens.
func parsePointer(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	if path[0] != '/' {
		return nil, &Error{Kind: KindInvalidPointer, Path: path, Msg: "must be empty or start with /"}
	}
	parts := strings.Split(path[1:], "/")
	tokens := make([]string, len(parts))
	for i, p := range parts {
		tokens[i] = unescapeToken(p)
	}
	return tokens, nil
}

// unescapeToken reverses the ~1 and ~0 escapes. Order matters: ~1 first,
// then ~0, so that "~01" decodes to "~1" and not "/".
func unescapeToken(s string) string {
	if !strings.Contains(s, "~") {
		return s
	}
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// escapeToken applies the ~0 and ~1 escapes for building pointer paths.
func escapeToken(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// appendPointer extends a pointer path with one object key token.
func appendPointer(base, key string) string {
	return base + "/" + escapeToken(key)
}

// appendIndex extends a pointer path with one array index token.
func appendIndex(base string, i int) string {
	return base + "/" + strconv.Itoa(i)
}

// arrayIndex parses a reference token as an array index. The append
// token "-" maps to the array length. Leading zeros are rejected per
// RFC 6901.
func arrayIndex(token string, length int) (int, bool) {
	if token == "-" {
		return length, true
	}
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, false
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
