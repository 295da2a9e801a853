package patch

import (
	"fmt"
	"strconv"
	"strings"
)

// EscapeToken applies RFC 6901 escaping: "~" -> "~0", "/" -> "~1".
// Exported so diagnostics elsewhere can build unambiguous pointers.
func EscapeToken(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// unescapeToken reverses EscapeToken. Order matters: "~1" before "~0".
func unescapeToken(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// joinPointer appends a token to a JSON pointer prefix.
func joinPointer(prefix, token string) string {
	return prefix + "/" + EscapeToken(token)
}

// joinIndex appends an array index to a JSON pointer prefix.
func joinIndex(prefix string, i int) string {
	return prefix + "/" + strconv.Itoa(i)
}

// splitPointer breaks a JSON pointer into unescaped reference tokens.
// The empty pointer refers to the whole document and yields no tokens.
func splitPointer(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if ptr[0] != '/' {
		return nil, fmt.Errorf("invalid JSON pointer %q", ptr)
	}
	raw := strings.Split(ptr[1:], "/")
	tokens := make([]string, len(raw))
	for i, t := range raw {
		tokens[i] = unescapeToken(t)
	}
	return tokens, nil
}

// arrayIndex parses a reference token as an array index. "-" means one past
// the end (append position). length bounds the accepted range; allowEnd
// permits index == length (valid for add, invalid for remove/read).
func arrayIndex(token string, length int, allowEnd bool) (int, error) {
	if token == "-" {
		if !allowEnd {
			return 0, fmt.Errorf("pointer token %q only valid when appending", token)
		}
		return length, nil
	}
	if len(token) > 1 && token[0] == '0' {
		return 0, fmt.Errorf("invalid array index %q: leading zeros", token)
	}
	i, err := strconv.Atoi(token)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid array index %q", token)
	}
	max := length
	if !allowEnd {
		max = length - 1
	}
	if i > max {
		return 0, fmt.Errorf("array index %d out of bounds (len %d)", i, length)
	}
	return i, nil
}
