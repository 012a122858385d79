package router

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidPattern is returned when a route pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid route pattern")

// PathMatcher is the interface for path matching. Paths are given without
// a leading slash.
type PathMatcher interface {
	Match(path string) (bool, map[string]string)
	Type() string
	Pattern() string
}

// ExactMatcher matches a literal path.
type ExactMatcher struct {
	path string
}

// NewExactMatcher creates a new exact path matcher.
func NewExactMatcher(path string) *ExactMatcher {
	return &ExactMatcher{path: path}
}

// Match checks if the path matches, ignoring ASCII case.
func (m *ExactMatcher) Match(path string) (matched bool, params map[string]string) {
	return strings.EqualFold(path, m.path), nil
}

// Type returns the matcher type.
func (m *ExactMatcher) Type() string {
	return "exact"
}

// Pattern returns the pattern.
func (m *ExactMatcher) Pattern() string {
	return m.path
}

// CatchAllMatcher matches "<prefix>/{**name}" patterns. The captured value
// is everything after the prefix separator, kept byte for byte.
type CatchAllMatcher struct {
	pattern string
	prefix  string
	param   string
}

// Match checks the prefix at a segment boundary and captures the rest.
// Both "prefix" and "prefix/" match with an empty capture.
func (m *CatchAllMatcher) Match(path string) (matched bool, params map[string]string) {
	rest, ok := cutPrefix(path, m.prefix)
	if !ok {
		return false, nil
	}
	return true, map[string]string{m.param: rest}
}

// Type returns the matcher type.
func (m *CatchAllMatcher) Type() string {
	return "catch-all"
}

// Pattern returns the pattern.
func (m *CatchAllMatcher) Pattern() string {
	return m.pattern
}

// SegmentMatcher matches "<prefix>/{name}" patterns: exactly one non-empty
// segment after the prefix.
type SegmentMatcher struct {
	pattern string
	prefix  string
	param   string
}

// Match checks the prefix and captures a single trailing segment.
func (m *SegmentMatcher) Match(path string) (matched bool, params map[string]string) {
	rest, ok := cutPrefix(path, m.prefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return false, nil
	}
	return true, map[string]string{m.param: rest}
}

// Type returns the matcher type.
func (m *SegmentMatcher) Type() string {
	return "segment"
}

// Pattern returns the pattern.
func (m *SegmentMatcher) Pattern() string {
	return m.pattern
}

// cutPrefix strips prefix, compared case-insensitively, and one separating
// slash. It reports false when the path does not continue at a segment
// boundary. The rest is returned with its original bytes.
func cutPrefix(path, prefix string) (string, bool) {
	if prefix == "" {
		return path, true
	}
	if len(path) < len(prefix) || !strings.EqualFold(path[:len(prefix)], prefix) {
		return "", false
	}
	rest := path[len(prefix):]
	if rest == "" {
		return "", true
	}
	if rest[0] != '/' {
		return "", false
	}
	return rest[1:], true
}

// NewPathMatcher compiles a pattern into the matcher for its shape.
// Leading and trailing slashes are ignored.
func NewPathMatcher(pattern string) (PathMatcher, error) {
	trimmed := strings.Trim(pattern, "/")

	prefix, last := "", trimmed
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		prefix, last = trimmed[:i], trimmed[i+1:]
	}

	if strings.ContainsAny(prefix, "{}") {
		return nil, fmt.Errorf("%w %q: parameters are only allowed in the last segment",
			ErrInvalidPattern, pattern)
	}

	if !strings.HasPrefix(last, "{") {
		if strings.ContainsAny(last, "{}") {
			return nil, fmt.Errorf("%w %q: malformed parameter", ErrInvalidPattern, pattern)
		}
		return NewExactMatcher(trimmed), nil
	}

	if !strings.HasSuffix(last, "}") {
		return nil, fmt.Errorf("%w %q: unterminated parameter", ErrInvalidPattern, pattern)
	}
	name := last[1 : len(last)-1]

	if catchAll, ok := strings.CutPrefix(name, "**"); ok {
		if !validParamName(catchAll) {
			return nil, fmt.Errorf("%w %q: bad parameter name", ErrInvalidPattern, pattern)
		}
		return &CatchAllMatcher{pattern: pattern, prefix: prefix, param: catchAll}, nil
	}

	if !validParamName(name) {
		return nil, fmt.Errorf("%w %q: bad parameter name", ErrInvalidPattern, pattern)
	}
	return &SegmentMatcher{pattern: pattern, prefix: prefix, param: name}, nil
}

func validParamName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "{}*/")
}

// HasDotSegment reports whether the escaped path contains a "." or ".."
// segment, including percent-encoded forms such as "%2e%2E".
func HasDotSegment(escapedPath string) bool {
	for _, seg := range strings.Split(escapedPath, "/") {
		if isDotSegment(seg) {
			return true
		}
		decoded, err := url.PathUnescape(seg)
		if err != nil || decoded == seg {
			continue
		}
		for _, part := range strings.Split(decoded, "/") {
			if isDotSegment(part) {
				return true
			}
		}
	}
	return false
}

func isDotSegment(seg string) bool {
	return seg == "." || seg == ".."
}
