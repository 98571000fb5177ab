// Package treepath implements the path codec for tree store paths.
//
// A path is a sequence of segments joined by '/'. Segment characters
// '~' and '/' are escaped as "~0" and "~1", consistent with JSON
// Pointer (RFC 6901), so that patch paths survive round trips across
// process boundaries. The root path is the empty string.
package treepath

import "strings"

// EscapeSegment escapes a single path segment for inclusion in a
// joined path string.
func EscapeSegment(seg string) string {
	if !strings.ContainsAny(seg, "~/") {
		return seg
	}
	seg = strings.ReplaceAll(seg, "~", "~0")
	seg = strings.ReplaceAll(seg, "/", "~1")
	return seg
}

// UnescapeSegment reverses EscapeSegment. Order matters: "~1" must be
// rewritten before "~0" so that "~01" decodes to "~1" the character
// sequence, not to an escaped slash.
func UnescapeSegment(seg string) string {
	if !strings.Contains(seg, "~") {
		return seg
	}
	seg = strings.ReplaceAll(seg, "~1", "/")
	seg = strings.ReplaceAll(seg, "~0", "~")
	return seg
}

// Join escapes each segment and joins them with '/'. Join(nil) is the
// root path "".
func Join(segs []string) string {
	if len(segs) == 0 {
		return ""
	}
	escaped := make([]string, len(segs))
	for i, seg := range segs {
		escaped[i] = EscapeSegment(seg)
	}
	return "/" + strings.Join(escaped, "/")
}

// Split splits a path into unescaped segments. A leading '/' carries
// no segment of its own; "" and "/" both split to no segments.
// Relative navigation segments "." and ".." are returned verbatim.
func Split(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		parts[i] = UnescapeSegment(part)
	}
	return parts
}

// JoinRelative escapes and joins segments without the leading '/',
// producing a path relative to some base node. JoinRelative(nil) is
// the self path "".
func JoinRelative(segs []string) string {
	escaped := make([]string, len(segs))
	for i, seg := range segs {
		escaped[i] = EscapeSegment(seg)
	}
	return strings.Join(escaped, "/")
}

// IsAbsolute reports whether path is root-relative.
func IsAbsolute(path string) bool {
	return strings.HasPrefix(path, "/")
}
