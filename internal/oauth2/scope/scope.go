// Package scope implements parsing and set operations over space-delimited
// OAuth scope strings.
package scope

import (
	"regexp"
	"sort"
	"strings"
)

// Scope name rules:
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9:_.-].
// - Length 1..64.
// - Excludes semicolon and whitespace explicitly.
//
// Examples valid: profile, user:read, email:read:e2e123, a, a_b-c.d:scope2
// Examples invalid: ;hack, BAD, bad space, :leader, trailer:, "", 65+ chars.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidName returns true if the provided scope name matches the allowed pattern.
func ValidName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// Parse splits a space-delimited scope string into a deduplicated token list.
// Parsing never fails: unparseable input yields the empty set.
func Parse(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// IsSubset reports whether every token of requested is present in allowed.
// An empty requested scope is always a subset.
func IsSubset(requested, allowed string) bool {
	req := Parse(requested)
	if len(req) == 0 {
		return true
	}
	have := make(map[string]struct{})
	for _, a := range Parse(allowed) {
		have[a] = struct{}{}
	}
	for _, r := range req {
		if _, ok := have[r]; !ok {
			return false
		}
	}
	return true
}

// Merge returns the union of two scope strings with deterministic
// (lexicographic) ordering, so equal sets always render identically.
func Merge(a, b string) string {
	set := make(map[string]struct{})
	for _, t := range Parse(a) {
		set[t] = struct{}{}
	}
	for _, t := range Parse(b) {
		set[t] = struct{}{}
	}
	if len(set) == 0 {
		return ""
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return strings.Join(out, " ")
}
