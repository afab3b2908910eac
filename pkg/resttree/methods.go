package resttree

import (
	"fmt"
	"sort"
	"strings"
)

// Method is an HTTP request verb supported by the toolkit.
type Method string

// The fixed registry of supported verbs.
const (
	MethodHead    Method = "HEAD"
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

// methodRegistry preserves declaration order for Methods().
var methodRegistry = []Method{
	MethodHead,
	MethodGet,
	MethodPost,
	MethodPut,
	MethodPatch,
	MethodDelete,
	MethodOptions,
	MethodTrace,
}

// Methods returns every supported verb.
func Methods() []Method {
	out := make([]Method, len(methodRegistry))
	copy(out, methodRegistry)

	return out
}

// ParseMethod converts a verb name to a Method, case-insensitively.
func ParseMethod(name string) (Method, error) {
	candidate := Method(strings.ToUpper(strings.TrimSpace(name)))
	for _, method := range methodRegistry {
		if method == candidate {
			return method, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// String implements fmt.Stringer.
func (m Method) String() string {
	return string(m)
}

// MethodSet is an immutable allow-list of verbs. The zero value is
// empty; endpoints constructed without an explicit set default to
// AllMethods.
type MethodSet struct {
	members map[Method]struct{}
}

// NewMethodSet builds a set from the given verbs.
func NewMethodSet(methods ...Method) MethodSet {
	members := make(map[Method]struct{}, len(methods))
	for _, method := range methods {
		members[method] = struct{}{}
	}

	return MethodSet{members: members}
}

// AllMethods returns a set containing the whole registry.
func AllMethods() MethodSet {
	return NewMethodSet(methodRegistry...)
}

// Contains reports whether the verb is in the set.
func (s MethodSet) Contains(method Method) bool {
	_, ok := s.members[method]

	return ok
}

// Len returns the number of verbs in the set.
func (s MethodSet) Len() int {
	return len(s.members)
}

// All returns the verbs in the set, sorted by name.
func (s MethodSet) All() []Method {
	out := make([]Method, 0, len(s.members))
	for method := range s.members {
		out = append(out, method)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
