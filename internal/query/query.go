package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter keys produced by the transformers.
const (
	KeyLimit  = "limit"
	KeyPage   = "page"
	KeySearch = "search"
	KeySort   = "sort"
)

// FilterKey returns the namespaced query key for a filter field.
func FilterKey(field string) string {
	return "filter[" + field + "]"
}

// Query is an immutable, insertion-ordered set of string parameters.
// The zero value is an empty query.
type Query struct {
	keys   []string
	values map[string]string
}

// New returns an empty query.
func New() Query {
	return Query{}
}

// With returns a copy of q with key set to value. An existing key keeps its position.
func (q Query) With(key, value string) Query {
	out := Query{
		keys:   make([]string, len(q.keys), len(q.keys)+1),
		values: make(map[string]string, len(q.values)+1),
	}
	copy(out.keys, q.keys)
	for k, v := range q.values {
		out.values[k] = v
	}
	if _, exists := out.values[key]; !exists {
		out.keys = append(out.keys, key)
	}
	out.values[key] = value
	return out
}

// WithInt is With for integer values.
func (q Query) WithInt(key string, value int) Query {
	return q.With(key, strconv.Itoa(value))
}

// Get returns the value stored under key.
func (q Query) Get(key string) (string, bool) {
	v, ok := q.values[key]
	return v, ok
}

// Int returns the value under key parsed as an integer.
func (q Query) Int(key string) (int, bool) {
	v, ok := q.values[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Len returns the number of parameters.
func (q Query) Len() int {
	return len(q.keys)
}

// Keys returns the parameter names in insertion order.
func (q Query) Keys() []string {
	keys := make([]string, len(q.keys))
	copy(keys, q.keys)
	return keys
}

// Equal reports whether both queries hold the same parameters in the same order.
func (q Query) Equal(other Query) bool {
	if len(q.keys) != len(other.keys) {
		return false
	}
	for i, k := range q.keys {
		if other.keys[i] != k || other.values[k] != q.values[k] {
			return false
		}
	}
	return true
}

// Encode serialises the query as a URL query string in insertion order.
// Two queries built by the same transformer sequence encode identically,
// which is what the gateway cache keys on.
func (q Query) Encode() string {
	var b strings.Builder
	for i, k := range q.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q.values[k]))
	}
	return b.String()
}

// String implements fmt.Stringer.
func (q Query) String() string {
	return q.Encode()
}

// Map returns the parameters as a plain map, for structured output.
func (q Query) Map() map[string]string {
	m := make(map[string]string, len(q.values))
	for k, v := range q.values {
		m[k] = v
	}
	return m
}
