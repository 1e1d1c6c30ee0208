package uri

import (
	"strings"
)

// QueryParameters is a multi-valued map that preserves the insertion order of
// distinct keys and the insertion order of values within a key.
type QueryParameters struct {
	keys   []string
	values map[string][]string
}

func NewQueryParameters() *QueryParameters {
	return &QueryParameters{values: make(map[string][]string)}
}

// ParseQuery parses a raw (encoded) query string. A missing '=' yields an
// empty value, matching how AWS canonicalization treats bare keys.
func ParseQuery(raw string) (*QueryParameters, error) {
	q := NewQueryParameters()
	if raw == "" {
		return q, nil
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		dk, err := Query.Decode(key)
		if err != nil {
			return nil, err
		}
		dv, err := Query.Decode(value)
		if err != nil {
			return nil, err
		}
		q.Add(dk, dv)
	}
	return q, nil
}

func (q *QueryParameters) Add(key, value string) {
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = append(q.values[key], value)
}

func (q *QueryParameters) Set(key, value string) {
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = []string{value}
}

func (q *QueryParameters) Get(key string) (string, bool) {
	v, ok := q.values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func (q *QueryParameters) Values(key string) []string { return q.values[key] }

func (q *QueryParameters) Has(key string) bool {
	_, ok := q.values[key]
	return ok
}

func (q *QueryParameters) Del(key string) {
	if _, ok := q.values[key]; !ok {
		return
	}
	delete(q.values, key)
	for i, k := range q.keys {
		if k == key {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the distinct keys in first-insertion order.
func (q *QueryParameters) Keys() []string {
	out := make([]string, len(q.keys))
	copy(out, q.keys)
	return out
}

func (q *QueryParameters) Len() int { return len(q.keys) }

func (q *QueryParameters) IsEmpty() bool { return len(q.keys) == 0 }

func (q *QueryParameters) Clone() *QueryParameters {
	c := NewQueryParameters()
	for _, k := range q.keys {
		c.keys = append(c.keys, k)
		c.values[k] = append([]string(nil), q.values[k]...)
	}
	return c
}

// Encode renders the query in insertion order using the Query scheme.
func (q *QueryParameters) Encode() string {
	return q.encodeWith(Query)
}

func (q *QueryParameters) encodeWith(e *PercentEncoding) string {
	if q.IsEmpty() {
		return ""
	}
	var b strings.Builder
	for i, k := range q.keys {
		for j, v := range q.values[k] {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(e.Encode(k))
			b.WriteByte('=')
			b.WriteString(e.Encode(v))
		}
	}
	return b.String()
}
