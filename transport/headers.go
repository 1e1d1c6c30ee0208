package transport

import (
	"strings"
)

type headerEntry struct {
	key    string // casing of the first Add, or of the latest Set
	values []string
}

// Headers is a multi-valued header map. Lookup and equality are
// case-insensitive; the casing of the first insertion is kept for emission
// until Set replaces it. Distinct names keep insertion order.
type Headers struct {
	order []string // lowercase names in insertion order
	index map[string]*headerEntry
}

func NewHeaders() *Headers {
	return &Headers{index: make(map[string]*headerEntry)}
}

func (h *Headers) Add(key, value string) {
	fold := strings.ToLower(key)
	if e, ok := h.index[fold]; ok {
		e.values = append(e.values, value)
		return
	}
	h.order = append(h.order, fold)
	h.index[fold] = &headerEntry{key: key, values: []string{value}}
}

func (h *Headers) Set(key, value string) {
	fold := strings.ToLower(key)
	if e, ok := h.index[fold]; ok {
		e.key = key
		e.values = append(e.values[:0], value)
		return
	}
	h.order = append(h.order, fold)
	h.index[fold] = &headerEntry{key: key, values: []string{value}}
}

func (h *Headers) Get(key string) (string, bool) {
	e, ok := h.index[strings.ToLower(key)]
	if !ok || len(e.values) == 0 {
		return "", false
	}
	return e.values[0], true
}

func (h *Headers) Values(key string) []string {
	e, ok := h.index[strings.ToLower(key)]
	if !ok {
		return nil
	}
	return e.values
}

func (h *Headers) Has(key string) bool {
	_, ok := h.index[strings.ToLower(key)]
	return ok
}

func (h *Headers) Del(key string) {
	fold := strings.ToLower(key)
	if _, ok := h.index[fold]; !ok {
		return
	}
	delete(h.index, fold)
	for i, k := range h.order {
		if k == fold {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Names returns the header names with their original casing, in insertion
// order.
func (h *Headers) Names() []string {
	out := make([]string, 0, len(h.order))
	for _, fold := range h.order {
		out = append(out, h.index[fold].key)
	}
	return out
}

func (h *Headers) Len() int { return len(h.order) }

// ForEach visits entries in insertion order with original-cased names.
func (h *Headers) ForEach(fn func(key string, values []string)) {
	for _, fold := range h.order {
		e := h.index[fold]
		fn(e.key, e.values)
	}
}

func (h *Headers) Clone() *Headers {
	c := NewHeaders()
	for _, fold := range h.order {
		e := h.index[fold]
		c.order = append(c.order, fold)
		c.index[fold] = &headerEntry{key: e.key, values: append([]string(nil), e.values...)}
	}
	return c
}

// Equal compares case-insensitively on names and exactly on value lists,
// ignoring insertion order of distinct names.
func (h *Headers) Equal(o *Headers) bool {
	if h.Len() != o.Len() {
		return false
	}
	for fold, e := range h.index {
		oe, ok := o.index[fold]
		if !ok || len(e.values) != len(oe.values) {
			return false
		}
		for i := range e.values {
			if e.values[i] != oe.values[i] {
				return false
			}
		}
	}
	return true
}
