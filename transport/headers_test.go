package transport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeadersCaseInsensitiveLookup(t *testing.T) {
	h := NewHeaders()
	h.Add("Content-Type", "application/json")

	for _, key := range []string{"content-type", "CONTENT-TYPE", "Content-Type"} {
		if v, ok := h.Get(key); !ok || v != "application/json" {
			t.Errorf("lookup %q failed, got %q %v", key, v, ok)
		}
	}
}

func TestHeadersPreserveOriginalCasing(t *testing.T) {
	h := NewHeaders()
	h.Add("x-AMZ-date", "20150830T123600Z")
	h.Add("Host", "example.com")

	if diff := cmp.Diff([]string{"x-AMZ-date", "Host"}, h.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadersMultiValue(t *testing.T) {
	h := NewHeaders()
	h.Add("Accept", "text/plain")
	h.Add("accept", "text/html")

	if diff := cmp.Diff([]string{"text/plain", "text/html"}, h.Values("ACCEPT")); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	h.Set("Accept", "application/json")
	if diff := cmp.Diff([]string{"application/json"}, h.Values("accept")); diff != "" {
		t.Errorf("set must replace all values (-want +got):\n%s", diff)
	}
}

func TestHeadersDel(t *testing.T) {
	h := NewHeaders()
	h.Add("A", "1")
	h.Add("B", "2")
	h.Del("a")
	if h.Has("A") {
		t.Error("A should be deleted")
	}
	if diff := cmp.Diff([]string{"B"}, h.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadersEqualFoldsNames(t *testing.T) {
	a := NewHeaders()
	a.Add("X-Foo", "1")
	b := NewHeaders()
	b.Add("x-foo", "1")
	if !a.Equal(b) {
		t.Error("headers should compare equal case-insensitively")
	}
	b.Add("x-bar", "2")
	if a.Equal(b) {
		t.Error("headers with different entries must not be equal")
	}
}

func TestHeadersClone(t *testing.T) {
	h := NewHeaders()
	h.Add("A", "1")
	c := h.Clone()
	c.Add("A", "2")
	c.Add("B", "3")
	if len(h.Values("A")) != 1 || h.Has("B") {
		t.Error("clone must not alias the original")
	}
}
