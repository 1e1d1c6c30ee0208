package uri

import "testing"

func TestParseURL(t *testing.T) {
	type test struct {
		title    string
		raw      string
		scheme   string
		host     string
		kind     HostKind
		port     int
		path     string
		rendered string
	}
	for _, test := range []test{{
		title:    "bare host",
		raw:      "https://example.amazonaws.com",
		scheme:   "https",
		host:     "example.amazonaws.com",
		kind:     HostDomain,
		rendered: "https://example.amazonaws.com",
	}, {
		title:    "path and port",
		raw:      "http://localhost:8080/v1/items",
		scheme:   "http",
		host:     "localhost",
		kind:     HostDomain,
		port:     8080,
		path:     "/v1/items",
		rendered: "http://localhost:8080/v1/items",
	}, {
		title:    "default port dropped",
		raw:      "https://example.com:443/x",
		scheme:   "https",
		host:     "example.com",
		kind:     HostDomain,
		port:     443,
		path:     "/x",
		rendered: "https://example.com/x",
	}, {
		title:    "ipv4",
		raw:      "http://127.0.0.1:9000/",
		scheme:   "http",
		host:     "127.0.0.1",
		kind:     HostIPv4,
		port:     9000,
		path:     "/",
		rendered: "http://127.0.0.1:9000/",
	}, {
		title:    "ipv6",
		raw:      "http://[::1]:9000/x",
		scheme:   "http",
		host:     "::1",
		kind:     HostIPv6,
		port:     9000,
		path:     "/x",
		rendered: "http://[::1]:9000/x",
	}, {
		title:    "escaped path",
		raw:      "https://example.com/a%20b",
		scheme:   "https",
		host:     "example.com",
		kind:     HostDomain,
		path:     "/a b",
		rendered: "https://example.com/a%20b",
	}} {
		t.Run(test.title, func(t *testing.T) {
			u, err := Parse(test.raw)
			if err != nil {
				t.Fatal(err)
			}
			if u.Scheme != test.scheme {
				t.Errorf("scheme: expected %q, got %q", test.scheme, u.Scheme)
			}
			if u.Host.String() != test.host {
				t.Errorf("host: expected %q, got %q", test.host, u.Host.String())
			}
			if u.Host.Kind() != test.kind {
				t.Errorf("host kind: expected %v, got %v", test.kind, u.Host.Kind())
			}
			if u.Port != test.port {
				t.Errorf("port: expected %d, got %d", test.port, u.Port)
			}
			if u.Path.Decoded != test.path {
				t.Errorf("path: expected %q, got %q", test.path, u.Path.Decoded)
			}
			if got := u.String(); got != test.rendered {
				t.Errorf("rendered: expected %q, got %q", test.rendered, got)
			}
		})
	}
}

func TestParseURLQueryAndFragment(t *testing.T) {
	u, err := Parse("https://example.com/p?b=2&a=1#frag")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := u.Query.Get("a"); v != "1" {
		t.Errorf("expected query a=1, got %q", v)
	}
	if u.Fragment.Decoded != "frag" {
		t.Errorf("expected fragment, got %q", u.Fragment.Decoded)
	}
	if got := u.String(); got != "https://example.com/p?b=2&a=1#frag" {
		t.Errorf("unexpected rendering %q", got)
	}
}

func TestParseURLInvalid(t *testing.T) {
	for _, raw := range []string{"", "example.com", "https://", "https://host:notaport/"} {
		if _, err := Parse(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestURLClone(t *testing.T) {
	u, err := Parse("https://example.com/p?a=1")
	if err != nil {
		t.Fatal(err)
	}
	c := u.Clone()
	c.Query.Add("a", "2")
	if len(u.Query.Values("a")) != 1 {
		t.Error("clone must not alias the query")
	}
}
