package uri

import (
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	type test struct {
		title   string
		scheme  *PercentEncoding
		decoded string
		encoded string
	}
	for _, test := range []test{{
		title:   "path keeps slashes",
		scheme:  Path,
		decoded: "/foo/bar baz",
		encoded: "/foo/bar%20baz",
	}, {
		title:   "sigv4 encodes everything reserved",
		scheme:  SigV4,
		decoded: "key-._~,!@#$%^&*()",
		encoded: "key-._~%2C%21%40%23%24%25%5E%26%2A%28%29",
	}, {
		title:   "sigv4 keeps unreserved only",
		scheme:  SigV4,
		decoded: "AZaz09-._~",
		encoded: "AZaz09-._~",
	}, {
		title:   "query keeps separators",
		scheme:  Query,
		decoded: "a=b&c",
		encoded: "a=b&c",
	}, {
		title:   "form url rewrites space",
		scheme:  FormURL,
		decoded: "a b+c",
		encoded: "a+b%2Bc",
	}, {
		title:   "utf8 escapes bytewise",
		scheme:  SmithyLabel,
		decoded: "é",
		encoded: "%C3%A9",
	}, {
		title:   "userinfo keeps colon",
		scheme:  UserInfo,
		decoded: "user:pass",
		encoded: "user:pass",
	}} {
		t.Run(test.title, func(t *testing.T) {
			if got := test.scheme.Encode(test.decoded); got != test.encoded {
				t.Errorf("encode: expected %q, got %q", test.encoded, got)
			}
			decoded, err := test.scheme.Decode(test.encoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if decoded != test.decoded {
				t.Errorf("decode: expected %q, got %q", test.decoded, decoded)
			}
			// encode(decode(x)) == x for canonical inputs
			if got := test.scheme.Encode(decoded); got != test.encoded {
				t.Errorf("re-encode: expected %q, got %q", test.encoded, got)
			}
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, input := range []string{"%", "%2", "%zz", "a%G0b"} {
		if _, err := Path.Decode(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestEncodableReencodeInvariant(t *testing.T) {
	e := FromDecoded(Path, "/a b/c")
	if e.Encoded != "/a%20b/c" {
		t.Fatalf("unexpected encoded form %q", e.Encoded)
	}
	from, err := FromEncoded(Path, e.Encoded)
	if err != nil {
		t.Fatal(err)
	}
	if from.Decoded != e.Decoded {
		t.Errorf("expected %q, got %q", e.Decoded, from.Decoded)
	}
	if got := e.Encoding.Encode(from.Decoded); got != e.Encoded {
		t.Errorf("re-encoding the decoded form must reproduce %q, got %q", e.Encoded, got)
	}
}
