package signer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/smithkit/smithkit/transport"
	"github.com/smithkit/smithkit/uri"
)

// CanonicalRequest is the ephemeral product of one signing attempt: the
// mutated builder, the canonical request text, the semicolon-joined signed
// header list and the payload hash.
type CanonicalRequest struct {
	Builder       *transport.RequestBuilder
	String        string
	SignedHeaders string
	PayloadHash   string
}

func buildCredentialScope(t *SigningTime, cfg *SigningConfig) string {
	if cfg.Algorithm == SigV4Asymmetric {
		return strings.Join([]string{t.ShortFormat(), cfg.Service, scopeSuffix}, "/")
	}
	return strings.Join([]string{t.ShortFormat(), cfg.Region, cfg.Service, scopeSuffix}, "/")
}

// canonicalize performs stage one of signing: required field population,
// signed-header selection and canonical request assembly. The builder is
// mutated in place; callers pass the per-attempt clone.
func canonicalize(cfg *SigningConfig, t *SigningTime, req *transport.RequestBuilder) (*CanonicalRequest, error) {
	payloadHash, err := resolvePayloadHash(cfg, req.Body)
	if err != nil {
		return nil, err
	}

	presign := cfg.SignatureType == SignQueryParams
	scope := buildCredentialScope(t, cfg)
	credential := cfg.Credentials.AccessKeyID + "/" + scope

	setRequiredFields(cfg, t, req, credential, payloadHash, presign)

	signedNames, canonicalHeaders := buildCanonicalHeaders(cfg, req)
	signedHeadersStr := strings.Join(signedNames, ";")

	if presign {
		req.URL.Query.Set(amzSignedHeadersKey, signedHeadersStr)
	}

	canonical := strings.Join([]string{
		req.Method,
		canonicalPath(cfg, req.URL),
		canonicalQuery(req.URL.Query),
		canonicalHeaders,
		signedHeadersStr,
		payloadHash,
	}, "\n")

	return &CanonicalRequest{
		Builder:       req,
		String:        canonical,
		SignedHeaders: signedHeadersStr,
		PayloadHash:   payloadHash,
	}, nil
}

// setRequiredFields populates the signing carrier. The population order is
// observable in the rendered query string of pre-signed URLs (the canonical
// query itself is sorted), so it stays fixed.
func setRequiredFields(cfg *SigningConfig, t *SigningTime, req *transport.RequestBuilder, credential, payloadHash string, presign bool) {
	if presign {
		q := req.URL.Query
		q.Set(amzAlgorithmKey, cfg.Algorithm.Name())
		q.Set(amzCredentialKey, credential)
		q.Set(amzDateKey, t.Format())
		if cfg.ExpiresAfter > 0 {
			q.Set(amzExpiresKey, strconv.FormatInt(int64(cfg.ExpiresAfter.Seconds()), 10))
		}
		if token := cfg.Credentials.SessionToken; token != "" && !cfg.OmitSessionToken {
			q.Set(amzSecurityTokenKey, token)
		}
		if cfg.Algorithm == SigV4Asymmetric {
			q.Set(amzRegionSetKey, cfg.Region)
		}
		return
	}

	if !req.Headers.Has("Host") {
		req.Headers.Set("Host", req.HostHeaderValue())
	}
	if cfg.SignedBodyHeader == ContentSha256Header {
		req.Headers.Set(amzContentSha256Key, payloadHash)
	}
	req.Headers.Set(amzDateKey, t.Format())
	if token := cfg.Credentials.SessionToken; token != "" && !cfg.OmitSessionToken {
		req.Headers.Set(amzSecurityTokenKey, token)
	}
	if cfg.Algorithm == SigV4Asymmetric {
		req.Headers.Set(amzRegionSetKey, cfg.Region)
	}
}

// buildCanonicalHeaders selects, sorts and renders the headers to sign.
// Values are trimmed, inner space runs collapse to one, and multi-valued
// headers emit as a single comma-joined line.
func buildCanonicalHeaders(cfg *SigningConfig, req *transport.RequestBuilder) (signedNames []string, canonical string) {
	values := make(map[string][]string)

	appendHeader := func(name string, vals []string) {
		fold := strings.ToLower(name)
		if !ignoredHeaders.IsValid(fold) {
			return
		}
		if cfg.HeaderFilter != nil && !cfg.HeaderFilter(fold) {
			return
		}
		if _, ok := values[fold]; !ok {
			signedNames = append(signedNames, fold)
		}
		values[fold] = append(values[fold], vals...)
	}

	if !req.Headers.Has("Host") {
		appendHeader("host", []string{req.HostHeaderValue()})
	}
	req.Headers.ForEach(func(name string, vals []string) {
		appendHeader(name, vals)
	})
	sort.Strings(signedNames)

	var b strings.Builder
	for _, name := range signedNames {
		b.WriteString(name)
		b.WriteByte(':')
		for i, v := range values[name] {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strings.TrimSpace(stripExcessSpaces(v)))
		}
		b.WriteByte('\n')
	}
	return signedNames, b.String()
}

// canonicalPath encodes the decoded path segment-wise under the SigV4
// table, after optional dot-segment normalization, and once more when
// double encoding is configured.
func canonicalPath(cfg *SigningConfig, u *uri.URL) string {
	path := u.Path.Decoded
	if path == "" {
		path = "/"
	}
	if cfg.NormalizePath {
		path = normalizePath(path)
	}
	encoded := encodePathSegments(path)
	if cfg.UseDoubleURIEncode {
		encoded = encodePathSegments(encoded)
	}
	if encoded == "" {
		encoded = "/"
	}
	return encoded
}

func encodePathSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = uri.SigV4.Encode(s)
	}
	return strings.Join(segments, "/")
}

// normalizePath resolves "." and ".." segments, preserving a trailing
// slash.
func normalizePath(path string) string {
	trailing := strings.HasSuffix(path, "/")
	var out []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	normalized := "/" + strings.Join(out, "/")
	if trailing && normalized != "/" {
		normalized += "/"
	}
	return normalized
}

// canonicalQuery re-encodes every key and value under the SigV4 table and
// sorts by encoded key, then encoded value. Any prior signature parameter
// is excluded.
func canonicalQuery(q *uri.QueryParameters) string {
	type pair struct{ k, v string }
	var pairs []pair
	for _, key := range q.Keys() {
		if key == amzSignatureKey {
			continue
		}
		ek := uri.SigV4.Encode(key)
		for _, v := range q.Values(key) {
			pairs = append(pairs, pair{ek, uri.SigV4.Encode(v)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k != pairs[j].k {
			return pairs[i].k < pairs[j].k
		}
		return pairs[i].v < pairs[j].v
	})
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.k)
		b.WriteByte('=')
		b.WriteString(p.v)
	}
	return b.String()
}
