package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"strings"
	"sync"
	"time"

	"github.com/smithkit/smithkit/credentials"
)

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// SigningKeyDeriver derives and caches the chained-HMAC SigV4 signing key.
// The derived key only depends on the secret, the date, the region and the
// service, so one entry per region/service pair is kept and refreshed when
// the access key or the day changes.
type SigningKeyDeriver struct {
	cache derivedKeyCache
}

func NewSigningKeyDeriver() *SigningKeyDeriver {
	return &SigningKeyDeriver{cache: derivedKeyCache{values: make(map[string]derivedKey)}}
}

type derivedKey struct {
	AccessKey  string
	Date       time.Time
	Credential []byte
}

type derivedKeyCache struct {
	values map[string]derivedKey
	mutex  sync.RWMutex
}

func (k *SigningKeyDeriver) DeriveKey(cred credentials.Credentials, service, region string, t SigningTime) []byte {
	return k.cache.getSigningKey(cred, service, region, t)
}

func lookupKey(service, region string) string {
	var s strings.Builder
	s.Grow(len(region) + len(service) + 1)
	s.WriteString(region)
	s.WriteRune('/')
	s.WriteString(service)
	return s.String()
}

func (c *derivedKeyCache) get(key string, cred credentials.Credentials, t time.Time) ([]byte, bool) {
	entry, ok := c.values[key]
	if ok && entry.AccessKey == cred.AccessKeyID && isSameDay(t, entry.Date) {
		return entry.Credential, true
	}
	return nil, false
}

func (c *derivedKeyCache) getSigningKey(cred credentials.Credentials, service, region string, t SigningTime) []byte {
	key := lookupKey(service, region)
	c.mutex.RLock()
	if k, ok := c.get(key, cred, t.Time); ok {
		c.mutex.RUnlock()
		return k
	}
	c.mutex.RUnlock()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if k, ok := c.get(key, cred, t.Time); ok {
		return k
	}
	k := deriveKey(cred.SecretAccessKey, service, region, &t)
	c.values[key] = derivedKey{
		AccessKey:  cred.AccessKeyID,
		Date:       t.Time,
		Credential: k,
	}
	return k
}

// deriveKey runs the four-step HMAC chain.
func deriveKey(secret, service, region string, t *SigningTime) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(t.ShortFormat()))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte(scopeSuffix))
}
