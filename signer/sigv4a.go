package signer

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/smithkit/smithkit/credentials"
)

// ErrKDFExhausted reports that no valid P-256 scalar was found within the
// single-byte counter space. Fatal: the credentials cannot sign
// asymmetrically.
var ErrKDFExhausted = errors.New("exhausted single byte external counter deriving P-256 key")

var (
	p256          elliptic.Curve
	nMinusTwoP256 *big.Int
	one           = new(big.Int).SetInt64(1)
)

func init() {
	p256 = elliptic.P256()
	nMinusTwoP256 = new(big.Int).Sub(p256.Params().N, new(big.Int).SetInt64(2))
}

// asymmetricKeyDeriver derives and caches ECDSA-P256 private keys per
// credentials identity. Derivation is expensive, so concurrent requests for
// one identity collapse into a single derivation; entries never expire —
// rotation changes the identity and naturally abandons the old entry.
type asymmetricKeyDeriver struct {
	mu    sync.RWMutex
	keys  map[uint64]*ecdsa.PrivateKey
	group singleflight.Group
}

func newAsymmetricKeyDeriver() *asymmetricKeyDeriver {
	return &asymmetricKeyDeriver{keys: make(map[uint64]*ecdsa.PrivateKey)}
}

func credentialsIdentity(cred credentials.Credentials) uint64 {
	h := xxhash.New()
	h.WriteString(cred.AccessKeyID)
	h.WriteString("\x00")
	h.WriteString(cred.SecretAccessKey)
	return h.Sum64()
}

func (d *asymmetricKeyDeriver) DeriveKey(cred credentials.Credentials) (*ecdsa.PrivateKey, error) {
	id := credentialsIdentity(cred)

	d.mu.RLock()
	key, ok := d.keys[id]
	d.mu.RUnlock()
	if ok {
		return key, nil
	}

	v, err, _ := d.group.Do(fmt.Sprintf("%x", id), func() (interface{}, error) {
		key, err := deriveKeyFromAccessKeyPair(cred.AccessKeyID, cred.SecretAccessKey)
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		d.keys[id] = key
		d.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ecdsa.PrivateKey), nil
}

// deriveKeyFromAccessKeyPair derives a NIST P-256 private key from an IAM
// access key pair by KDF in counter mode. Candidates larger than N-2 are
// rejected and the external counter advances; the accepted candidate plus
// one becomes the scalar.
func deriveKeyFromAccessKeyPair(accessKey, secretKey string) (*ecdsa.PrivateKey, error) {
	inputKey := append([]byte("AWS4A"), secretKey...)
	nBytes := nMinusTwoP256.Bytes()

	d := new(big.Int)
	for counter := 0x01; counter <= 0xFE; counter++ {
		candidate := kdfCounterMode(inputKey, accessKey, byte(counter))
		if compareBytes(candidate, nBytes) <= 0 {
			d.SetBytes(candidate)
			d.Add(d, one)
			priv := new(ecdsa.PrivateKey)
			priv.PublicKey.Curve = p256
			priv.D = d
			priv.PublicKey.X, priv.PublicKey.Y = p256.ScalarBaseMult(d.Bytes())
			return priv, nil
		}
	}
	return nil, ErrKDFExhausted
}

// kdfCounterMode is one iteration of NIST SP 800-108 KDF in counter mode
// with a 256-bit output length, producing one HMAC block:
// HMAC(key, 0x00000001 || label || 0x00 || accessKey || counter || 0x00000100).
func kdfCounterMode(inputKey []byte, accessKey string, counter byte) []byte {
	var fixed bytes.Buffer
	fixed.Write([]byte{0x00, 0x00, 0x00, 0x01})
	fixed.WriteString(asymmetricAlgorithm)
	fixed.WriteByte(0x00)
	fixed.WriteString(accessKey)
	fixed.WriteByte(counter)
	fixed.Write([]byte{0x00, 0x00, 0x01, 0x00})

	h := hmac.New(sha256.New, inputKey)
	h.Write(fixed.Bytes())
	return h.Sum(nil)
}

// compareBytes returns -1, 0 or 1 ordering two equal-length big-endian
// values; shorter values are treated as left-padded with zeros.
func compareBytes(a, b []byte) int {
	if len(a) != len(b) {
		aa := make([]byte, 32)
		bb := make([]byte, 32)
		copy(aa[32-len(a):], a)
		copy(bb[32-len(b):], b)
		a, b = aa, bb
	}
	return bytes.Compare(a, b)
}

// signECDSA signs the SHA-256 digest of stringToSign, returning the
// ASN.1/DER signature bytes.
func signECDSA(priv *ecdsa.PrivateKey, stringToSign string) ([]byte, error) {
	digest := sha256.Sum256([]byte(stringToSign))
	return ecdsa.SignASN1(rand.Reader, priv, digest[:])
}
