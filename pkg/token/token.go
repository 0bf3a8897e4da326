// Package token implements the stateless signed bearer tokens used for
// authentication. A token carries its subject, issue time and expiry
// and is signed with a process-wide secret; validity is entirely
// self-contained and re-verified on every request, so nothing is ever
// stored server-side.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"strings"
	"sync"
	"time"

	"tagme/pkg/logger"
)

// lifetimeSeconds is the fixed token lifetime. There is no per-token
// customization.
const lifetimeSeconds int64 = 2_000_000

const wireLen = 8 + 8 + 8 + sha256.Size

var (
	secret     [32]byte
	secretOnce sync.Once
)

// Init eagerly generates the process-wide signing secret. The secret
// lives for the process lifetime and is never persisted: a restart
// invalidates every outstanding token, which is an accepted
// operational tradeoff.
func Init() {
	secretKey()
	logger.Info("token_secret_initialized")
}

func secretKey() []byte {
	secretOnce.Do(func() {
		if _, err := rand.Read(secret[:]); err != nil {
			// crypto/rand never fails on supported platforms; a broken
			// entropy source is unrecoverable.
			panic("token: secret generation failed: " + err.Error())
		}
	})
	return secret[:]
}

// Token is a compact self-contained bearer token.
type Token struct {
	Sub  uint64
	Iat  int64
	Exp  int64
	sign [sha256.Size]byte
}

// signature computes the keyed digest over the secret and the three
// numeric fields, each packed fixed-width native-endian.
func signature(sub uint64, iat, exp int64) [sha256.Size]byte {
	h := sha256.New()
	h.Write(secretKey())
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], sub)
	h.Write(buf[:])
	binary.NativeEndian.PutUint64(buf[:], uint64(iat))
	h.Write(buf[:])
	binary.NativeEndian.PutUint64(buf[:], uint64(exp))
	h.Write(buf[:])
	var out [sha256.Size]byte
	h.Sum(out[:0])
	return out
}

// New issues a token for sub with iat = now and the fixed lifetime.
func New(sub uint64) *Token {
	iat := time.Now().Unix()
	exp := iat + lifetimeSeconds
	return &Token{Sub: sub, Iat: iat, Exp: exp, sign: signature(sub, iat, exp)}
}

// IsValid recomputes the signature against the current process secret
// and checks the validity window. The window predicate sums the two
// margins, (iat-now)+(exp-now) > 0, so a token stops validating at the
// midpoint of iat..exp and sliding renewal pushes that point forward.
func (t *Token) IsValid() bool {
	want := signature(t.Sub, t.Iat, t.Exp)
	now := time.Now().Unix()
	return hmac.Equal(t.sign[:], want[:]) && (t.Iat-now)+(t.Exp-now) > 0
}

// Renew returns a re-signed copy with iat refreshed to now and the
// same sub and exp (sliding renewal), or nil when t is not valid.
func (t *Token) Renew() *Token {
	if !t.IsValid() {
		return nil
	}
	iat := time.Now().Unix()
	return &Token{Sub: t.Sub, Iat: iat, Exp: t.Exp, sign: signature(t.Sub, iat, t.Exp)}
}

// Encode packs the token into its base64 wire form.
func (t *Token) Encode() string {
	buf := make([]byte, 0, wireLen)
	buf = binary.LittleEndian.AppendUint64(buf, t.Sub)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(t.Iat))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(t.Exp))
	buf = append(buf, t.sign[:]...)
	return base64.StdEncoding.EncodeToString(buf)
}

// String renders the token as an Authorization header value.
func (t *Token) String() string { return "Bearer " + t.Encode() }

// Decode parses the base64 wire form. Any failure yields nil; callers
// cannot distinguish malformed input from a forged signature.
func Decode(s string) *Token {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(raw) != wireLen {
		return nil
	}
	t := &Token{
		Sub: binary.LittleEndian.Uint64(raw[0:8]),
		Iat: int64(binary.LittleEndian.Uint64(raw[8:16])),
		Exp: int64(binary.LittleEndian.Uint64(raw[16:24])),
	}
	copy(t.sign[:], raw[24:])
	return t
}

// FromAuthHeader extracts a token from an Authorization header value,
// or nil when the header carries no decodable bearer token.
func FromAuthHeader(h string) *Token {
	s, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return nil
	}
	return Decode(s)
}
