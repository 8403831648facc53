// Package cryptox holds the credential primitives: the secure random source
// and the passcode hashers.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
	mathrand "math/rand/v2"
	"strconv"
	"time"
)

// RandomSource produces random hex strings from an OS-backed RNG.
//
// When the RNG fails, Hex degrades to SHA-256 over the current time and a
// math/rand value. The output has the same shape but is predictable to anyone
// who can guess the clock, so callers must log the weak flag.
type RandomSource struct {
	Reader io.Reader
	Now    func() time.Time
}

// DefaultRandom reads from crypto/rand.
func DefaultRandom() RandomSource {
	return RandomSource{Reader: rand.Reader, Now: time.Now}
}

// Hex returns 2*n hex characters. weak reports that the fallback was used.
func (s RandomSource) Hex(n int) (value string, weak bool) {
	if n <= 0 {
		return "", false
	}

	r := s.Reader
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err == nil {
		return hex.EncodeToString(b), false
	}
	return s.fallbackHex(n), true
}

func (s RandomSource) fallbackHex(n int) string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	seed := strconv.FormatInt(now().UnixNano(), 10) + strconv.FormatUint(mathrand.Uint64(), 36)

	out := make([]byte, 0, 2*n+sha256.Size*2)
	block := sha256.Sum256([]byte(seed))
	for i := 0; len(out) < 2*n; i++ {
		out = hex.AppendEncode(out, block[:])
		block = sha256.Sum256(append(block[:], byte(i)))
	}
	return string(out[:2*n])
}

// Digits returns a numeric string of length n (each digit is a random byte
// mod 10). Used to suggest passcodes.
func (s RandomSource) Digits(n int) (value string, weak bool) {
	raw, weak := s.Hex(n)
	digits := make([]byte, n)
	for i := 0; i < n; i++ {
		v, _ := strconv.ParseUint(raw[2*i:2*i+2], 16, 8)
		digits[i] = byte('0' + v%10)
	}
	return string(digits), weak
}
