package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"golang.org/x/crypto/argon2"
)

const (
	SchemeIteratedSHA256 = "sha256-iter"
	SchemeArgon2id       = "argon2id"

	// Round counts of the iterated scheme. The simulator count keeps slow
	// emulators responsive and is correspondingly weaker.
	DeviceIterations    = 1000
	SimulatorIterations = 100
)

// Hasher turns a passcode and the device salt into a storable digest.
// The same inputs always give the same digest.
type Hasher interface {
	Scheme() string
	Hash(passcode, salt string, isSimulator bool) (string, error)
}

// HasherFor returns the hasher registered under scheme. An empty scheme is
// the iterated SHA-256 one, which records written before schemes were tracked
// use.
func HasherFor(scheme string) (Hasher, error) {
	switch scheme {
	case "", SchemeIteratedSHA256:
		return IteratedSHA256{}, nil
	case SchemeArgon2id:
		return Argon2id{}, nil
	default:
		return nil, fmt.Errorf("unknown hash scheme %q", scheme)
	}
}

// Iterations returns the round count for the runtime classification.
func Iterations(isSimulator bool) int {
	if isSimulator {
		return SimulatorIterations
	}
	return DeviceIterations
}

// IterHash computes h0 = sha256(passcode+salt) and then
// h(i+1) = sha256(h(i) + decimal(i)) for the given number of rounds.
// Every digest is carried as lowercase hex.
func IterHash(passcode, salt string, rounds int) string {
	sum := sha256.Sum256([]byte(passcode + salt))
	h := hex.EncodeToString(sum[:])
	for i := 0; i < rounds; i++ {
		sum = sha256.Sum256([]byte(h + strconv.Itoa(i)))
		h = hex.EncodeToString(sum[:])
	}
	return h
}

type IteratedSHA256 struct{}

func (IteratedSHA256) Scheme() string { return SchemeIteratedSHA256 }

func (IteratedSHA256) Hash(passcode, salt string, isSimulator bool) (string, error) {
	if salt == "" {
		return "", fmt.Errorf("hash passcode: empty salt")
	}
	return IterHash(passcode, salt, Iterations(isSimulator)), nil
}

// Argon2id is the memory-hard alternative selected with hash_scheme=argon2id.
// Simulators get the cheaper parameter set, mirroring the iteration split.
type Argon2id struct{}

func (Argon2id) Scheme() string { return SchemeArgon2id }

func (Argon2id) Hash(passcode, salt string, isSimulator bool) (string, error) {
	if salt == "" {
		return "", fmt.Errorf("hash passcode: empty salt")
	}
	var (
		t   uint32 = 3
		mem uint32 = 64 * 1024
	)
	if isSimulator {
		t, mem = 1, 19*1024
	}
	key := argon2.IDKey([]byte(passcode), []byte(salt), t, mem, 2, 32)
	return hex.EncodeToString(key), nil
}
