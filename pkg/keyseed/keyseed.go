// Package keyseed turns an optional passphrase into a deterministic generator for pixel selection. The key only
// decides where bits go; it does not encrypt anything.
package keyseed

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
)

// Derive hashes key with SHA-256 and reads the first 8 bytes of the digest as a big endian integer. An absent key is
// the empty string.
func Derive(key string) uint64 {
	digest := sha256.Sum256([]byte(key))
	return binary.BigEndian.Uint64(digest[:8])
}

// NewRand returns a generator owned by the caller, seeded only from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func NewRandFromKey(key string) *rand.Rand {
	return NewRand(Derive(key))
}
