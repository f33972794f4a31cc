package hash

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/nspcc-dev/patricia/pkg/util"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Hasher produces fixed-size digests of arbitrary data.
type Hasher interface {
	Hash(data []byte) util.Uint256
	Name() string
}

type (
	keccakHasher  struct{}
	blake2bHasher struct{}
	sha256Hasher  struct{}
)

// Available hashers.
var (
	// Keccak256 is the legacy Keccak-256 used by Ethereum tries.
	Keccak256 Hasher = keccakHasher{}
	// Blake2b256 is the 32-byte BLAKE2b.
	Blake2b256 Hasher = blake2bHasher{}
	// SHA256 is the standard SHA-256.
	SHA256 Hasher = sha256Hasher{}
)

// ByName returns hasher with the given name (case-insensitive).
func ByName(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", Keccak256.Name():
		return Keccak256, nil
	case Blake2b256.Name():
		return Blake2b256, nil
	case SHA256.Name():
		return SHA256, nil
	default:
		return nil, fmt.Errorf("unknown hasher: %s", name)
	}
}

// Keccak computes Keccak-256 of data.
func Keccak(data []byte) util.Uint256 {
	var h util.Uint256
	d := sha3.NewLegacyKeccak256()
	_, _ = d.Write(data)
	d.Sum(h[:0])
	return h
}

// Blake2b computes 32-byte BLAKE2b of data.
func Blake2b(data []byte) util.Uint256 {
	return blake2b.Sum256(data)
}

// Sha256 hashes the incoming byte slice using the sha256 algorithm.
func Sha256(data []byte) util.Uint256 {
	return sha256.Sum256(data)
}

func (keccakHasher) Hash(data []byte) util.Uint256 { return Keccak(data) }
func (keccakHasher) Name() string                  { return "keccak256" }

func (blake2bHasher) Hash(data []byte) util.Uint256 { return Blake2b(data) }
func (blake2bHasher) Name() string                  { return "blake2b256" }

func (sha256Hasher) Hash(data []byte) util.Uint256 { return Sha256(data) }
func (sha256Hasher) Name() string                  { return "sha256" }
