package random

import (
	"math/rand"
	"time"

	"github.com/nspcc-dev/patricia/pkg/util"
)

// Bytes returns a random byte slice of specified length.
func Bytes(n int) []byte {
	b := make([]byte, n)
	Fill(b)
	return b
}

// Fill fills buffer with random bytes.
func Fill(buf []byte) {
	// Rand reader returns no errors
	_, _ = rand.Read(buf)
}

// Uint256 returns a random Uint256.
func Uint256() util.Uint256 {
	var u util.Uint256
	Fill(u[:])
	return u
}

// Int returns a random integer in [minI,maxI).
func Int(minI, maxI int) int {
	return minI + rand.Intn(maxI-minI)
}

// Perm returns a random permutation of [0,n).
func Perm(n int) []int {
	return rand.Perm(n)
}

func init() {
	//nolint:staticcheck
	rand.Seed(time.Now().UTC().UnixNano())
}
