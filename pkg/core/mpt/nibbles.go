package mpt

import (
	"errors"
	"fmt"
)

// Hex-prefix flags.
const (
	hpOddFlag  = 0x1
	hpLeafFlag = 0x2
)

// ToNibbles splits every byte of key into two nibbles, high one first.
func ToNibbles(key []byte) []byte {
	res := make([]byte, len(key)*2)
	for i := range key {
		res[i*2] = key[i] >> 4
		res[i*2+1] = key[i] & 0x0F
	}
	return res
}

// FromNibbles performs the operation opposite to ToNibbles. It panics if
// path has odd length.
func FromNibbles(path []byte) []byte {
	if len(path)%2 != 0 {
		panic("nibble path of odd length")
	}
	res := make([]byte, len(path)/2)
	for i := range res {
		res[i] = path[2*i]<<4 + path[2*i+1]
	}
	return res
}

// CommonPrefixLen returns the length of the longest common prefix of a and b.
func CommonPrefixLen(a, b []byte) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return len(a)
}

// concatNibbles returns a new path made of all parts.
func concatNibbles(parts ...[]byte) []byte {
	var n int
	for i := range parts {
		n += len(parts[i])
	}
	res := make([]byte, 0, n)
	for i := range parts {
		res = append(res, parts[i]...)
	}
	return res
}

// EncodeHexPrefix packs nibble path into bytes with the first nibble
// containing leaf/odd flags. Even paths are padded with a zero nibble.
func EncodeHexPrefix(path []byte, leaf bool) []byte {
	var flags byte
	if leaf {
		flags |= hpLeafFlag
	}
	odd := len(path)%2 == 1
	res := make([]byte, len(path)/2+1)
	if odd {
		flags |= hpOddFlag
		res[0] = flags<<4 | path[0]
		path = path[1:]
	} else {
		res[0] = flags << 4
	}
	for i := 0; i < len(path); i += 2 {
		res[i/2+1] = path[i]<<4 | path[i+1]
	}
	return res
}

// DecodeHexPrefix is the inverse of EncodeHexPrefix.
func DecodeHexPrefix(b []byte) ([]byte, bool, error) {
	if len(b) == 0 {
		return nil, false, errors.New("empty hex-prefix encoded path")
	}
	flags := b[0] >> 4
	if flags > hpOddFlag|hpLeafFlag {
		return nil, false, fmt.Errorf("invalid hex-prefix flags: %d", flags)
	}
	leaf := flags&hpLeafFlag != 0
	res := make([]byte, 0, len(b)*2)
	if flags&hpOddFlag != 0 {
		res = append(res, b[0]&0x0F)
	} else if b[0]&0x0F != 0 {
		return nil, false, errors.New("non-zero hex-prefix padding")
	}
	for _, c := range b[1:] {
		res = append(res, c>>4, c&0x0F)
	}
	return res, leaf, nil
}
