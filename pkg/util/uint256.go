package util

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Uint256Size is the size of Uint256 in bytes.
const Uint256Size = 32

// Uint256 is a 32 byte long unsigned integer. It's used for trie node digests
// and is always kept in the order the hash function produced it (big-endian).
type Uint256 [Uint256Size]uint8

// Uint256DecodeStringBE attempts to decode the given hex string (with or
// without 0x prefix) into an Uint256.
func Uint256DecodeStringBE(s string) (u Uint256, err error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != Uint256Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint256Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint256DecodeBytesBE(b)
}

// Uint256DecodeBytesBE attempts to decode the given bytes into an Uint256.
func Uint256DecodeBytesBE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint256Size, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// BytesBE returns a byte slice representation of u.
func (u Uint256) BytesBE() []byte {
	b := make([]byte, Uint256Size)
	copy(b, u[:])
	return b
}

// Equals returns true if both Uint256 values are the same.
func (u Uint256) Equals(other Uint256) bool {
	return u == other
}

// CompareTo compares two Uint256 with each other. Possible output: 1, -1, 0
//
//	1 implies u > other.
//
// -1 implies u < other.
//
//	0 implies  u = other.
func (u Uint256) CompareTo(other Uint256) int {
	return bytes.Compare(u[:], other[:])
}

// String implements the stringer interface.
func (u Uint256) String() string {
	return hex.EncodeToString(u[:])
}

// StringBE produces string representation of Uint256 with 0x prefix.
func (u Uint256) StringBE() string {
	return "0x" + u.String()
}

// UnmarshalJSON implements the json unmarshaller interface.
func (u *Uint256) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*u, err = Uint256DecodeStringBE(js)
	return err
}

// MarshalJSON implements the json marshaller interface.
func (u Uint256) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.StringBE() + `"`), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (u *Uint256) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	var err error
	*u, err = Uint256DecodeStringBE(s)
	return err
}

// MarshalYAML implements the yaml.Marshaler interface.
func (u Uint256) MarshalYAML() (interface{}, error) {
	return u.StringBE(), nil
}
