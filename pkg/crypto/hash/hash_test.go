package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashers(t *testing.T) {
	testCases := []struct {
		hasher   Hasher
		data     string
		expected string
	}{
		{Keccak256, "", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{Keccak256, "\x80", "56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421"},
		{SHA256, "hello", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{Blake2b256, "", "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"},
	}
	for _, tc := range testCases {
		t.Run(tc.hasher.Name(), func(t *testing.T) {
			require.Equal(t, tc.expected, tc.hasher.Hash([]byte(tc.data)).String())
		})
	}
}

func TestByName(t *testing.T) {
	for _, h := range []Hasher{Keccak256, Blake2b256, SHA256} {
		actual, err := ByName(h.Name())
		require.NoError(t, err)
		require.Equal(t, h, actual)
	}

	h, err := ByName("")
	require.NoError(t, err)
	require.Equal(t, Keccak256, h)

	h, err = ByName("KECCAK256")
	require.NoError(t, err)
	require.Equal(t, Keccak256, h)

	_, err = ByName("md5")
	require.Error(t, err)
}
