package mpt

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/nspcc-dev/patricia/internal/random"
	"github.com/nspcc-dev/patricia/pkg/crypto/hash"
	"github.com/stretchr/testify/require"
)

const emptyRoot = "56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421"

func TestRLPCodec_Empty(t *testing.T) {
	c := NewDefaultCodec()
	require.Equal(t, []byte{0x80}, c.EmptyNode())
	require.Equal(t, []byte{0x80}, c.Encode(EmptyNode{}))
	require.Equal(t, emptyRoot, c.HashedNullNode().String())
	require.Equal(t, DefaultInlineThreshold, c.InlineThreshold())
	require.Equal(t, hash.Keccak256, c.Hasher())

	n, err := c.Decode([]byte{0x80})
	require.NoError(t, err)
	require.Equal(t, EmptyNode{}, n)

	// Other hashers change the empty root.
	b := NewRLPCodec(hash.Blake2b256, 0)
	require.Equal(t, hash.Blake2b([]byte{0x80}), b.HashedNullNode())
	require.Equal(t, DefaultInlineThreshold, b.InlineThreshold())
}

func TestRLPCodec_Encode(t *testing.T) {
	c := NewDefaultCodec()
	require.Equal(t, []byte{0xC2, 0x20, 0x61}, c.Encode(&LeafNode{Key: []byte{}, Value: []byte("a")}))

	// Odd extension key followed by the hash reference.
	h := random.Uint256()
	enc := c.Encode(&ExtensionNode{Key: []byte{1}, Child: HashHandle{Hash: h}})
	expected := append([]byte{0xE2, 0x11, 0xA0}, h[:]...)
	require.Equal(t, expected, enc)

	// Empty branch with a value only.
	enc = c.Encode(&BranchNode{Value: []byte{0x01}})
	expected = append([]byte{0xD1}, bytes.Repeat([]byte{0x80}, 16)...)
	expected = append(expected, 0x01)
	require.Equal(t, expected, enc)
}

func TestRLPCodec_RoundTrip(t *testing.T) {
	c := NewDefaultCodec()
	b := &BranchNode{Value: []byte("value")}
	b.Children[0] = InlineHandle{Node: &LeafNode{Key: []byte{1, 2, 3}, Value: []byte{4}}}
	b.Children[7] = HashHandle{Hash: random.Uint256()}
	b.Children[15] = InlineHandle{Node: &ExtensionNode{Key: []byte{9}, Child: InlineHandle{Node: &LeafNode{Key: []byte{}, Value: []byte{5}}}}}

	nodes := []Node{
		&LeafNode{Key: []byte{}, Value: random.Bytes(100)},
		&LeafNode{Key: []byte{1, 2, 3, 4, 5}, Value: []byte("leaf")},
		&ExtensionNode{Key: []byte{0xA, 0xB}, Child: HashHandle{Hash: random.Uint256()}},
		b,
	}
	for _, n := range nodes {
		actual, err := c.Decode(c.Encode(n))
		require.NoError(t, err)
		require.Equal(t, n, actual)
	}
}

func TestRLPCodec_IsInline(t *testing.T) {
	c := NewDefaultCodec()
	require.True(t, c.IsInline(make([]byte, 31)))
	require.False(t, c.IsInline(make([]byte, 32)))

	c = NewRLPCodec(hash.Keccak256, 64)
	require.True(t, c.IsInline(make([]byte, 63)))
	require.False(t, c.IsInline(make([]byte, 64)))
}

func TestRLPCodec_DecodeInvalid(t *testing.T) {
	c := NewDefaultCodec()
	branchWithShortHash := append([]byte{0xD4, 0x83, 1, 2, 3}, bytes.Repeat([]byte{0x80}, 16)...)
	testCases := map[string]string{
		"empty":             "",
		"single byte":       "01",
		"non-empty string":  "8180",
		"trailing bytes":    "8080",
		"three items":       "c3010203",
		"bad hex-prefix":    "c24061",
		"extension no key":  "c20080",
		"no child":          "c21180",
		"truncated list":    "c5010203",
		"non-canonical":     "c3810102",
		"invalid child ref": "c21101",
	}
	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			b, err := hex.DecodeString(data)
			require.NoError(t, err)
			_, err = c.Decode(b)
			require.ErrorIs(t, err, ErrInvalidNode)
		})
	}
	t.Run("short hash", func(t *testing.T) {
		_, err := c.Decode(branchWithShortHash)
		require.ErrorIs(t, err, ErrInvalidNode)
	})
}
