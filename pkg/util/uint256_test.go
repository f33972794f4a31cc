package util

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/patricia/internal/testserdes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testHash = "56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421"

func TestUint256DecodeString(t *testing.T) {
	val, err := Uint256DecodeStringBE(testHash)
	require.NoError(t, err)
	assert.Equal(t, testHash, val.String())
	assert.Equal(t, "0x"+testHash, val.StringBE())

	prefixed, err := Uint256DecodeStringBE("0x" + testHash)
	require.NoError(t, err)
	assert.Equal(t, val, prefixed)

	_, err = Uint256DecodeStringBE(testHash[1:])
	require.Error(t, err)

	_, err = Uint256DecodeStringBE("zz" + testHash[2:])
	require.Error(t, err)
}

func TestUint256DecodeBytes(t *testing.T) {
	b, err := hex.DecodeString(testHash)
	require.NoError(t, err)

	val, err := Uint256DecodeBytesBE(b)
	require.NoError(t, err)
	assert.Equal(t, b, val.BytesBE())

	_, err = Uint256DecodeBytesBE(b[1:])
	require.Error(t, err)
}

func TestUint256Compare(t *testing.T) {
	a := Uint256{1}
	b := Uint256{2}
	assert.Equal(t, -1, a.CompareTo(b))
	assert.Equal(t, 1, b.CompareTo(a))
	assert.Equal(t, 0, a.CompareTo(a))
	assert.True(t, a.Equals(Uint256{1}))
	assert.False(t, a.Equals(b))
}

func TestUint256_MarshalJSON(t *testing.T) {
	expected, err := Uint256DecodeStringBE(testHash)
	require.NoError(t, err)

	data, err := json.Marshal(expected)
	require.NoError(t, err)
	require.Equal(t, `"0x`+testHash+`"`, string(data))

	testserdes.MarshalUnmarshalJSON(t, &expected, new(Uint256))

	var actual Uint256
	require.Error(t, json.Unmarshal([]byte(`123`), &actual))
}

func TestUint256_MarshalYAML(t *testing.T) {
	expected, err := Uint256DecodeStringBE(testHash)
	require.NoError(t, err)

	testserdes.MarshalUnmarshalYAML(t, &expected, new(Uint256))

	var actual Uint256
	require.Error(t, yaml.Unmarshal([]byte("[1, 2]"), &actual))
}
