package cmdargs

import (
	"flag"
	"testing"

	"github.com/nspcc-dev/patricia/pkg/util"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestParseBytes(t *testing.T) {
	testCases := map[string][]byte{
		"dog":      []byte("dog"),
		"0x":       {},
		"0x00ff":   {0x00, 0xff},
		"x0ff":     []byte("x0ff"),
		"":         {},
		"0X0a":     []byte("0X0a"),
		"0xDEADbe": {0xde, 0xad, 0xbe},
	}
	for s, expected := range testCases {
		actual, err := ParseBytes(s)
		require.NoError(t, err, s)
		require.Equal(t, expected, actual, s)
	}

	for _, s := range []string{"0x0", "0xzz"} {
		_, err := ParseBytes(s)
		require.Error(t, err, s)
	}
}

func TestGetBytesFromContext(t *testing.T) {
	newCtx := func(t *testing.T, args ...string) *cli.Context {
		set := flag.NewFlagSet("flagSet", flag.ContinueOnError)
		require.NoError(t, set.Parse(args))
		return cli.NewContext(cli.NewApp(), set, nil)
	}

	res, err := GetBytesFromContext(newCtx(t, "key", "0x0102"), 2)
	require.Nil(t, err)
	require.Equal(t, [][]byte{[]byte("key"), {1, 2}}, res)

	_, err = GetBytesFromContext(newCtx(t, "key"), 2)
	require.NotNil(t, err)
	require.Equal(t, 1, err.ExitCode())

	_, err = GetBytesFromContext(newCtx(t, "0xkey"), 1)
	require.NotNil(t, err)

	require.Nil(t, EnsureNone(newCtx(t)))
	require.NotNil(t, EnsureNone(newCtx(t, "extra")))
}

func TestParseRoot(t *testing.T) {
	expected := util.Uint256{1, 2, 3}
	for _, s := range []string{expected.String(), expected.StringBE()} {
		actual, err := ParseRoot(s)
		require.NoError(t, err)
		require.Equal(t, expected, actual)
	}
	_, err := ParseRoot("0102")
	require.Error(t, err)
}
