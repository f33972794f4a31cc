package cmdargs

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nspcc-dev/patricia/pkg/util"
	"github.com/urfave/cli"
)

// BytesParsingDoc is a documentation for key and value parsing.
const BytesParsingDoc = `   Keys and values are taken as UTF-8 strings unless they're prefixed with
   '0x', in which case they're decoded from hex (use '0x' alone for an empty
   value).`

// ParseBytes converts a command line argument into bytes: '0x'-prefixed
// strings are decoded from hex, everything else is used as is.
func ParseBytes(s string) ([]byte, error) {
	if h, ok := strings.CutPrefix(s, "0x"); ok {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("invalid hex argument %q: %w", s, err)
		}
		return b, nil
	}
	return []byte(s), nil
}

// GetBytesFromContext parses exactly n positional arguments with ParseBytes.
func GetBytesFromContext(ctx *cli.Context, n int) ([][]byte, *cli.ExitError) {
	args := ctx.Args()
	if len(args) != n {
		return nil, cli.NewExitError(fmt.Errorf("expected %d arguments, got %d", n, len(args)), 1)
	}
	res := make([][]byte, n)
	for i := range args {
		b, err := ParseBytes(args[i])
		if err != nil {
			return nil, cli.NewExitError(err, 1)
		}
		res[i] = b
	}
	return res, nil
}

// ParseRoot decodes trie root hash given in hex (with or without 0x prefix).
func ParseRoot(s string) (util.Uint256, error) {
	h, err := util.Uint256DecodeStringBE(s)
	if err != nil {
		return h, fmt.Errorf("invalid root %q: %w", s, err)
	}
	return h, nil
}

// EnsureNone returns an error if there are any positional arguments present.
// It can be used to check for them in commands that don't accept arguments.
func EnsureNone(ctx *cli.Context) *cli.ExitError {
	if ctx.Args().Present() {
		return cli.NewExitError("additional arguments given while this command expects none", 1)
	}
	return nil
}
