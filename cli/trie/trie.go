/*
Package trie contains commands operating on the trie saved in the configured
database.
*/
package trie

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nspcc-dev/patricia/cli/cmdargs"
	"github.com/nspcc-dev/patricia/cli/options"
	"github.com/nspcc-dev/patricia/pkg/core/mpt"
	"github.com/urfave/cli"
)

var errKeyNotFound = errors.New("key not found")

// NewCommands returns trie commands.
func NewCommands() []cli.Command {
	startFlag := cli.StringFlag{
		Name:  "start, s",
		Usage: "dump keys strictly greater than the given one",
	}
	return []cli.Command{
		{
			Name:      "put",
			Usage:     "put key-value pair into the trie",
			UsageText: "mptool put [--config-file file] [--debug] KEY VALUE",
			Description: `Inserts (or replaces) the value, commits changes and prints the new root.
   Empty value removes the key.

` + cmdargs.BytesParsingDoc,
			Action: put,
			Flags:  options.Common,
		},
		{
			Name:        "get",
			Usage:       "get value by key",
			UsageText:   "mptool get [--config-file file] [--debug] KEY",
			Description: cmdargs.BytesParsingDoc,
			Action:      get,
			Flags:       options.Common,
		},
		{
			Name:        "delete",
			Usage:       "remove key from the trie",
			UsageText:   "mptool delete [--config-file file] [--debug] KEY",
			Description: cmdargs.BytesParsingDoc,
			Action:      remove,
			Flags:       options.Common,
		},
		{
			Name:      "root",
			Usage:     "print current trie root",
			UsageText: "mptool root [--config-file file] [--debug]",
			Action:    printRoot,
			Flags:     options.Common,
		},
		{
			Name:      "dump",
			Usage:     "print all key-value pairs of the trie",
			UsageText: "mptool dump [--config-file file] [--debug] [--start KEY]",
			Description: `Prints 'key: value' hex pairs in the key order. Secure tries yield hashed
   keys, fat ones yield raw keys in the order of their hashes.

` + cmdargs.BytesParsingDoc,
			Action: dump,
			Flags:  append([]cli.Flag{startFlag}, options.Common...),
		},
		{
			Name:        "prove",
			Usage:       "print proof for the key",
			UsageText:   "mptool prove [--config-file file] [--debug] KEY",
			Description: "Prints hex-encoded trie nodes needed to prove the key value (or its absence).\n\n" + cmdargs.BytesParsingDoc,
			Action:      prove,
			Flags:       options.Common,
		},
		{
			Name:      "verify",
			Usage:     "verify proof for the key",
			UsageText: "mptool verify [--config-file file] [--debug] ROOT KEY PROOF...",
			Description: `Verifies proof given as a list of hex-encoded nodes against the root and
   prints the proven value. No database is used, trie settings are taken
   from the configuration.

` + cmdargs.BytesParsingDoc,
			Action: verify,
			Flags:  options.Common,
		},
		{
			Name:      "gc",
			Usage:     "remove unreferenced nodes from the database",
			UsageText: "mptool gc [--config-file file] [--debug]",
			Action:    gc,
			Flags:     options.Common,
		},
	}
}

func withState(ctx *cli.Context, f func(*state) error) error {
	s, err := openState(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	err = f(s)
	if cerr := s.close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close DB: %w", cerr)
	}
	if err != nil {
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			return err
		}
		return cli.NewExitError(err, 1)
	}
	return nil
}

func put(ctx *cli.Context) error {
	args, exitErr := cmdargs.GetBytesFromContext(ctx, 2)
	if exitErr != nil {
		return exitErr
	}
	return update(ctx, func(t mpt.TrieMut) error {
		_, err := t.Insert(args[0], args[1])
		return err
	})
}

func remove(ctx *cli.Context) error {
	args, exitErr := cmdargs.GetBytesFromContext(ctx, 1)
	if exitErr != nil {
		return exitErr
	}
	return update(ctx, func(t mpt.TrieMut) error {
		old, err := t.Remove(args[0])
		if err == nil && old == nil {
			err = errKeyNotFound
		}
		return err
	})
}

func update(ctx *cli.Context, f func(mpt.TrieMut) error) error {
	return withState(ctx, func(s *state) error {
		t, err := s.mutable()
		if err != nil {
			return err
		}
		if err := f(t); err != nil {
			return err
		}
		if err := s.commit(t.Root()); err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, t.Root().StringBE())
		return nil
	})
}

func get(ctx *cli.Context) error {
	args, exitErr := cmdargs.GetBytesFromContext(ctx, 1)
	if exitErr != nil {
		return exitErr
	}
	return withState(ctx, func(s *state) error {
		t, err := s.readonly()
		if err != nil {
			return err
		}
		v, err := t.Get(args[0])
		if err != nil {
			return err
		}
		if v == nil {
			return errKeyNotFound
		}
		fmt.Fprintln(ctx.App.Writer, "0x"+hex.EncodeToString(v))
		return nil
	})
}

func printRoot(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	return withState(ctx, func(s *state) error {
		fmt.Fprintln(ctx.App.Writer, s.root.StringBE())
		return nil
	})
}

func dump(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	var start []byte
	if ctx.IsSet("start") {
		var err error
		start, err = cmdargs.ParseBytes(ctx.String("start"))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	return withState(ctx, func(s *state) error {
		t, err := s.readonly()
		if err != nil {
			return err
		}
		it, err := t.Iter()
		if err != nil {
			return err
		}
		if start != nil {
			if err := it.Seek(start); err != nil {
				return err
			}
		}
		for it.Next() {
			fmt.Fprintf(ctx.App.Writer, "0x%s: 0x%s\n", hex.EncodeToString(it.Key()), hex.EncodeToString(it.Value()))
		}
		return it.Err()
	})
}

func prove(ctx *cli.Context) error {
	args, exitErr := cmdargs.GetBytesFromContext(ctx, 1)
	if exitErr != nil {
		return exitErr
	}
	return withState(ctx, func(s *state) error {
		t, err := s.readonly()
		if err != nil {
			return err
		}
		rec := s.cfg.Trie.NewRecorder()
		if _, err := t.GetWith(args[0], rec); err != nil {
			return err
		}
		for _, r := range rec.Drain() {
			fmt.Fprintln(ctx.App.Writer, "0x"+hex.EncodeToString(r.Data))
		}
		return nil
	})
}

func verify(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 2 {
		return cli.NewExitError(errors.New("root and key are required"), 1)
	}
	root, err := cmdargs.ParseRoot(args[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	key, err := cmdargs.ParseBytes(args[1])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	proof := make([][]byte, 0, len(args)-2)
	for _, a := range args[2:] {
		b, err := cmdargs.ParseBytes(a)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		proof = append(proof, b)
	}

	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	factory, err := cfg.Trie.Factory()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	v, err := factory.VerifyProof(root, key, proof)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid proof: %w", err), 1)
	}
	if v == nil {
		fmt.Fprintln(ctx.App.Writer, "key is absent")
		return nil
	}
	fmt.Fprintln(ctx.App.Writer, "0x"+hex.EncodeToString(v))
	return nil
}

func gc(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	return withState(ctx, func(s *state) error {
		n, err := s.db.Sweep()
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "%d nodes removed\n", n)
		return nil
	})
}
