package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/patricia/cli/trie"
	"github.com/nspcc-dev/patricia/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "mptool\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates an mptool instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "mptool"
	ctl.Version = config.Version
	ctl.Usage = "Merkle Patricia Trie database tool"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, trie.NewCommands()...)
	return ctl
}
