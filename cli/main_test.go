package main

import (
	"testing"

	"github.com/nspcc-dev/patricia/pkg/config"
)

func TestCLIVersion(t *testing.T) {
	old := config.Version
	config.Version = "0.1.0-test"
	t.Cleanup(func() { config.Version = old })

	e := newExecutor(t)
	e.Run(t, "mptool", "--version")
	e.checkNextLine(t, "^mptool$")
	e.checkNextLine(t, "^Version: 0\\.1\\.0-test$")
	e.checkNextLine(t, "^GoVersion: ")
	e.checkEOF(t)
}
