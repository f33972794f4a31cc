package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nspcc-dev/patricia/cli/app"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

// executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type executor struct {
	// CLI is a cli application to test.
	CLI *cli.App
	// ConfigFile is the configuration file path with the database in
	// the test temporary directory.
	ConfigFile string
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
}

func newExecutor(t *testing.T) *executor {
	return newExecutorWithConfig(t, "")
}

// newExecutorWithConfig creates executor using leveldb in a temporary
// directory, trie settings are appended to the configuration.
func newExecutorWithConfig(t *testing.T, trieCfg string) *executor {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mptool.yml")
	cfg := fmt.Sprintf(`DBConfiguration:
  Type: leveldb
  LevelDBOptions:
    DataDirectoryPath: %s
LogLevel: error
%s`, filepath.Join(dir, "db"), trieCfg)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	e := &executor{
		CLI:        app.New(),
		ConfigFile: cfgPath,
		Out:        bytes.NewBuffer(nil),
		Err:        bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err
	return e
}

func (e *executor) getNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (e *executor) checkNextLine(t *testing.T, expected string) {
	line := e.getNextLine(t)
	e.checkLine(t, line, expected)
}

func (e *executor) checkLine(t *testing.T, line, expected string) {
	require.Regexp(t, expected, line)
}

func (e *executor) checkEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 1)
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

// RunTrie runs trie command with the executor configuration file.
func (e *executor) RunTrie(t *testing.T, cmd string, args ...string) {
	e.Run(t, e.trieArgs(cmd, args)...)
}

// RunTrieWithError runs trie command with the executor configuration file
// and checks that it fails.
func (e *executor) RunTrieWithError(t *testing.T, cmd string, args ...string) {
	e.RunWithError(t, e.trieArgs(cmd, args)...)
}

func (e *executor) trieArgs(cmd string, args []string) []string {
	return append([]string{"mptool", cmd, "--config-file", e.ConfigFile}, args...)
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	return e.CLI.Run(args)
}
