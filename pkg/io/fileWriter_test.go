package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeDirForFile(t *testing.T) {
	t.Run("nested log path", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "logs", "mptool", "mptool.log")
		require.NoError(t, MakeDirForFile(logPath, "logger"))

		info, err := os.Stat(filepath.Dir(logPath))
		require.NoError(t, err)
		require.True(t, info.IsDir())
		require.NoError(t, os.WriteFile(logPath, []byte("ok\n"), 0o644))
	})
	t.Run("existing directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nodes.bolt")
		require.NoError(t, MakeDirForFile(dbPath, "BoltDB"))
		require.NoError(t, MakeDirForFile(dbPath, "BoltDB"))
		_, err := os.Stat(dbPath)
		require.True(t, os.IsNotExist(err))
	})
	t.Run("parent is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "chains")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		err := MakeDirForFile(filepath.Join(file, "mpt.bolt"), "BoltDB")
		require.ErrorContains(t, err, "could not create dir for BoltDB")
	})
}
