package storage

import (
	"testing"

	"github.com/nspcc-dev/patricia/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/require"
)

func newLevelDBForTesting(t testing.TB) Store {
	ldbDir := t.TempDir()
	dbConfig := dbconfig.DBConfiguration{
		Type: LevelDB,
		LevelDBOptions: dbconfig.LevelDBOptions{
			DataDirectoryPath: ldbDir,
		},
	}
	newLevelStore, err := NewLevelDBStore(dbConfig.LevelDBOptions)
	require.Nil(t, err, "NewLevelDBStore error")
	return newLevelStore
}

func TestROLevelDB(t *testing.T) {
	ldbDir := t.TempDir()
	cfg := dbconfig.LevelDBOptions{
		DataDirectoryPath: ldbDir,
		ReadOnly:          true,
	}

	// If DB doesn't exist, then error should be returned.
	_, err := NewLevelDBStore(cfg)
	require.Error(t, err)

	// Create the DB and try to open it in RO mode.
	cfg.ReadOnly = false
	store, err := NewLevelDBStore(cfg)
	require.NoError(t, err)
	require.NoError(t, store.PutChangeSet(map[string][]byte{"key": []byte("value")}))
	require.NoError(t, store.Close())
	cfg.ReadOnly = true

	store, err = NewLevelDBStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	v, err := store.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), v)
	require.Error(t, store.PutChangeSet(map[string][]byte{"key": []byte("other")}))
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(dbconfig.DBConfiguration{Type: InMemoryDB})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(dbconfig.DBConfiguration{
		Type:           LevelDB,
		LevelDBOptions: dbconfig.LevelDBOptions{DataDirectoryPath: t.TempDir()},
	})
	require.NoError(t, err)
	require.IsType(t, &LevelDBStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore(dbconfig.DBConfiguration{Type: "redis"})
	require.Error(t, err)
}
