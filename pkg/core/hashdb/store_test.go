package hashdb

import (
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/patricia/internal/random"
	"github.com/nspcc-dev/patricia/pkg/core/storage"
	"github.com/nspcc-dev/patricia/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/patricia/pkg/crypto/hash"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStoreDB(t *testing.T, cacheSize int) (*StoreDB, *storage.MemoryStore) {
	ps := storage.NewMemoryStore()
	db, err := NewStoreDB(ps, hash.Keccak256, cacheSize, zaptest.NewLogger(t))
	require.NoError(t, err)
	return db, ps
}

func TestStoreDB_InsertGetRemove(t *testing.T) {
	for _, size := range []int{0, 16} {
		db, ps := newTestStoreDB(t, size)

		data := random.Bytes(40)
		h := db.Insert(data)
		require.Equal(t, hash.Keccak(data), h)
		v, err := db.Get(h)
		require.NoError(t, err)
		require.Equal(t, data, v)
		require.Equal(t, 1, db.Pending())

		// Nothing reaches the lower store before commit.
		_, err = ps.Get(makeStorageKey(h))
		require.ErrorIs(t, err, storage.ErrKeyNotFound)

		db.Insert(data)
		refs, err := db.Refs(h)
		require.NoError(t, err)
		require.EqualValues(t, 2, refs)

		db.Remove(h)
		db.Remove(h)
		require.False(t, db.Contains(h))
		_, err = db.Get(h)
		require.ErrorIs(t, err, ErrNotFound)

		n, err := db.Commit()
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Equal(t, 0, db.Pending())

		// Unreferenced node is kept until sweep.
		raw, err := ps.Get(makeStorageKey(h))
		require.NoError(t, err)
		stored, refs, err := decodeEntry(raw)
		require.NoError(t, err)
		require.Equal(t, data, stored)
		require.EqualValues(t, 0, refs)
	}
}

func TestStoreDB_Sweep(t *testing.T) {
	db, ps := newTestStoreDB(t, 16)

	live := db.Insert([]byte("live node"))
	dead := db.Insert([]byte("dead node"))
	db.Remove(dead)

	swept := testutil.ToFloat64(nodesSwept)
	n, err := db.Sweep()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, swept+1, testutil.ToFloat64(nodesSwept))

	_, err = ps.Get(makeStorageKey(dead))
	require.ErrorIs(t, err, storage.ErrKeyNotFound)
	_, err = ps.Get(makeStorageKey(live))
	require.NoError(t, err)
	require.True(t, db.Contains(live))
}

func TestStoreDB_Metrics(t *testing.T) {
	db, _ := newTestStoreDB(t, 16)

	inserted := testutil.ToFloat64(nodesInserted)
	released := testutil.ToFloat64(nodesReleased)
	committed := testutil.ToFloat64(nodesCommitted)
	hits := testutil.ToFloat64(cacheHits)

	h := db.Insert([]byte{1, 2, 3})
	db.Insert([]byte{4, 5, 6})
	db.Remove(h)
	_, err := db.Commit()
	require.NoError(t, err)

	_, err = db.Get(hash.Keccak([]byte{4, 5, 6}))
	require.NoError(t, err)
	_, err = db.Get(hash.Keccak([]byte{4, 5, 6}))
	require.NoError(t, err)

	require.Equal(t, inserted+2, testutil.ToFloat64(nodesInserted))
	require.Equal(t, released+1, testutil.ToFloat64(nodesReleased))
	require.Equal(t, committed+2, testutil.ToFloat64(nodesCommitted))
	require.Equal(t, hits+1, testutil.ToFloat64(cacheHits))
}

func TestStoreDB_Reopen(t *testing.T) {
	check := func(t *testing.T, open func() storage.Store) {
		s := open()
		db, err := NewStoreDB(s, hash.Keccak256, 0, nil)
		require.NoError(t, err)
		data := []byte("persistent node")
		h := db.Insert(data)
		_, err = db.Commit()
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db, err = NewStoreDB(open(), hash.Keccak256, 0, nil)
		require.NoError(t, err)
		v, err := db.Get(h)
		require.NoError(t, err)
		require.Equal(t, data, v)
		require.NoError(t, db.Close())
	}
	t.Run("leveldb", func(t *testing.T) {
		dir := t.TempDir()
		check(t, func() storage.Store {
			s, err := storage.NewStore(dbconfig.DBConfiguration{
				Type:           storage.LevelDB,
				LevelDBOptions: dbconfig.LevelDBOptions{DataDirectoryPath: dir},
			})
			require.NoError(t, err)
			return s
		})
	})
	t.Run("boltdb", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "nodes.bolt")
		check(t, func() storage.Store {
			s, err := storage.NewStore(dbconfig.DBConfiguration{
				Type:          storage.BoltDB,
				BoltDBOptions: dbconfig.BoltDBOptions{FilePath: file},
			})
			require.NoError(t, err)
			return s
		})
	})
}

func TestDecodeEntry(t *testing.T) {
	_, _, err := decodeEntry([]byte{1, 2})
	require.Error(t, err)

	data, refs, err := decodeEntry(encodeEntry([]byte{7}, -1))
	require.NoError(t, err)
	require.Equal(t, []byte{7}, data)
	require.EqualValues(t, -1, refs)
}
