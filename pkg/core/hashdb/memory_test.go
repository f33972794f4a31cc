package hashdb

import (
	"testing"

	"github.com/nspcc-dev/patricia/pkg/crypto/hash"
	"github.com/stretchr/testify/require"
)

func TestMemoryDB(t *testing.T) {
	db := NewMemoryDB(hash.Keccak256)
	require.Equal(t, hash.Keccak256, db.Hasher())

	data := []byte("node")
	h := db.Insert(data)
	require.Equal(t, hash.Keccak(data), h)
	require.True(t, db.Contains(h))
	v, err := db.Get(h)
	require.NoError(t, err)
	require.Equal(t, data, v)

	// Stored data is a copy.
	data[0] = 'N'
	v, err = db.Get(h)
	require.NoError(t, err)
	require.Equal(t, []byte("node"), v)

	t.Run("refcount", func(t *testing.T) {
		db.Insert([]byte("node"))
		require.EqualValues(t, 2, db.Refs(h))
		db.Remove(h)
		require.True(t, db.Contains(h))
		db.Remove(h)
		require.False(t, db.Contains(h))
		_, err := db.Get(h)
		require.ErrorIs(t, err, ErrNotFound)
		require.Equal(t, 0, db.Len())
		require.Empty(t, db.Keys())
	})
	t.Run("remove before insert", func(t *testing.T) {
		other := []byte("other")
		oh := hash.Keccak(other)
		db.Remove(oh)
		require.EqualValues(t, -1, db.Refs(oh))
		require.False(t, db.Contains(oh))

		db.Emplace(oh, other)
		require.EqualValues(t, 0, db.Refs(oh))
		require.False(t, db.Contains(oh))
		require.Empty(t, db.Keys())

		db.Remove(oh)
		db.Purge()
		require.Empty(t, db.Keys())
	})
}
