package storage

import (
	"bytes"
	"reflect"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbSetup struct {
	name   string
	create func(testing.TB) Store
}

type dbTestFunction func(*testing.T, Store)

func testStoreGetNonExistent(t *testing.T, s Store) {
	key := []byte("sparse")

	_, err := s.Get(key)
	assert.Equal(t, err, ErrKeyNotFound)
}

func pushSeekDataSet(t *testing.T, s Store) []KeyValue {
	// Use the same set of kvs to test Seek with different prefix/start values.
	kvs := []KeyValue{
		{[]byte("10"), []byte("bar")},
		{[]byte("11"), []byte("bara")},
		{[]byte("20"), []byte("barb")},
		{[]byte("21"), []byte("barc")},
		{[]byte("22"), []byte("bard")},
		{[]byte("30"), []byte("bare")},
		{[]byte("31"), []byte("barf")},
	}
	up := NewMemCachedStore(s)
	for _, v := range kvs {
		up.Put(v.Key, v.Value)
	}
	_, err := up.Persist()
	require.NoError(t, err)
	return kvs
}

func testStoreSeek(t *testing.T, s Store) {
	kvs := pushSeekDataSet(t, s)
	check := func(t *testing.T, goodprefix, start []byte, goodkvs []KeyValue, backwards bool) {
		// Seek result expected to be sorted in an ascending (for forwards seeking) or descending (for backwards seeking) way.
		sort.Slice(goodkvs, func(i, j int) bool {
			res := bytes.Compare(goodkvs[i].Key, goodkvs[j].Key)
			if backwards {
				return res > 0
			}
			return res < 0
		})

		rng := SeekRange{
			Prefix:    goodprefix,
			Start:     start,
			Backwards: backwards,
		}
		actual := make([]KeyValue, 0, len(goodkvs))
		s.Seek(rng, func(k, v []byte) bool {
			actual = append(actual, KeyValue{
				Key:   bytes.Clone(k),
				Value: bytes.Clone(v),
			})
			return true
		})
		assert.Equal(t, goodkvs, actual)
	}

	t.Run("non-empty prefix, empty start", func(t *testing.T) {
		t.Run("forwards", func(t *testing.T) {
			check(t, []byte("2"), nil, []KeyValue{kvs[2], kvs[3], kvs[4]}, false)
		})
		t.Run("backwards", func(t *testing.T) {
			check(t, []byte("2"), nil, []KeyValue{kvs[2], kvs[3], kvs[4]}, true)
		})
		t.Run("no matching items", func(t *testing.T) {
			check(t, []byte("0"), nil, []KeyValue{}, false)
		})
	})
	t.Run("non-empty prefix, non-empty start", func(t *testing.T) {
		t.Run("forwards", func(t *testing.T) {
			check(t, []byte("2"), []byte("1"), []KeyValue{kvs[3], kvs[4]}, false)
		})
		t.Run("backwards", func(t *testing.T) {
			check(t, []byte("2"), []byte("1"), []KeyValue{kvs[2], kvs[3]}, true)
		})
	})
	t.Run("empty prefix, empty start", func(t *testing.T) {
		goodkvs := make([]KeyValue, len(kvs))
		copy(goodkvs, kvs)
		check(t, nil, nil, goodkvs, false)
	})
	t.Run("early exit", func(t *testing.T) {
		var count int
		s.Seek(SeekRange{}, func(k, v []byte) bool {
			count++
			return count < 3
		})
		require.Equal(t, 3, count)
	})
}

func testStorePutChangeSet(t *testing.T, s Store) {
	require.NoError(t, s.PutChangeSet(map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}))
	v, err := s.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	// Nil value removes the key.
	require.NoError(t, s.PutChangeSet(map[string][]byte{
		"a": nil,
		"c": []byte("3"),
	}))
	_, err = s.Get([]byte("a"))
	require.ErrorIs(t, err, ErrKeyNotFound)
	for k, exp := range map[string]string{"b": "2", "c": "3"} {
		v, err = s.Get([]byte(k))
		require.NoError(t, err)
		require.Equal(t, []byte(exp), v)
	}
}

func testStoreSeekGC(t *testing.T, s Store) {
	kvs := pushSeekDataSet(t, s)
	err := s.SeekGC(SeekRange{Prefix: []byte("1")}, func(k, v []byte) bool {
		return bytes.Equal(k, kvs[0].Key)
	})
	require.NoError(t, err)
	for i := range kvs {
		_, err = s.Get(kvs[i].Key)
		if i == 1 {
			require.ErrorIs(t, err, ErrKeyNotFound)
		} else {
			require.NoError(t, err)
		}
	}
}

func TestAllDBs(t *testing.T) {
	var DBs = []dbSetup{
		{"BoltDB", newBoltStoreForTesting},
		{"LevelDB", newLevelDBForTesting},
		{"MemCached", newMemCachedStoreForTesting},
		{"Memory", newMemoryStoreForTesting},
	}
	var tests = []dbTestFunction{testStoreGetNonExistent, testStoreSeek,
		testStorePutChangeSet, testStoreSeekGC}
	for _, db := range DBs {
		for _, test := range tests {
			s := db.create(t)
			twrapper := func(t *testing.T) {
				test(t, s)
			}
			fname := runtime.FuncForPC(reflect.ValueOf(test).Pointer()).Name()
			t.Run(db.name+"/"+fname, twrapper)
			require.NoError(t, s.Close())
		}
	}
}
