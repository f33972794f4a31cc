package mpt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/nspcc-dev/patricia/pkg/core/hashdb"
	"github.com/nspcc-dev/patricia/pkg/util"
)

// fatEntry is the value stored by Fat tries.
type fatEntry struct {
	Key   []byte
	Value []byte
}

func encodeFatValue(key, value []byte) []byte {
	b, err := rlp.EncodeToBytes(fatEntry{Key: key, Value: value})
	if err != nil {
		panic(fmt.Errorf("can't encode fat value: %w", err))
	}
	return b
}

func decodeFatValue(data []byte) (key, value []byte, err error) {
	var e fatEntry
	if err := rlp.DecodeBytes(data, &e); err != nil {
		return nil, nil, fmt.Errorf("invalid fat value: %w", err)
	}
	return e.Key, e.Value, nil
}

// fatQuery decodes Fat value before passing it to the wrapped Query.
type fatQuery struct {
	Query
}

func (q fatQuery) Decode(data []byte) (any, error) {
	_, v, err := decodeFatValue(data)
	if err != nil {
		return nil, err
	}
	return q.Query.Decode(v)
}

// FatDB is a read-only secure trie additionally keeping raw keys along with
// values, so they can be retrieved with iteration.
type FatDB struct {
	raw *TrieDB
}

var _ Trie = (*FatDB)(nil)

// NewFatDB opens a fat trie with the given root.
func NewFatDB(db hashdb.Reader, codec NodeCodec, root util.Uint256) (*FatDB, error) {
	raw, err := NewTrieDB(db, codec, root)
	if err != nil {
		return nil, err
	}
	return &FatDB{raw: raw}, nil
}

// Root implements Trie interface.
func (t *FatDB) Root() util.Uint256 { return t.raw.Root() }

// IsEmpty implements Trie interface.
func (t *FatDB) IsEmpty() bool { return t.raw.IsEmpty() }

// Get implements Trie interface.
func (t *FatDB) Get(key []byte) ([]byte, error) {
	return getBytes(t.GetWith(key, BytesQuery{}))
}

// GetWith implements Trie interface.
func (t *FatDB) GetWith(key []byte, q Query) (any, error) {
	return t.raw.GetWith(hashKey(t.raw.codec, key), fatQuery{q})
}

// Contains implements Trie interface.
func (t *FatDB) Contains(key []byte) (bool, error) {
	return t.raw.Contains(hashKey(t.raw.codec, key))
}

// Iter implements Trie interface. Iterator yields raw keys, but the order
// (and Seek) is defined by hashed ones.
func (t *FatDB) Iter() (TrieIterator, error) {
	return newFatIterator(t.raw.codec, t.raw)
}

// FatDBMut is a mutable fat trie.
type FatDBMut struct {
	raw *TrieDBMut
}

var _ TrieMut = (*FatDBMut)(nil)

// NewFatDBMut creates an empty fat trie.
func NewFatDBMut(db hashdb.HashDB, codec NodeCodec) *FatDBMut {
	return &FatDBMut{raw: NewTrieDBMut(db, codec)}
}

// FatDBMutFromExisting opens a mutable fat trie with the given root.
func FatDBMutFromExisting(db hashdb.HashDB, codec NodeCodec, root util.Uint256) (*FatDBMut, error) {
	raw, err := TrieDBMutFromExisting(db, codec, root)
	if err != nil {
		return nil, err
	}
	return &FatDBMut{raw: raw}, nil
}

// Root implements Trie interface.
func (t *FatDBMut) Root() util.Uint256 { return t.raw.Root() }

// IsEmpty implements Trie interface.
func (t *FatDBMut) IsEmpty() bool { return t.raw.IsEmpty() }

// Get implements Trie interface.
func (t *FatDBMut) Get(key []byte) ([]byte, error) {
	return getBytes(t.GetWith(key, BytesQuery{}))
}

// GetWith implements Trie interface.
func (t *FatDBMut) GetWith(key []byte, q Query) (any, error) {
	return t.raw.GetWith(hashKey(t.raw.codec, key), fatQuery{q})
}

// Contains implements Trie interface.
func (t *FatDBMut) Contains(key []byte) (bool, error) {
	return t.raw.Contains(hashKey(t.raw.codec, key))
}

// Iter implements Trie interface.
func (t *FatDBMut) Iter() (TrieIterator, error) {
	return newFatIterator(t.raw.codec, t.raw)
}

// Insert implements TrieMut interface.
func (t *FatDBMut) Insert(key, value []byte) ([]byte, error) {
	if len(value) == 0 {
		return t.Remove(key)
	}
	old, err := t.raw.Insert(hashKey(t.raw.codec, key), encodeFatValue(key, value))
	return fatOldValue(old, err)
}

// Remove implements TrieMut interface.
func (t *FatDBMut) Remove(key []byte) ([]byte, error) {
	return fatOldValue(t.raw.Remove(hashKey(t.raw.codec, key)))
}

func fatOldValue(old []byte, err error) ([]byte, error) {
	if err != nil || old == nil {
		return nil, err
	}
	_, v, err := decodeFatValue(old)
	return v, err
}

// fatIterator returns raw keys and values of the fat trie.
type fatIterator struct {
	TrieIterator
	codec NodeCodec
	key   []byte
	value []byte
	err   error
}

func newFatIterator(codec NodeCodec, raw Trie) (TrieIterator, error) {
	it, err := raw.Iter()
	if err != nil {
		return nil, err
	}
	return &fatIterator{TrieIterator: it, codec: codec}, nil
}

func (it *fatIterator) Next() bool {
	it.key, it.value = nil, nil
	if it.err != nil || !it.TrieIterator.Next() {
		return false
	}
	it.key, it.value, it.err = decodeFatValue(it.TrieIterator.Value())
	return it.err == nil
}

func (it *fatIterator) Key() []byte   { return it.key }
func (it *fatIterator) Value() []byte { return it.value }

func (it *fatIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.TrieIterator.Err()
}

// Seek positions the iterator after the hashed key.
func (it *fatIterator) Seek(key []byte) error {
	it.key, it.value, it.err = nil, nil, nil
	return it.TrieIterator.Seek(hashKey(it.codec, key))
}
