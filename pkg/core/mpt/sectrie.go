package mpt

import (
	"github.com/nspcc-dev/patricia/pkg/core/hashdb"
	"github.com/nspcc-dev/patricia/pkg/util"
)

// hashKey returns the key used by Secure and Fat tries internally.
func hashKey(codec NodeCodec, key []byte) []byte {
	h := codec.Hash(key)
	return h[:]
}

// SecTrieDB is a read-only trie hashing all keys before use. Iteration yields
// hashed keys.
type SecTrieDB struct {
	raw *TrieDB
}

var _ Trie = (*SecTrieDB)(nil)

// NewSecTrieDB opens a secure trie with the given root.
func NewSecTrieDB(db hashdb.Reader, codec NodeCodec, root util.Uint256) (*SecTrieDB, error) {
	raw, err := NewTrieDB(db, codec, root)
	if err != nil {
		return nil, err
	}
	return &SecTrieDB{raw: raw}, nil
}

// Raw returns the underlying trie operating on hashed keys.
func (t *SecTrieDB) Raw() *TrieDB { return t.raw }

// Root implements Trie interface.
func (t *SecTrieDB) Root() util.Uint256 { return t.raw.Root() }

// IsEmpty implements Trie interface.
func (t *SecTrieDB) IsEmpty() bool { return t.raw.IsEmpty() }

// Get implements Trie interface.
func (t *SecTrieDB) Get(key []byte) ([]byte, error) {
	return t.raw.Get(hashKey(t.raw.codec, key))
}

// GetWith implements Trie interface.
func (t *SecTrieDB) GetWith(key []byte, q Query) (any, error) {
	return t.raw.GetWith(hashKey(t.raw.codec, key), q)
}

// Contains implements Trie interface.
func (t *SecTrieDB) Contains(key []byte) (bool, error) {
	return t.raw.Contains(hashKey(t.raw.codec, key))
}

// Iter implements Trie interface.
func (t *SecTrieDB) Iter() (TrieIterator, error) { return t.raw.Iter() }

// SecTrieDBMut is a mutable trie hashing all keys before use.
type SecTrieDBMut struct {
	raw *TrieDBMut
}

var _ TrieMut = (*SecTrieDBMut)(nil)

// NewSecTrieDBMut creates an empty secure trie.
func NewSecTrieDBMut(db hashdb.HashDB, codec NodeCodec) *SecTrieDBMut {
	return &SecTrieDBMut{raw: NewTrieDBMut(db, codec)}
}

// SecTrieDBMutFromExisting opens a mutable secure trie with the given root.
func SecTrieDBMutFromExisting(db hashdb.HashDB, codec NodeCodec, root util.Uint256) (*SecTrieDBMut, error) {
	raw, err := TrieDBMutFromExisting(db, codec, root)
	if err != nil {
		return nil, err
	}
	return &SecTrieDBMut{raw: raw}, nil
}

// Raw returns the underlying trie operating on hashed keys.
func (t *SecTrieDBMut) Raw() *TrieDBMut { return t.raw }

// Root implements Trie interface.
func (t *SecTrieDBMut) Root() util.Uint256 { return t.raw.Root() }

// IsEmpty implements Trie interface.
func (t *SecTrieDBMut) IsEmpty() bool { return t.raw.IsEmpty() }

// Get implements Trie interface.
func (t *SecTrieDBMut) Get(key []byte) ([]byte, error) {
	return t.raw.Get(hashKey(t.raw.codec, key))
}

// GetWith implements Trie interface.
func (t *SecTrieDBMut) GetWith(key []byte, q Query) (any, error) {
	return t.raw.GetWith(hashKey(t.raw.codec, key), q)
}

// Contains implements Trie interface.
func (t *SecTrieDBMut) Contains(key []byte) (bool, error) {
	return t.raw.Contains(hashKey(t.raw.codec, key))
}

// Iter implements Trie interface.
func (t *SecTrieDBMut) Iter() (TrieIterator, error) { return t.raw.Iter() }

// Insert implements TrieMut interface.
func (t *SecTrieDBMut) Insert(key, value []byte) ([]byte, error) {
	return t.raw.Insert(hashKey(t.raw.codec, key), value)
}

// Remove implements TrieMut interface.
func (t *SecTrieDBMut) Remove(key []byte) ([]byte, error) {
	return t.raw.Remove(hashKey(t.raw.codec, key))
}
