package mpt

import (
	"github.com/nspcc-dev/patricia/pkg/core/hashdb"
	"github.com/nspcc-dev/patricia/pkg/util"
)

type (
	// Trie is a read-only key-value view of an MPT.
	Trie interface {
		Root() util.Uint256
		IsEmpty() bool
		// Get returns value stored by key, nil if there is no such key.
		Get(key []byte) ([]byte, error)
		// GetWith returns value stored by key decoded with q, nil if there
		// is no such key.
		GetWith(key []byte, q Query) (any, error)
		Contains(key []byte) (bool, error)
		Iter() (TrieIterator, error)
	}

	// TrieMut is a mutable MPT. Empty value passed to Insert removes the
	// key. Both Insert and Remove return the previous value.
	TrieMut interface {
		Trie
		Insert(key, value []byte) ([]byte, error)
		Remove(key []byte) ([]byte, error)
	}
)

// TrieDB is a read-only view of the trie with the fixed root.
type TrieDB struct {
	db    hashdb.Reader
	codec NodeCodec
	root  util.Uint256
}

var _ Trie = (*TrieDB)(nil)

// NewTrieDB opens a trie with the given root. The root must be present in
// the db unless it's the empty trie root.
func NewTrieDB(db hashdb.Reader, codec NodeCodec, root util.Uint256) (*TrieDB, error) {
	if root != codec.HashedNullNode() && !db.Contains(root) {
		return nil, &InvalidStateRootError{Root: root}
	}
	return &TrieDB{
		db:    db,
		codec: codec,
		root:  root,
	}, nil
}

// Root returns the trie root hash.
func (t *TrieDB) Root() util.Uint256 {
	return t.root
}

// IsEmpty checks whether the trie has no keys.
func (t *TrieDB) IsEmpty() bool {
	return t.root == t.codec.HashedNullNode()
}

// Codec returns the node codec used by the trie.
func (t *TrieDB) Codec() NodeCodec {
	return t.codec
}

// Get implements Trie interface.
func (t *TrieDB) Get(key []byte) ([]byte, error) {
	return getBytes(t.GetWith(key, BytesQuery{}))
}

// GetWith implements Trie interface.
func (t *TrieDB) GetWith(key []byte, q Query) (any, error) {
	return Lookup{
		DB:    t.db,
		Codec: t.codec,
		Query: q,
		Root:  t.root,
	}.LookUp(key)
}

// Contains implements Trie interface.
func (t *TrieDB) Contains(key []byte) (bool, error) {
	v, err := t.Get(key)
	return v != nil, err
}

// Iter implements Trie interface.
func (t *TrieDB) Iter() (TrieIterator, error) {
	return NewIterator(t.db, t.codec, t.root)
}

// getBytes converts item returned by BytesQuery.
func getBytes(item any, err error) ([]byte, error) {
	if err != nil || item == nil {
		return nil, err
	}
	return item.([]byte), nil
}
