package mpt

import (
	"github.com/nspcc-dev/patricia/pkg/core/hashdb"
	"github.com/nspcc-dev/patricia/pkg/util"
)

// GenerateProof returns nodes visited while looking key up in t, from the
// root down. They're enough to prove key value (or its absence) with
// VerifyProof. Keys are passed to t as is, so for Secure and Fat tries it's
// the raw key that is used here.
func GenerateProof(t Trie, key []byte) ([][]byte, error) {
	rec := NewRecorder()
	if _, err := t.GetWith(key, rec); err != nil {
		return nil, err
	}
	nodes := rec.Drain()
	proof := make([][]byte, len(nodes))
	for i := range nodes {
		proof[i] = nodes[i].Data
	}
	return proof, nil
}

// VerifyProof checks proof against the root and returns the value stored by
// key (as it's stored in the underlying trie), nil value means the key is
// proven to be absent. Proof not allowing to reach the key results in
// ErrIncompleteDatabase or ErrInvalidStateRoot error. For Secure and Fat
// tries key must be hashed by the caller.
func VerifyProof(codec NodeCodec, root util.Uint256, key []byte, proof [][]byte) ([]byte, error) {
	db := hashdb.NewMemoryDB(codec.Hasher())
	for i := range proof {
		db.Insert(proof[i])
	}
	tr, err := NewTrieDB(db, codec, root)
	if err != nil {
		return nil, err
	}
	return tr.Get(key)
}

// VerifyProof verifies proof generated with GenerateProof for a trie of the
// factory variant. Unlike the package-level VerifyProof it takes the same key
// GenerateProof was given and returns the value as the trie's Get does.
func (f *Factory) VerifyProof(root util.Uint256, key []byte, proof [][]byte) ([]byte, error) {
	if f.spec != Generic {
		key = hashKey(f.codec, key)
	}
	v, err := VerifyProof(f.codec, root, key, proof)
	if err != nil || v == nil || f.spec != Fat {
		return v, err
	}
	_, v, err = decodeFatValue(v)
	return v, err
}
