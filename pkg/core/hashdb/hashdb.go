/*
Package hashdb provides content-addressed, reference-counted node storage
used by the trie. Every node is addressed by the hash of its contents, inserts
increment the node's reference counter and removals decrement it, a node is
only physically dropped when its counter reaches zero.
*/
package hashdb

import (
	"errors"

	"github.com/nspcc-dev/patricia/pkg/util"
)

// ErrNotFound is returned when the requested node is not stored in the DB
// (or all of its references were already released).
var ErrNotFound = errors.New("node not found")

type (
	// Reader is the read-only part of the HashDB.
	Reader interface {
		// Get returns node data stored under the given hash. Returned slice
		// must not be modified.
		Get(h util.Uint256) ([]byte, error)
		Contains(h util.Uint256) bool
	}

	// HashDB is a content-addressed reference-counted node store.
	HashDB interface {
		Reader
		// Insert stores data under its hash incrementing reference counter
		// and returns the hash.
		Insert(data []byte) util.Uint256
		// Emplace is the same as Insert, but with a precomputed hash.
		Emplace(h util.Uint256, data []byte)
		// Remove decrements reference counter for the given hash.
		Remove(h util.Uint256)
	}
)
