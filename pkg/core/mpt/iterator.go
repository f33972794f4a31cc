package mpt

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/patricia/pkg/core/hashdb"
	"github.com/nspcc-dev/patricia/pkg/util"
)

// TrieIterator iterates over trie key-value pairs in ascending key order.
// It's forward-only, Seek repositions it so that the following Next calls
// return keys strictly greater than the given one.
type TrieIterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Err() error
	Seek(key []byte) error
}

// Crumb statuses, non-negative values are the index of the next Branch child
// to visit.
const (
	statusEntering = -1
	statusExiting  = childrenCount
)

// crumb is a single node on the path from the root to the current position.
type crumb struct {
	node   Node
	status int
	// prefix is the path to the node in nibbles.
	prefix []byte
}

// Iterator is a depth-first trie iterator.
type Iterator struct {
	db    hashdb.Reader
	codec NodeCodec
	root  util.Uint256

	trail []crumb
	key   []byte
	value []byte
	err   error
}

var _ TrieIterator = (*Iterator)(nil)

// NewIterator creates an iterator positioned before the first key of the
// trie with the given root.
func NewIterator(db hashdb.Reader, codec NodeCodec, root util.Uint256) (*Iterator, error) {
	it := &Iterator{
		db:    db,
		codec: codec,
		root:  root,
	}
	r, err := it.rootNode()
	if err != nil {
		return nil, err
	}
	it.trail = append(it.trail, crumb{node: r, status: statusEntering})
	return it, nil
}

func (it *Iterator) rootNode() (Node, error) {
	if it.root == it.codec.HashedNullNode() {
		return EmptyNode{}, nil
	}
	n, _, err := fetchNode(it.db, it.codec, it.root)
	return n, err
}

// Next advances the iterator to the next key. It returns false when there
// are no more keys or an error occurred, see Err.
func (it *Iterator) Next() bool {
	for len(it.trail) > 0 {
		top := &it.trail[len(it.trail)-1]
		switch n := top.node.(type) {
		case *LeafNode:
			if top.status == statusEntering {
				top.status = statusExiting
				return it.emit(concatNibbles(top.prefix, n.Key), n.Value)
			}
		case *ExtensionNode:
			if top.status == statusEntering {
				top.status = statusExiting
				if !it.push(n.Child, concatNibbles(top.prefix, n.Key)) {
					return false
				}
				continue
			}
		case *BranchNode:
			if top.status == statusEntering {
				top.status = 0
				if n.Value != nil {
					return it.emit(top.prefix, n.Value)
				}
			}
			for top.status < childrenCount && n.Children[top.status] == nil {
				top.status++
			}
			if top.status < childrenCount {
				i := top.status
				top.status++
				if !it.push(n.Children[i], concatNibbles(top.prefix, []byte{byte(i)})) {
					return false
				}
				continue
			}
		}
		it.trail = it.trail[:len(it.trail)-1]
	}
	it.key, it.value = nil, nil
	return false
}

// push resolves the child and puts it on top of the trail.
func (it *Iterator) push(h NodeHandle, prefix []byte) bool {
	n, err := resolveHandle(it.db, it.codec, h)
	if err != nil {
		it.fail(err)
		return false
	}
	it.trail = append(it.trail, crumb{node: n, status: statusEntering, prefix: prefix})
	return true
}

func (it *Iterator) emit(path, value []byte) bool {
	if len(path)%2 != 0 {
		it.fail(fmt.Errorf("%w: value at odd nibble path %x", ErrInvalidNode, path))
		return false
	}
	it.key = FromNibbles(path)
	it.value = value
	return true
}

func (it *Iterator) fail(err error) {
	it.err = err
	it.trail = nil
	it.key, it.value = nil, nil
}

// Key returns the current key.
func (it *Iterator) Key() []byte {
	return it.key
}

// Value returns the current value. It must not be modified.
func (it *Iterator) Value() []byte {
	return it.value
}

// Err returns the error stopped the iteration if any.
func (it *Iterator) Err() error {
	return it.err
}

// Seek positions iterator so that the following Next returns the first key
// strictly greater than key.
func (it *Iterator) Seek(key []byte) error {
	it.err = nil
	it.trail = it.trail[:0]
	it.key, it.value = nil, nil

	n, err := it.rootNode()
	if err != nil {
		it.fail(err)
		return err
	}
	var (
		path   = ToNibbles(key)
		prefix []byte
	)
	for {
		switch curr := n.(type) {
		case EmptyNode:
			return nil
		case *LeafNode:
			if bytes.Compare(curr.Key, path) > 0 {
				it.trail = append(it.trail, crumb{node: curr, status: statusEntering, prefix: prefix})
			}
			return nil
		case *ExtensionNode:
			if !bytes.HasPrefix(path, curr.Key) {
				if bytes.Compare(curr.Key, path) > 0 {
					it.trail = append(it.trail, crumb{node: curr, status: statusEntering, prefix: prefix})
				}
				return nil
			}
			prefix = concatNibbles(prefix, curr.Key)
			path = path[len(curr.Key):]
			n, err = resolveHandle(it.db, it.codec, curr.Child)
		case *BranchNode:
			if len(path) == 0 {
				// Own value is equal to key, all children are greater.
				it.trail = append(it.trail, crumb{node: curr, status: 0, prefix: prefix})
				return nil
			}
			i := path[0]
			it.trail = append(it.trail, crumb{node: curr, status: int(i) + 1, prefix: prefix})
			if curr.Children[i] == nil {
				return nil
			}
			prefix = concatNibbles(prefix, []byte{i})
			path = path[1:]
			n, err = resolveHandle(it.db, it.codec, curr.Children[i])
		}
		if err != nil {
			it.fail(err)
			return err
		}
	}
}
