package mpt

import (
	"bytes"

	"github.com/nspcc-dev/patricia/pkg/core/hashdb"
	"github.com/nspcc-dev/patricia/pkg/util"
)

// TrieDBMut is a mutable trie. Every Insert and Remove either applies
// completely (new nodes are inserted, replaced ones are released and the
// root is updated) or leaves both the db and the root intact. It must not be
// used concurrently.
type TrieDBMut struct {
	db    hashdb.HashDB
	codec NodeCodec
	root  util.Uint256
}

var _ TrieMut = (*TrieDBMut)(nil)

// changeSet contains db modifications made by a single operation.
type changeSet struct {
	inserts  []pendingNode
	releases []util.Uint256
}

type pendingNode struct {
	hash util.Uint256
	data []byte
	node Node
}

// NewTrieDBMut creates an empty trie.
func NewTrieDBMut(db hashdb.HashDB, codec NodeCodec) *TrieDBMut {
	return &TrieDBMut{
		db:    db,
		codec: codec,
		root:  codec.HashedNullNode(),
	}
}

// TrieDBMutFromExisting opens a mutable trie with the given root, the root
// must be present in the db unless it's the empty trie root.
func TrieDBMutFromExisting(db hashdb.HashDB, codec NodeCodec, root util.Uint256) (*TrieDBMut, error) {
	if root != codec.HashedNullNode() && !db.Contains(root) {
		return nil, &InvalidStateRootError{Root: root}
	}
	return &TrieDBMut{
		db:    db,
		codec: codec,
		root:  root,
	}, nil
}

// Root returns the current trie root hash.
func (t *TrieDBMut) Root() util.Uint256 {
	return t.root
}

// IsEmpty checks whether the trie has no keys.
func (t *TrieDBMut) IsEmpty() bool {
	return t.root == t.codec.HashedNullNode()
}

// Codec returns the node codec used by the trie.
func (t *TrieDBMut) Codec() NodeCodec {
	return t.codec
}

// Get implements Trie interface.
func (t *TrieDBMut) Get(key []byte) ([]byte, error) {
	return getBytes(t.GetWith(key, BytesQuery{}))
}

// GetWith implements Trie interface.
func (t *TrieDBMut) GetWith(key []byte, q Query) (any, error) {
	return Lookup{
		DB:    t.db,
		Codec: t.codec,
		Query: q,
		Root:  t.root,
	}.LookUp(key)
}

// Contains implements Trie interface.
func (t *TrieDBMut) Contains(key []byte) (bool, error) {
	v, err := t.Get(key)
	return v != nil, err
}

// Iter implements Trie interface.
func (t *TrieDBMut) Iter() (TrieIterator, error) {
	return NewIterator(t.db, t.codec, t.root)
}

// Insert puts key-value pair into the trie and returns the previous value.
// Empty value removes the key.
func (t *TrieDBMut) Insert(key, value []byte) ([]byte, error) {
	if len(value) == 0 {
		return t.Remove(key)
	}
	root, err := t.rootNode()
	if err != nil {
		return nil, err
	}
	cs := new(changeSet)
	r, old, changed, err := t.insertIntoNode(root, ToNibbles(key), bytes.Clone(value), cs)
	if err != nil {
		return nil, err
	}
	if changed {
		t.apply(r, cs)
	}
	return bytes.Clone(old), nil
}

// Remove deletes key from the trie and returns its value.
func (t *TrieDBMut) Remove(key []byte) ([]byte, error) {
	root, err := t.rootNode()
	if err != nil {
		return nil, err
	}
	cs := new(changeSet)
	r, old, changed, err := t.removeFromNode(root, ToNibbles(key), cs)
	if err != nil {
		return nil, err
	}
	if changed {
		t.apply(r, cs)
	}
	return bytes.Clone(old), nil
}

func (t *TrieDBMut) rootNode() (Node, error) {
	if t.IsEmpty() {
		return EmptyNode{}, nil
	}
	n, _, err := fetchNode(t.db, t.codec, t.root)
	return n, err
}

func (t *TrieDBMut) resolve(h NodeHandle) (Node, error) {
	return resolveHandle(t.db, t.codec, h)
}

// resolvePending is the same as resolve, but it also knows about the nodes
// not yet written to the db.
func (t *TrieDBMut) resolvePending(h NodeHandle, cs *changeSet) (Node, error) {
	if hh, ok := h.(HashHandle); ok {
		for i := len(cs.inserts) - 1; i >= 0; i-- {
			if cs.inserts[i].hash == hh.Hash {
				return cs.inserts[i].node, nil
			}
		}
	}
	return t.resolve(h)
}

// apply writes the change set and updates the root. Root node is always
// stored separately (except for the empty one).
func (t *TrieDBMut) apply(root Node, cs *changeSet) {
	newRoot := t.codec.HashedNullNode()
	if !isEmpty(root) {
		data := t.codec.Encode(root)
		newRoot = t.codec.Hash(data)
		cs.inserts = append(cs.inserts, pendingNode{hash: newRoot, data: data})
	}
	if !t.IsEmpty() {
		cs.releases = append(cs.releases, t.root)
	}
	for _, n := range cs.inserts {
		t.db.Emplace(n.hash, n.data)
	}
	for _, h := range cs.releases {
		t.db.Remove(h)
	}
	t.root = newRoot
}

// handle encodes n and returns a handle to reference it from its parent.
// Nodes not fitting into the inline threshold are scheduled for insertion.
func (t *TrieDBMut) handle(n Node, cs *changeSet) NodeHandle {
	if isEmpty(n) {
		return nil
	}
	data := t.codec.Encode(n)
	if t.codec.IsInline(data) {
		return InlineHandle{Node: n}
	}
	h := t.codec.Hash(data)
	cs.inserts = append(cs.inserts, pendingNode{hash: h, data: data, node: n})
	return HashHandle{Hash: h}
}

// release schedules the node referenced by h for removal if it's stored
// separately.
func (cs *changeSet) release(h NodeHandle) {
	if hh, ok := h.(HashHandle); ok {
		cs.releases = append(cs.releases, hh.Hash)
	}
}

// insertIntoNode puts value to the subtrie rooted at curr. It returns the
// new subtrie root, the previous value, whether anything has changed and
// error if any.
func (t *TrieDBMut) insertIntoNode(curr Node, path, value []byte, cs *changeSet) (Node, []byte, bool, error) {
	switch n := curr.(type) {
	case EmptyNode:
		return &LeafNode{Key: path, Value: value}, nil, true, nil
	case *LeafNode:
		return t.insertIntoLeaf(n, path, value, cs)
	case *ExtensionNode:
		return t.insertIntoExtension(n, path, value, cs)
	case *BranchNode:
		return t.insertIntoBranch(n, path, value, cs)
	default:
		panic("invalid MPT node type")
	}
}

// insertIntoLeaf puts value to trie if current node is a Leaf.
func (t *TrieDBMut) insertIntoLeaf(curr *LeafNode, path, value []byte, cs *changeSet) (Node, []byte, bool, error) {
	c := CommonPrefixLen(curr.Key, path)
	if c == len(curr.Key) && c == len(path) {
		if bytes.Equal(curr.Value, value) {
			return curr, curr.Value, false, nil
		}
		return &LeafNode{Key: curr.Key, Value: value}, curr.Value, true, nil
	}

	b := new(BranchNode)
	if c == len(curr.Key) {
		b.Value = curr.Value
	} else {
		b.Children[curr.Key[c]] = t.handle(&LeafNode{Key: curr.Key[c+1:], Value: curr.Value}, cs)
	}
	t.putIntoNewBranch(b, path[c:], value, cs)
	return t.withPrefix(path[:c], b, cs), nil, true, nil
}

// insertIntoExtension puts value to trie if current node is an Extension.
func (t *TrieDBMut) insertIntoExtension(curr *ExtensionNode, path, value []byte, cs *changeSet) (Node, []byte, bool, error) {
	c := CommonPrefixLen(curr.Key, path)
	if c == len(curr.Key) {
		child, err := t.resolve(curr.Child)
		if err != nil {
			return nil, nil, false, err
		}
		r, old, changed, err := t.insertIntoNode(child, path[c:], value, cs)
		if err != nil || !changed {
			return curr, old, false, err
		}
		cs.release(curr.Child)
		return t.fuse(curr.Key, r, cs), old, true, nil
	}

	b := new(BranchNode)
	if keyTail := curr.Key[c+1:]; len(keyTail) == 0 {
		b.Children[curr.Key[c]] = curr.Child
	} else {
		b.Children[curr.Key[c]] = t.handle(&ExtensionNode{Key: keyTail, Child: curr.Child}, cs)
	}
	t.putIntoNewBranch(b, path[c:], value, cs)
	return t.withPrefix(path[:c], b, cs), nil, true, nil
}

// insertIntoBranch puts value to trie if current node is a Branch.
func (t *TrieDBMut) insertIntoBranch(curr *BranchNode, path, value []byte, cs *changeSet) (Node, []byte, bool, error) {
	if len(path) == 0 {
		if bytes.Equal(curr.Value, value) {
			return curr, curr.Value, false, nil
		}
		b := *curr
		b.Value = value
		return &b, curr.Value, true, nil
	}

	i, path := path[0], path[1:]
	child, err := t.resolve(curr.Children[i])
	if err != nil {
		return nil, nil, false, err
	}
	r, old, changed, err := t.insertIntoNode(child, path, value, cs)
	if err != nil || !changed {
		return curr, old, false, err
	}
	cs.release(curr.Children[i])
	b := *curr
	b.Children[i] = t.handle(r, cs)
	return &b, old, true, nil
}

// putIntoNewBranch stores value at the (possibly empty) path relative to the
// fresh branch b.
func (t *TrieDBMut) putIntoNewBranch(b *BranchNode, path, value []byte, cs *changeSet) {
	if len(path) == 0 {
		b.Value = value
		return
	}
	b.Children[path[0]] = t.handle(&LeafNode{Key: path[1:], Value: value}, cs)
}

// withPrefix wraps b into an Extension if prefix is not empty.
func (t *TrieDBMut) withPrefix(prefix []byte, b *BranchNode, cs *changeSet) Node {
	if len(prefix) == 0 {
		return b
	}
	return &ExtensionNode{Key: prefix, Child: t.handle(b, cs)}
}

// fuse prepends prefix to the path of n. Leaf and Extension keys are
// extended, Branch is wrapped into an Extension.
func (t *TrieDBMut) fuse(prefix []byte, n Node, cs *changeSet) Node {
	switch n := n.(type) {
	case EmptyNode:
		return n
	case *LeafNode:
		return &LeafNode{Key: concatNibbles(prefix, n.Key), Value: n.Value}
	case *ExtensionNode:
		return &ExtensionNode{Key: concatNibbles(prefix, n.Key), Child: n.Child}
	case *BranchNode:
		return &ExtensionNode{Key: prefix, Child: t.handle(n, cs)}
	default:
		panic("invalid MPT node type")
	}
}

// removeFromNode deletes path from the subtrie rooted at curr. It returns
// the new subtrie root, the removed value, whether anything has changed and
// error if any.
func (t *TrieDBMut) removeFromNode(curr Node, path []byte, cs *changeSet) (Node, []byte, bool, error) {
	switch n := curr.(type) {
	case EmptyNode:
		return n, nil, false, nil
	case *LeafNode:
		if !bytes.Equal(n.Key, path) {
			return n, nil, false, nil
		}
		return EmptyNode{}, n.Value, true, nil
	case *ExtensionNode:
		return t.removeFromExtension(n, path, cs)
	case *BranchNode:
		return t.removeFromBranch(n, path, cs)
	default:
		panic("invalid MPT node type")
	}
}

func (t *TrieDBMut) removeFromExtension(curr *ExtensionNode, path []byte, cs *changeSet) (Node, []byte, bool, error) {
	if !bytes.HasPrefix(path, curr.Key) {
		return curr, nil, false, nil
	}
	child, err := t.resolve(curr.Child)
	if err != nil {
		return nil, nil, false, err
	}
	r, old, changed, err := t.removeFromNode(child, path[len(curr.Key):], cs)
	if err != nil || !changed {
		return curr, nil, false, err
	}
	cs.release(curr.Child)
	return t.fuse(curr.Key, r, cs), old, true, nil
}

func (t *TrieDBMut) removeFromBranch(curr *BranchNode, path []byte, cs *changeSet) (Node, []byte, bool, error) {
	var (
		b   = *curr
		old []byte
	)
	if len(path) == 0 {
		if curr.Value == nil {
			return curr, nil, false, nil
		}
		old = curr.Value
		b.Value = nil
	} else {
		i := path[0]
		if curr.Children[i] == nil {
			return curr, nil, false, nil
		}
		child, err := t.resolve(curr.Children[i])
		if err != nil {
			return nil, nil, false, err
		}
		r, v, changed, err := t.removeFromNode(child, path[1:], cs)
		if err != nil || !changed {
			return curr, nil, false, err
		}
		cs.release(curr.Children[i])
		b.Children[i] = t.handle(r, cs)
		old = v
	}
	r, err := t.collapse(&b, cs)
	if err != nil {
		return nil, nil, false, err
	}
	return r, old, true, nil
}

// collapse restores compression invariants of the branch after removal: a
// branch without children becomes a Leaf, a branch with the only child and
// no value is merged with this child.
func (t *TrieDBMut) collapse(b *BranchNode, cs *changeSet) (Node, error) {
	count, i := b.childCount()
	switch {
	case count == 0 && b.Value == nil:
		return EmptyNode{}, nil
	case count == 0:
		return &LeafNode{Key: []byte{}, Value: b.Value}, nil
	case count > 1 || b.Value != nil:
		return b, nil
	}

	h := b.Children[i]
	child, err := t.resolvePending(h, cs)
	if err != nil {
		return nil, err
	}
	if _, ok := child.(*BranchNode); ok {
		// The child is kept as is, only the reference moves.
		return &ExtensionNode{Key: []byte{i}, Child: h}, nil
	}
	cs.release(h)
	return t.fuse([]byte{i}, child, cs), nil
}
