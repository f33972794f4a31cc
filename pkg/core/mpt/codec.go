package mpt

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/nspcc-dev/patricia/pkg/crypto/hash"
	"github.com/nspcc-dev/patricia/pkg/util"
)

// DefaultInlineThreshold is the default size of node encoding starting from
// which the node is stored separately. Smaller nodes are embedded into their
// parents.
const DefaultInlineThreshold = 32

// ErrInvalidNode is returned for malformed node encodings.
var ErrInvalidNode = errors.New("invalid node")

// emptyNodeBytes is the canonical empty node encoding (empty RLP string).
var emptyNodeBytes = []byte{rlp.EmptyString[0]}

// NodeCodec converts nodes to their canonical byte form and back.
type NodeCodec interface {
	// Encode returns deterministic node encoding.
	Encode(n Node) []byte
	// Decode parses node encoding.
	Decode(data []byte) (Node, error)
	// EmptyNode returns encoding of the EmptyNode.
	EmptyNode() []byte
	// HashedNullNode returns the hash of EmptyNode encoding, it's the root
	// of an empty trie.
	HashedNullNode() util.Uint256
	// Hash hashes data with the codec's hasher.
	Hash(data []byte) util.Uint256
	// Hasher returns the codec's hasher.
	Hasher() hash.Hasher
	// IsInline tells whether the node with the given encoding is to be
	// embedded into its parent.
	IsInline(encoded []byte) bool
}

// RLPCodec is the Ethereum-compatible NodeCodec. Leaf and extension nodes are
// encoded as two-item RLP lists with hex-prefix encoded key, branches are
// 17-item lists. Children are referenced by their 32-byte hash or embedded as
// is.
type RLPCodec struct {
	hasher          hash.Hasher
	inlineThreshold int
	hashedNull      util.Uint256
}

var _ NodeCodec = (*RLPCodec)(nil)

// NewRLPCodec creates codec using the given hasher and inline threshold.
// Non-positive threshold means DefaultInlineThreshold.
func NewRLPCodec(h hash.Hasher, inlineThreshold int) *RLPCodec {
	if inlineThreshold <= 0 {
		inlineThreshold = DefaultInlineThreshold
	}
	return &RLPCodec{
		hasher:          h,
		inlineThreshold: inlineThreshold,
		hashedNull:      h.Hash(emptyNodeBytes),
	}
}

// NewDefaultCodec returns Keccak-256 RLPCodec with the default inline
// threshold, it produces Ethereum-compatible roots.
func NewDefaultCodec() *RLPCodec {
	return NewRLPCodec(hash.Keccak256, DefaultInlineThreshold)
}

// InlineThreshold returns codec's inline threshold.
func (c *RLPCodec) InlineThreshold() int {
	return c.inlineThreshold
}

// EmptyNode implements NodeCodec.
func (c *RLPCodec) EmptyNode() []byte {
	return []byte{emptyNodeBytes[0]}
}

// HashedNullNode implements NodeCodec.
func (c *RLPCodec) HashedNullNode() util.Uint256 {
	return c.hashedNull
}

// Hash implements NodeCodec.
func (c *RLPCodec) Hash(data []byte) util.Uint256 {
	return c.hasher.Hash(data)
}

// Hasher implements NodeCodec.
func (c *RLPCodec) Hasher() hash.Hasher {
	return c.hasher
}

// IsInline implements NodeCodec.
func (c *RLPCodec) IsInline(encoded []byte) bool {
	return len(encoded) < c.inlineThreshold
}

// Encode implements NodeCodec.
func (c *RLPCodec) Encode(n Node) []byte {
	if isEmpty(n) {
		return c.EmptyNode()
	}
	w := rlp.NewEncoderBuffer(nil)
	c.encode(w, n)
	return w.ToBytes()
}

func (c *RLPCodec) encode(w rlp.EncoderBuffer, n Node) {
	switch n := n.(type) {
	case EmptyNode:
		w.WriteBytes(nil)
	case *LeafNode:
		l := w.List()
		w.WriteBytes(EncodeHexPrefix(n.Key, true))
		w.WriteBytes(n.Value)
		w.ListEnd(l)
	case *ExtensionNode:
		l := w.List()
		w.WriteBytes(EncodeHexPrefix(n.Key, false))
		c.encodeHandle(w, n.Child)
		w.ListEnd(l)
	case *BranchNode:
		l := w.List()
		for i := range n.Children {
			c.encodeHandle(w, n.Children[i])
		}
		w.WriteBytes(n.Value)
		w.ListEnd(l)
	default:
		panic(fmt.Sprintf("invalid MPT node type: %T", n))
	}
}

func (c *RLPCodec) encodeHandle(w rlp.EncoderBuffer, h NodeHandle) {
	switch h := h.(type) {
	case nil:
		w.WriteBytes(nil)
	case HashHandle:
		w.WriteBytes(h.Hash[:])
	case InlineHandle:
		c.encode(w, h.Node)
	default:
		panic(fmt.Sprintf("invalid node handle type: %T", h))
	}
}

// Decode implements NodeCodec. Inline children are decoded recursively.
func (c *RLPCodec) Decode(data []byte) (Node, error) {
	kind, content, rest, err := rlp.Split(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidNode, len(rest))
	}
	switch kind {
	case rlp.String:
		if len(content) == 0 {
			return EmptyNode{}, nil
		}
		return nil, fmt.Errorf("%w: unexpected string", ErrInvalidNode)
	case rlp.List:
	default:
		return nil, fmt.Errorf("%w: unexpected single byte", ErrInvalidNode)
	}

	count, err := rlp.CountValues(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	switch count {
	case 2:
		return c.decodeShort(content)
	case childrenCount + 1:
		return c.decodeBranch(content)
	default:
		return nil, fmt.Errorf("%w: invalid number of list elements: %d", ErrInvalidNode, count)
	}
}

func (c *RLPCodec) decodeShort(content []byte) (Node, error) {
	hp, rest, err := rlp.SplitString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrInvalidNode, err)
	}
	key, leaf, err := DecodeHexPrefix(hp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if leaf {
		val, _, err := rlp.SplitString(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: value: %v", ErrInvalidNode, err)
		}
		return &LeafNode{Key: key, Value: val}, nil
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: extension with empty key", ErrInvalidNode)
	}
	child, _, err := c.decodeHandle(rest)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("%w: extension without child", ErrInvalidNode)
	}
	return &ExtensionNode{Key: key, Child: child}, nil
}

func (c *RLPCodec) decodeBranch(content []byte) (Node, error) {
	var (
		b   = new(BranchNode)
		err error
	)
	for i := range b.Children {
		b.Children[i], content, err = c.decodeHandle(content)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
	}
	val, _, err := rlp.SplitString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: branch value: %v", ErrInvalidNode, err)
	}
	if len(val) != 0 {
		b.Value = val
	}
	return b, nil
}

func (c *RLPCodec) decodeHandle(buf []byte) (NodeHandle, []byte, error) {
	kind, val, rest, err := rlp.Split(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	switch kind {
	case rlp.List:
		n, err := c.Decode(buf[:len(buf)-len(rest)])
		if err != nil {
			return nil, nil, err
		}
		return InlineHandle{Node: n}, rest, nil
	case rlp.String:
		switch len(val) {
		case 0:
			return nil, rest, nil
		case util.Uint256Size:
			var h util.Uint256
			copy(h[:], val)
			return HashHandle{Hash: h}, rest, nil
		}
		return nil, nil, fmt.Errorf("%w: invalid hash reference length %d", ErrInvalidNode, len(val))
	default:
		return nil, nil, fmt.Errorf("%w: invalid child reference", ErrInvalidNode)
	}
}
