package mpt

import (
	"fmt"

	"github.com/nspcc-dev/patricia/pkg/util"
)

// NodeType represents node type.
type NodeType byte

// Node types definitions.
const (
	EmptyT NodeType = iota
	LeafT
	ExtensionT
	BranchT
)

// childrenCount is the number of Branch children, one per nibble value.
const childrenCount = 16

// String implements fmt.Stringer.
func (t NodeType) String() string {
	switch t {
	case EmptyT:
		return "empty"
	case LeafT:
		return "leaf"
	case ExtensionT:
		return "extension"
	case BranchT:
		return "branch"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

type (
	// Node represents common interface of all MPT nodes. The set of
	// implementations is closed: EmptyNode, *LeafNode, *ExtensionNode and
	// *BranchNode.
	Node interface {
		Type() NodeType
	}

	// EmptyNode represents empty node.
	EmptyNode struct{}

	// LeafNode represents MPT's leaf node, Key is the remaining part of
	// the path in nibbles.
	LeafNode struct {
		Key   []byte
		Value []byte
	}

	// ExtensionNode represents MPT's extension node, it consumes Key nibbles
	// of the path and continues into Child.
	ExtensionNode struct {
		Key   []byte
		Child NodeHandle
	}

	// BranchNode represents MPT's branch node. Nil Children are absent,
	// nil Value means there is no value ending at this node.
	BranchNode struct {
		Children [childrenCount]NodeHandle
		Value    []byte
	}
)

type (
	// NodeHandle is a reference to a child node, either InlineHandle or
	// HashHandle. Nil handle means there is no child.
	NodeHandle interface {
		isHandle()
	}

	// InlineHandle is a child node embedded into its parent.
	InlineHandle struct {
		Node Node
	}

	// HashHandle is a child node stored in the HashDB separately.
	HashHandle struct {
		Hash util.Uint256
	}
)

func (InlineHandle) isHandle() {}
func (HashHandle) isHandle()   {}

// Type implements Node interface.
func (EmptyNode) Type() NodeType { return EmptyT }

// Type implements Node interface.
func (*LeafNode) Type() NodeType { return LeafT }

// Type implements Node interface.
func (*ExtensionNode) Type() NodeType { return ExtensionT }

// Type implements Node interface.
func (*BranchNode) Type() NodeType { return BranchT }

// childCount returns the number of present children and the index of the
// last one.
func (b *BranchNode) childCount() (int, byte) {
	var (
		n    int
		last byte
	)
	for i := range b.Children {
		if b.Children[i] != nil {
			n++
			last = byte(i)
		}
	}
	return n, last
}

func isEmpty(n Node) bool {
	_, ok := n.(EmptyNode)
	return ok
}
