package mpt

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/patricia/pkg/core/hashdb"
	"github.com/nspcc-dev/patricia/pkg/util"
)

type (
	// Query customizes the lookup: Decode converts the found value into the
	// returned item and Record observes every node fetched from the HashDB.
	Query interface {
		Decode(value []byte) (any, error)
		Record(h util.Uint256, data []byte, depth int)
	}

	// BytesQuery returns a copy of the raw value.
	BytesQuery struct{}

	// DecodeFunc is a Query applying the function to the value.
	DecodeFunc func(value []byte) (any, error)

	// RecordingQuery records nodes into Recorder and decodes the value with
	// Decoder (raw value copy if nil).
	RecordingQuery struct {
		Recorder *Recorder
		Decoder  DecodeFunc
	}
)

// Decode implements Query interface.
func (BytesQuery) Decode(value []byte) (any, error) {
	return bytes.Clone(value), nil
}

// Record implements Query interface.
func (BytesQuery) Record(util.Uint256, []byte, int) {}

// Decode implements Query interface.
func (f DecodeFunc) Decode(value []byte) (any, error) {
	return f(value)
}

// Record implements Query interface.
func (DecodeFunc) Record(util.Uint256, []byte, int) {}

// Decode implements Query interface.
func (q RecordingQuery) Decode(value []byte) (any, error) {
	if q.Decoder == nil {
		return bytes.Clone(value), nil
	}
	return q.Decoder(value)
}

// Record implements Query interface.
func (q RecordingQuery) Record(h util.Uint256, data []byte, depth int) {
	if q.Recorder != nil {
		q.Recorder.Record(h, data, depth)
	}
}

// Lookup is a single read-path traversal from the root.
type Lookup struct {
	DB    hashdb.Reader
	Codec NodeCodec
	Query Query
	Root  util.Uint256
}

// fetchNode gets node from the db and decodes it.
func fetchNode(db hashdb.Reader, codec NodeCodec, h util.Uint256) (Node, []byte, error) {
	data, err := db.Get(h)
	if err != nil {
		return nil, nil, &IncompleteDatabaseError{Hash: h, Err: err}
	}
	n, err := codec.Decode(data)
	if err != nil {
		return nil, nil, &DecoderError{Hash: h, Err: err}
	}
	return n, data, nil
}

// resolveHandle returns node referenced by h, EmptyNode for nil handle.
func resolveHandle(db hashdb.Reader, codec NodeCodec, h NodeHandle) (Node, error) {
	switch h := h.(type) {
	case nil:
		return EmptyNode{}, nil
	case InlineHandle:
		return h.Node, nil
	case HashHandle:
		n, _, err := fetchNode(db, codec, h.Hash)
		return n, err
	default:
		panic(fmt.Sprintf("invalid node handle type: %T", h))
	}
}

// LookUp finds the value stored by key and returns it decoded by the
// Query. Nil item without an error means there is no such key.
func (l Lookup) LookUp(key []byte) (any, error) {
	if l.Root == l.Codec.HashedNullNode() {
		return nil, nil
	}
	var (
		path  = ToNibbles(key)
		h     = l.Root
		depth int
	)
	for {
		node, data, err := fetchNode(l.DB, l.Codec, h)
		if err != nil {
			return nil, err
		}
		l.Query.Record(h, data, depth)

	inline:
		for {
			var next NodeHandle
			switch n := node.(type) {
			case EmptyNode:
				return nil, nil
			case *LeafNode:
				if !bytes.Equal(n.Key, path) {
					return nil, nil
				}
				return l.decode(h, n.Value)
			case *ExtensionNode:
				if !bytes.HasPrefix(path, n.Key) {
					return nil, nil
				}
				path = path[len(n.Key):]
				next = n.Child
			case *BranchNode:
				if len(path) == 0 {
					if n.Value == nil {
						return nil, nil
					}
					return l.decode(h, n.Value)
				}
				next = n.Children[path[0]]
				path = path[1:]
			}

			switch c := next.(type) {
			case nil:
				return nil, nil
			case InlineHandle:
				node = c.Node
			case HashHandle:
				h = c.Hash
				depth++
				break inline
			}
		}
	}
}

func (l Lookup) decode(h util.Uint256, value []byte) (any, error) {
	item, err := l.Query.Decode(value)
	if err != nil {
		return nil, &DecoderError{Hash: h, Err: err}
	}
	return item, nil
}
