package mpt

import (
	"bytes"

	"github.com/nspcc-dev/patricia/pkg/util"
)

// Record is a single node dereferenced during the lookup.
type Record struct {
	Hash util.Uint256
	Data []byte
	// Depth is the number of nodes fetched from the HashDB before this one.
	Depth int
}

// Recorder logs all nodes dereferenced by lookups it's attached to, in
// order. It's a Query itself returning raw values, so it can be passed to
// GetWith directly.
type Recorder struct {
	nodes []Record
	limit int
}

var _ Query = (*Recorder)(nil)

// NewRecorder returns an unbounded Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// NewRecorderWithLimit returns Recorder keeping only the first limit
// records, non-positive limit means no limit.
func NewRecorderWithLimit(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Record implements Query interface.
func (r *Recorder) Record(h util.Uint256, data []byte, depth int) {
	if r.limit > 0 && len(r.nodes) >= r.limit {
		return
	}
	r.nodes = append(r.nodes, Record{
		Hash:  h,
		Data:  bytes.Clone(data),
		Depth: depth,
	})
}

// Decode implements Query interface.
func (r *Recorder) Decode(value []byte) (any, error) {
	return bytes.Clone(value), nil
}

// Drain returns all records and resets the Recorder.
func (r *Recorder) Drain() []Record {
	res := r.nodes
	r.nodes = nil
	return res
}

// Len returns the number of records made.
func (r *Recorder) Len() int {
	return len(r.nodes)
}
