package hashdb

import (
	"bytes"
	"sync"

	"github.com/nspcc-dev/patricia/pkg/crypto/hash"
	"github.com/nspcc-dev/patricia/pkg/util"
)

// MemoryDB is an in-memory HashDB implementation. Removals of unknown
// nodes are remembered as negative reference counters, so that a node
// inserted later with the same hash is balanced out.
type MemoryDB struct {
	mtx    sync.RWMutex
	hasher hash.Hasher
	data   map[util.Uint256]*memEntry
}

type memEntry struct {
	data []byte
	refs int32
}

// NewMemoryDB returns new empty MemoryDB using the given hasher.
func NewMemoryDB(h hash.Hasher) *MemoryDB {
	return &MemoryDB{
		hasher: h,
		data:   make(map[util.Uint256]*memEntry),
	}
}

// Hasher returns hasher used by the DB.
func (m *MemoryDB) Hasher() hash.Hasher {
	return m.hasher
}

// Get implements the Reader interface.
func (m *MemoryDB) Get(h util.Uint256) ([]byte, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	e, ok := m.data[h]
	if !ok || e.refs <= 0 {
		return nil, ErrNotFound
	}
	return e.data, nil
}

// Contains implements the Reader interface.
func (m *MemoryDB) Contains(h util.Uint256) bool {
	_, err := m.Get(h)
	return err == nil
}

// Insert implements the HashDB interface.
func (m *MemoryDB) Insert(data []byte) util.Uint256 {
	h := m.hasher.Hash(data)
	m.Emplace(h, data)
	return h
}

// Emplace implements the HashDB interface.
func (m *MemoryDB) Emplace(h util.Uint256, data []byte) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	e, ok := m.data[h]
	if !ok {
		m.data[h] = &memEntry{data: bytes.Clone(data), refs: 1}
		return
	}
	if e.refs <= 0 {
		e.data = bytes.Clone(data)
	}
	e.refs++
	if e.refs == 0 {
		delete(m.data, h)
	}
}

// Remove implements the HashDB interface.
func (m *MemoryDB) Remove(h util.Uint256) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	e, ok := m.data[h]
	if !ok {
		m.data[h] = &memEntry{refs: -1}
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(m.data, h)
	}
}

// Refs returns the current reference counter of the node (zero for unknown
// ones).
func (m *MemoryDB) Refs(h util.Uint256) int32 {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if e, ok := m.data[h]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of live (positively referenced) nodes.
func (m *MemoryDB) Len() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	var n int
	for _, e := range m.data {
		if e.refs > 0 {
			n++
		}
	}
	return n
}

// Keys returns reference counters of all tracked nodes including the
// negatively referenced ones.
func (m *MemoryDB) Keys() map[util.Uint256]int32 {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	res := make(map[util.Uint256]int32, len(m.data))
	for h, e := range m.data {
		res[h] = e.refs
	}
	return res
}

// Purge drops all negatively referenced entries.
func (m *MemoryDB) Purge() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for h, e := range m.data {
		if e.refs <= 0 {
			delete(m.data, h)
		}
	}
}
