package hashdb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/patricia/pkg/core/storage"
	"github.com/nspcc-dev/patricia/pkg/crypto/hash"
	"github.com/nspcc-dev/patricia/pkg/util"
	"go.uber.org/zap"
)

// refcountSize is the size of the reference counter appended to every stored
// node.
const refcountSize = 4

// StoreDB is a HashDB on top of the storage.Store. Nodes are kept under
// storage.DataMPT prefix followed by the node hash, stored value is the node
// itself followed by the little-endian reference counter. Changes are
// buffered in memory until Commit is called, unreferenced nodes are kept
// in the store until Sweep.
type StoreDB struct {
	mtx    sync.RWMutex
	hasher hash.Hasher
	store  *storage.MemCachedStore
	cache  *lru.Cache
	log    *zap.Logger
}

// NewStoreDB creates StoreDB over the given store. cacheSize limits the
// number of decoded-ready nodes kept in memory, zero disables caching.
func NewStoreDB(s storage.Store, hasher hash.Hasher, cacheSize int, log *zap.Logger) (*StoreDB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db := &StoreDB{
		hasher: hasher,
		store:  storage.NewMemCachedStore(s),
		log:    log,
	}
	if cacheSize > 0 {
		c, err := lru.New(cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create node cache: %w", err)
		}
		db.cache = c
	}
	return db, nil
}

func makeStorageKey(h util.Uint256) []byte {
	return append(storage.DataMPT.Bytes(), h[:]...)
}

func decodeEntry(v []byte) ([]byte, int32, error) {
	if len(v) < refcountSize {
		return nil, 0, fmt.Errorf("invalid node entry length: %d", len(v))
	}
	n := len(v) - refcountSize
	return v[:n:n], int32(binary.LittleEndian.Uint32(v[n:])), nil
}

func encodeEntry(data []byte, refs int32) []byte {
	v := make([]byte, len(data)+refcountSize)
	copy(v, data)
	binary.LittleEndian.PutUint32(v[len(data):], uint32(refs))
	return v
}

// getEntry returns node data and its reference counter, absent nodes have
// nil data and zero counter.
func (s *StoreDB) getEntry(h util.Uint256) ([]byte, int32, error) {
	v, err := s.store.Get(makeStorageKey(h))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return decodeEntry(v)
}

// Hasher returns hasher used by the DB.
func (s *StoreDB) Hasher() hash.Hasher {
	return s.hasher
}

// Get implements the Reader interface.
func (s *StoreDB) Get(h util.Uint256) ([]byte, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(h); ok {
			cacheHits.Inc()
			return v.([]byte), nil
		}
	}
	s.mtx.RLock()
	data, refs, err := s.getEntry(h)
	s.mtx.RUnlock()
	if err != nil {
		return nil, err
	}
	if refs <= 0 {
		return nil, ErrNotFound
	}
	if s.cache != nil {
		s.cache.Add(h, data)
	}
	return data, nil
}

// Contains implements the Reader interface.
func (s *StoreDB) Contains(h util.Uint256) bool {
	_, err := s.Get(h)
	return err == nil
}

// Insert implements the HashDB interface.
func (s *StoreDB) Insert(data []byte) util.Uint256 {
	h := s.hasher.Hash(data)
	s.Emplace(h, data)
	return h
}

// Emplace implements the HashDB interface.
func (s *StoreDB) Emplace(h util.Uint256, data []byte) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	old, refs, err := s.getEntry(h)
	if err != nil {
		s.log.Warn("failed to read node entry, overwriting",
			zap.Stringer("hash", h), zap.Error(err))
		refs = 0
	}
	if refs <= 0 || old == nil {
		old = bytes.Clone(data)
	}
	refs++
	s.store.Put(makeStorageKey(h), encodeEntry(old, refs))
	nodesInserted.Inc()
}

// Remove implements the HashDB interface. Nodes with zero references are
// not deleted until Sweep.
func (s *StoreDB) Remove(h util.Uint256) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	data, refs, err := s.getEntry(h)
	if err != nil {
		s.log.Warn("failed to read node entry",
			zap.Stringer("hash", h), zap.Error(err))
		return
	}
	if refs <= 0 {
		s.log.Warn("releasing unreferenced node",
			zap.Stringer("hash", h), zap.Int32("refs", refs))
	}
	refs--
	if refs <= 0 && s.cache != nil {
		s.cache.Remove(h)
	}
	s.store.Put(makeStorageKey(h), encodeEntry(data, refs))
	nodesReleased.Inc()
}

// Refs returns the current reference counter of the node.
func (s *StoreDB) Refs(h util.Uint256) (int32, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	_, refs, err := s.getEntry(h)
	return refs, err
}

// Pending returns the number of changed entries not yet committed.
func (s *StoreDB) Pending() int {
	return s.store.Len()
}

// Commit flushes all pending changes to the underlying store.
func (s *StoreDB) Commit() (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	n, err := s.store.Persist()
	if err != nil {
		return 0, fmt.Errorf("failed to persist nodes: %w", err)
	}
	nodesCommitted.Add(float64(n))
	s.log.Debug("nodes committed", zap.Int("nodes", n))
	return n, nil
}

// Sweep commits pending changes and removes all unreferenced nodes from the
// underlying store, it returns the number of nodes removed.
func (s *StoreDB) Sweep() (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var removed int
	err := s.store.SeekGC(storage.SeekRange{Prefix: storage.DataMPT.Bytes()}, func(k, v []byte) bool {
		_, refs, err := decodeEntry(v)
		if err != nil || refs <= 0 {
			removed++
			return false
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sweep nodes: %w", err)
	}
	nodesSwept.Add(float64(removed))
	s.log.Info("unreferenced nodes removed", zap.Int("nodes", removed))
	return removed, nil
}

// Store returns the cached store used by the DB. It can be used to store
// auxiliary data that is committed along with the nodes.
func (s *StoreDB) Store() *storage.MemCachedStore {
	return s.store
}

// Close closes the underlying store, pending changes are lost.
func (s *StoreDB) Close() error {
	return s.store.Close()
}
