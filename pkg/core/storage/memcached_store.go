package storage

import (
	"bytes"
)

// MemCachedStore is a wrapper around persistent store that caches all changes
// being made for them to be later flushed in one batch. Deleted keys are kept
// in the cache with nil value until persisted.
type MemCachedStore struct {
	MemoryStore

	// Persistent Store.
	ps Store
}

// NewMemCachedStore creates a new MemCachedStore object.
func NewMemCachedStore(lower Store) *MemCachedStore {
	return &MemCachedStore{
		MemoryStore: *NewMemoryStore(),
		ps:          lower,
	}
}

// Get implements the Store interface.
func (s *MemCachedStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	if val, ok := s.mem[string(key)]; ok {
		s.mut.RUnlock()
		if val == nil {
			return nil, ErrKeyNotFound
		}
		return val, nil
	}
	s.mut.RUnlock()
	return s.ps.Get(key)
}

// Put puts new KV pair into the store.
func (s *MemCachedStore) Put(key, value []byte) {
	s.mut.Lock()
	s.put(string(key), bytes.Clone(value))
	s.mut.Unlock()
}

// Delete drops KV pair from the store. Never returns an error.
func (s *MemCachedStore) Delete(key []byte) {
	s.mut.Lock()
	s.put(string(key), nil)
	s.mut.Unlock()
}

// Len returns the number of pending (not yet persisted) changes.
func (s *MemCachedStore) Len() int {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return len(s.mem)
}

// Seek implements the Store interface. Cached items take precedence over
// the ones from the persistent store; cached deletions hide them.
func (s *MemCachedStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mut.RLock()
	var cached []KeyValue
	for k, v := range s.mem {
		cached = append(cached, KeyValue{Key: []byte(k), Value: v})
	}
	s.mut.RUnlock()

	var (
		merged  = make(map[string][]byte)
		pending []KeyValue
	)
	for _, kv := range cached {
		merged[string(kv.Key)] = kv.Value
	}
	s.ps.Seek(rng, func(k, v []byte) bool {
		if _, ok := merged[string(k)]; !ok {
			pending = append(pending, KeyValue{Key: bytes.Clone(k), Value: bytes.Clone(v)})
		}
		return true
	})
	tmp := NewMemoryStore()
	for _, kv := range cached {
		if kv.Value != nil {
			tmp.put(string(kv.Key), kv.Value)
		}
	}
	for _, kv := range pending {
		tmp.put(string(kv.Key), kv.Value)
	}
	tmp.seek(rng, f)
}

// SeekGC implements the Store interface. It persists pending changes first
// and then delegates to the lower store.
func (s *MemCachedStore) SeekGC(rng SeekRange, keep func(k, v []byte) bool) error {
	if _, err := s.Persist(); err != nil {
		return err
	}
	return s.ps.SeekGC(rng, keep)
}

// Persist flushes all the MemoryStore contents into the (supposedly) persistent
// store ps. It returns the number of keys flushed.
func (s *MemCachedStore) Persist() (int, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	keys := len(s.mem)
	if keys == 0 {
		return 0, nil
	}
	err := s.ps.PutChangeSet(s.mem)
	if err != nil {
		return 0, err
	}
	s.mem = make(map[string][]byte)
	return keys, nil
}

// PutChangeSet implements the Store interface, changes are cached until
// Persist is called.
func (s *MemCachedStore) PutChangeSet(puts map[string][]byte) error {
	s.mut.Lock()
	for k := range puts {
		s.put(k, puts[k])
	}
	s.mut.Unlock()
	return nil
}

// Close implements Store interface, clears up memory and closes the lower layer
// Store.
func (s *MemCachedStore) Close() error {
	// It's always successful.
	_ = s.MemoryStore.Close()
	return s.ps.Close()
}
