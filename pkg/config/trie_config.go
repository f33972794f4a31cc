package config

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/patricia/pkg/core/mpt"
	"github.com/nspcc-dev/patricia/pkg/crypto/hash"
)

const (
	// DefaultHasher is the name of the hash function used by default.
	DefaultHasher = "keccak256"
	// DefaultNodeCacheSize is the default number of node encodings cached
	// in memory.
	DefaultNodeCacheSize = 10000
)

// TrieConfiguration contains trie settings. They define node hashes, so they
// must stay the same for the same database.
type TrieConfiguration struct {
	// Spec is the trie variant: generic, secure or fat.
	Spec mpt.TrieSpec `yaml:"Spec"`
	// Hasher is the node (and key, for secure variants) hash function name.
	Hasher string `yaml:"Hasher"`
	// InlineThreshold is the minimum encoded size of a node referenced by
	// hash, smaller nodes are inlined into their parents.
	InlineThreshold int `yaml:"InlineThreshold"`
	// RecorderLimit is the maximum number of proof nodes recorded, 0 means
	// no limit.
	RecorderLimit int `yaml:"RecorderLimit"`
	// NodeCacheSize is the number of node encodings kept in memory, 0
	// disables the cache.
	NodeCacheSize int `yaml:"NodeCacheSize"`
}

// Validate checks trie settings.
func (t TrieConfiguration) Validate() error {
	if _, err := t.Spec.MarshalText(); err != nil {
		return err
	}
	if _, err := hash.ByName(t.Hasher); err != nil {
		return err
	}
	if t.InlineThreshold <= 0 {
		return fmt.Errorf("non-positive InlineThreshold: %d", t.InlineThreshold)
	}
	if t.RecorderLimit < 0 {
		return errors.New("negative RecorderLimit")
	}
	if t.NodeCacheSize < 0 {
		return errors.New("negative NodeCacheSize")
	}
	return nil
}

// GetHasher returns configured hash function.
func (t TrieConfiguration) GetHasher() (hash.Hasher, error) {
	return hash.ByName(t.Hasher)
}

// Codec returns node codec for the configured hasher and inline threshold.
func (t TrieConfiguration) Codec() (mpt.NodeCodec, error) {
	h, err := t.GetHasher()
	if err != nil {
		return nil, err
	}
	return mpt.NewRLPCodec(h, t.InlineThreshold), nil
}

// Factory returns trie factory for the configured variant.
func (t TrieConfiguration) Factory() (*mpt.Factory, error) {
	codec, err := t.Codec()
	if err != nil {
		return nil, err
	}
	return mpt.NewFactory(t.Spec, codec), nil
}

// NewRecorder returns proof recorder respecting RecorderLimit.
func (t TrieConfiguration) NewRecorder() *mpt.Recorder {
	return mpt.NewRecorderWithLimit(t.RecorderLimit)
}
