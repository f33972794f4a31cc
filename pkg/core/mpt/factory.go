package mpt

import (
	"fmt"
	"strings"

	"github.com/nspcc-dev/patricia/pkg/core/hashdb"
	"github.com/nspcc-dev/patricia/pkg/util"
)

// TrieSpec selects the trie variant.
type TrieSpec byte

// Trie variants.
const (
	// Generic trie uses keys as is.
	Generic TrieSpec = iota
	// Secure trie hashes keys.
	Secure
	// Fat trie hashes keys and keeps raw ones along with values.
	Fat
)

// DefaultTrieSpec is the variant used when nothing else is configured.
const DefaultTrieSpec = Secure

// String implements fmt.Stringer.
func (s TrieSpec) String() string {
	switch s {
	case Generic:
		return "generic"
	case Secure:
		return "secure"
	case Fat:
		return "fat"
	default:
		return fmt.Sprintf("unknown(%d)", byte(s))
	}
}

// ParseTrieSpec parses the variant name (case-insensitive).
func ParseTrieSpec(s string) (TrieSpec, error) {
	switch strings.ToLower(s) {
	case "generic":
		return Generic, nil
	case "secure":
		return Secure, nil
	case "fat":
		return Fat, nil
	default:
		return 0, fmt.Errorf("unknown trie spec: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s TrieSpec) MarshalText() ([]byte, error) {
	if s > Fat {
		return nil, fmt.Errorf("unknown trie spec: %d", byte(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TrieSpec) UnmarshalText(text []byte) error {
	v, err := ParseTrieSpec(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Factory creates tries of the configured variant.
type Factory struct {
	spec  TrieSpec
	codec NodeCodec
}

// NewFactory returns factory for the given variant and codec.
func NewFactory(spec TrieSpec, codec NodeCodec) *Factory {
	return &Factory{spec: spec, codec: codec}
}

// Spec returns the variant created by the factory.
func (f *Factory) Spec() TrieSpec { return f.spec }

// Codec returns the codec tries are created with.
func (f *Factory) Codec() NodeCodec { return f.codec }

// IsFat tells whether iteration over created tries yields raw keys.
func (f *Factory) IsFat() bool { return f.spec == Fat }

// Readonly opens a read-only trie with the given root.
func (f *Factory) Readonly(db hashdb.Reader, root util.Uint256) (*Kinds, error) {
	k := &Kinds{spec: f.spec}
	var err error
	switch f.spec {
	case Generic:
		k.generic, err = NewTrieDB(db, f.codec, root)
	case Secure:
		k.secure, err = NewSecTrieDB(db, f.codec, root)
	case Fat:
		k.fat, err = NewFatDB(db, f.codec, root)
	default:
		return nil, fmt.Errorf("unknown trie spec: %d", byte(f.spec))
	}
	if err != nil {
		return nil, err
	}
	return k, nil
}

// Create returns a new empty mutable trie. It panics if the factory was
// built with an unknown variant.
func (f *Factory) Create(db hashdb.HashDB) TrieMut {
	switch f.spec {
	case Generic:
		return NewTrieDBMut(db, f.codec)
	case Secure:
		return NewSecTrieDBMut(db, f.codec)
	case Fat:
		return NewFatDBMut(db, f.codec)
	default:
		panic(fmt.Sprintf("unknown trie spec: %d", byte(f.spec)))
	}
}

// FromExisting opens a mutable trie with the given root.
func (f *Factory) FromExisting(db hashdb.HashDB, root util.Uint256) (TrieMut, error) {
	var (
		t   TrieMut
		err error
	)
	switch f.spec {
	case Generic:
		t, err = TrieDBMutFromExisting(db, f.codec, root)
	case Secure:
		t, err = SecTrieDBMutFromExisting(db, f.codec, root)
	case Fat:
		t, err = FatDBMutFromExisting(db, f.codec, root)
	default:
		return nil, fmt.Errorf("unknown trie spec: %d", byte(f.spec))
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Kinds is a read-only trie of any variant. Exactly one of the variant
// fields is set.
type Kinds struct {
	spec    TrieSpec
	generic *TrieDB
	secure  *SecTrieDB
	fat     *FatDB
}

var _ Trie = (*Kinds)(nil)

// Spec returns the trie variant.
func (k *Kinds) Spec() TrieSpec { return k.spec }

// Root implements Trie interface.
func (k *Kinds) Root() util.Uint256 {
	switch k.spec {
	case Generic:
		return k.generic.Root()
	case Secure:
		return k.secure.Root()
	default:
		return k.fat.Root()
	}
}

// IsEmpty implements Trie interface.
func (k *Kinds) IsEmpty() bool {
	switch k.spec {
	case Generic:
		return k.generic.IsEmpty()
	case Secure:
		return k.secure.IsEmpty()
	default:
		return k.fat.IsEmpty()
	}
}

// Get implements Trie interface.
func (k *Kinds) Get(key []byte) ([]byte, error) {
	switch k.spec {
	case Generic:
		return k.generic.Get(key)
	case Secure:
		return k.secure.Get(key)
	default:
		return k.fat.Get(key)
	}
}

// GetWith implements Trie interface.
func (k *Kinds) GetWith(key []byte, q Query) (any, error) {
	switch k.spec {
	case Generic:
		return k.generic.GetWith(key, q)
	case Secure:
		return k.secure.GetWith(key, q)
	default:
		return k.fat.GetWith(key, q)
	}
}

// Contains implements Trie interface.
func (k *Kinds) Contains(key []byte) (bool, error) {
	switch k.spec {
	case Generic:
		return k.generic.Contains(key)
	case Secure:
		return k.secure.Contains(key)
	default:
		return k.fat.Contains(key)
	}
}

// Iter implements Trie interface.
func (k *Kinds) Iter() (TrieIterator, error) {
	switch k.spec {
	case Generic:
		return k.generic.Iter()
	case Secure:
		return k.secure.Iter()
	default:
		return k.fat.Iter()
	}
}
