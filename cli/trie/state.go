package trie

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/patricia/cli/options"
	"github.com/nspcc-dev/patricia/pkg/config"
	"github.com/nspcc-dev/patricia/pkg/core/hashdb"
	"github.com/nspcc-dev/patricia/pkg/core/mpt"
	"github.com/nspcc-dev/patricia/pkg/core/storage"
	"github.com/nspcc-dev/patricia/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// rootKey is the store key of the current trie root.
var rootKey = append(storage.DataMPTAux.Bytes(), "root"...)

// state is the trie saved in the configured database.
type state struct {
	cfg     config.Config
	log     *zap.Logger
	db      *hashdb.StoreDB
	factory *mpt.Factory
	root    util.Uint256
}

func openState(ctx *cli.Context) (*state, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, err
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return nil, err
	}
	factory, err := cfg.Trie.Factory()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(cfg.DBConfiguration)
	if err != nil {
		return nil, fmt.Errorf("could not open DB: %w", err)
	}
	db, err := hashdb.NewStoreDB(store, factory.Codec().Hasher(), cfg.Trie.NodeCacheSize, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	s := &state{
		cfg:     cfg,
		log:     log,
		db:      db,
		factory: factory,
		root:    factory.Codec().HashedNullNode(),
	}
	data, err := db.Store().Get(rootKey)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
	case err != nil:
		_ = s.close()
		return nil, fmt.Errorf("can't read trie root: %w", err)
	default:
		s.root, err = util.Uint256DecodeBytesBE(data)
		if err != nil {
			_ = s.close()
			return nil, fmt.Errorf("invalid trie root: %w", err)
		}
	}
	log.Debug("trie opened",
		zap.Stringer("spec", cfg.Trie.Spec),
		zap.Stringer("root", s.root))
	return s, nil
}

func (s *state) readonly() (*mpt.Kinds, error) {
	return s.factory.Readonly(s.db, s.root)
}

func (s *state) mutable() (mpt.TrieMut, error) {
	return s.factory.FromExisting(s.db, s.root)
}

// commit saves the new root along with all pending node changes.
func (s *state) commit(root util.Uint256) error {
	s.db.Store().Put(rootKey, root.BytesBE())
	if _, err := s.db.Commit(); err != nil {
		return err
	}
	s.log.Info("trie root updated",
		zap.Stringer("old", s.root),
		zap.Stringer("new", root))
	s.root = root
	return nil
}

func (s *state) close() error {
	_ = s.log.Sync()
	return s.db.Close()
}
