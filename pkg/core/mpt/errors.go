package mpt

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/patricia/pkg/util"
)

// Sentinel errors matched by the typed trie errors with errors.Is.
var (
	ErrInvalidStateRoot   = errors.New("invalid state root")
	ErrIncompleteDatabase = errors.New("incomplete database")
	ErrDecoder            = errors.New("node decoding failed")
)

// InvalidStateRootError is returned when the trie is opened with the root
// that is not present in the HashDB.
type InvalidStateRootError struct {
	Root util.Uint256
}

// Error implements the error interface.
func (e *InvalidStateRootError) Error() string {
	return fmt.Sprintf("invalid state root: %s", e.Root)
}

// Is allows to match the error against ErrInvalidStateRoot.
func (e *InvalidStateRootError) Is(target error) bool {
	return target == ErrInvalidStateRoot
}

// IncompleteDatabaseError is returned when some node referenced by the trie
// is missing from the HashDB.
type IncompleteDatabaseError struct {
	Hash util.Uint256
	Err  error
}

// Error implements the error interface.
func (e *IncompleteDatabaseError) Error() string {
	return fmt.Sprintf("database missing expected key: %s", e.Hash)
}

// Is allows to match the error against ErrIncompleteDatabase.
func (e *IncompleteDatabaseError) Is(target error) bool {
	return target == ErrIncompleteDatabase
}

// Unwrap returns the underlying HashDB error.
func (e *IncompleteDatabaseError) Unwrap() error {
	return e.Err
}

// DecoderError is returned when the node stored under Hash can't be decoded.
type DecoderError struct {
	Hash util.Uint256
	Err  error
}

// Error implements the error interface.
func (e *DecoderError) Error() string {
	return fmt.Sprintf("decoding failed for hash %s: %v", e.Hash, e.Err)
}

// Is allows to match the error against ErrDecoder.
func (e *DecoderError) Is(target error) bool {
	return target == ErrDecoder
}

// Unwrap returns the codec error.
func (e *DecoderError) Unwrap() error {
	return e.Err
}
