// Package store implements the content-addressed evidence store: an
// immutable, hash-keyed filesystem layout under a root directory, with
// append-only chain-of-custody tracking and case/label indirection via
// hard links.
package store

import (
	"fmt"
	"os"

	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/store/index"
)

// LinkHardlink and LinkCopy are the two supported strategies for
// cases/<case_id>/... and labels/<label>/... indirection.
const (
	LinkHardlink = "hardlink"
	LinkCopy     = "copy"
)

// Store is the single writer of its root directory tree. A Store value is
// safe for concurrent reads; concurrent ingests of distinct hashes are
// safe, concurrent ingests of the SAME hash rely on the filesystem's
// atomic rename semantics to avoid corruption, not on in-process locking.
type Store struct {
	root     string
	linkMode string
	log      *logging.Logger
	index    index.Index
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLinkMode overrides the default hardlink strategy for case/label
// indirection. Pass LinkCopy on filesystems that don't support hard links
// across the store's volume (e.g. some network mounts).
func WithLinkMode(mode string) Option {
	return func(s *Store) {
		if mode != "" {
			s.linkMode = mode
		}
	}
}

// WithLogger attaches a component-scoped logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithIndex attaches an optional secondary index. When set, list/stats
// operations consult it first and fall back to the filesystem on any
// error; writes still land on the filesystem first and update the index
// as a best-effort side effect, never failing the caller if the index
// write fails.
func WithIndex(idx index.Index) Option {
	return func(s *Store) { s.index = idx }
}

// Open creates the store's top-level directories under root if they don't
// already exist and returns a ready-to-use Store.
func Open(root string, opts ...Option) (*Store, error) {
	s := &Store{root: root, linkMode: LinkHardlink}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.With("component", "store")
	}

	for _, dir := range []string{"raw", "derived", "cases", "labels", "tmp"} {
		if err := os.MkdirAll(s.path(dir), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}
