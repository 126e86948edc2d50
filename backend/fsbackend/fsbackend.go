// Package fsbackend contains an implementation of the backend.Backend
// interface for the filesystem
package fsbackend

import (
	"sync"

	"github.com/gitgo-dev/gogit/backend"
	"github.com/gitgo-dev/gogit/ginternals/config"
	"github.com/gitgo-dev/gogit/internal/syncutil"
	"github.com/golang/groupcache/lru"
	"github.com/spf13/afero"
)

// we make sure the struct implements the interface
var _ backend.Backend = (*Backend)(nil)

// defaultCacheSize bounds the in-memory object cache. Loose objects are
// immutable so there's no invalidation concern, only a memory/hit-rate
// trade-off.
const defaultCacheSize = 256

// Backend is a Backend implementation that uses the filesystem to store data
type Backend struct {
	fs  afero.Fs
	cfg *config.Config

	cache    *lru.Cache
	objectMu *syncutil.NamedMutex

	// looseObjects tracks the oids known to exist on disk, populated
	// lazily by ensureLooseObjectsLoaded on first walk and by WriteObject.
	looseObjects   sync.Map
	looseObjectsOK bool
}

// New returns a new Backend reading and writing through fs, storing
// objects and refs at the paths described by cfg.
func New(fs afero.Fs, cfg *config.Config) *Backend {
	return &Backend{
		fs:       fs,
		cfg:      cfg,
		cache:    lru.New(defaultCacheSize),
		objectMu: syncutil.NewNamedMutex(16),
	}
}

// Close releases the resources held by the backend
func (b *Backend) Close() error {
	return nil
}
