// Package storage selects the durable store backing the engine. It prefers
// the transactional SQLite store and degrades permanently to the simple file
// store when SQLite cannot be opened.
package storage

import (
	"context"

	"github.com/bnema/lacquer/internal/domain/repository"
	"github.com/bnema/lacquer/internal/infrastructure/persistence/filestore"
	"github.com/bnema/lacquer/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/lacquer/internal/logging"
)

// Options name the two candidate media.
type Options struct {
	// DBPath is the SQLite database file.
	DBPath string
	// FilePath is the JSON document used when SQLite is unavailable.
	FilePath string
}

// Open returns the store for this process. The choice is made exactly once:
// a SQLite failure here (unsupported platform, quota, locked directory)
// selects the file store for the process lifetime, never per-call. Storage
// degradation is logged and deliberately not surfaced to callers.
func Open(ctx context.Context, opts Options) (repository.Store, error) {
	log := logging.FromContext(ctx)

	store, err := sqlite.Open(ctx, opts.DBPath)
	if err == nil {
		return store, nil
	}

	log.Warn().
		Err(err).
		Str("db_path", opts.DBPath).
		Str("fallback", opts.FilePath).
		Msg("transactional store unavailable, degrading to simple store")

	fallback, ferr := filestore.Open(opts.FilePath)
	if ferr != nil {
		// Total medium unavailability is the only error callers ever see.
		return nil, ferr
	}
	return fallback, nil
}
