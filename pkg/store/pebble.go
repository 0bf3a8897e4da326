package store

import (
	"fmt"

	"github.com/cockroachdb/pebble"

	"tagme/pkg/logger"
)

var (
	db     *pebble.DB
	dbPath string
)

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package. cacheSize is the
// block cache size in bytes; zero keeps Pebble's default.
func Open(path string, cacheSize int64) error {
	logger.Info("opening_pebble_db", "path", path)
	opts := &pebble.Options{}
	if cacheSize > 0 {
		cache := pebble.NewCache(cacheSize)
		defer cache.Unref()
		opts.Cache = cache
	}
	var err error
	db, err = pebble.Open(path, opts)
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func errNotOpen() error {
	return fmt.Errorf("pebble not opened; call store.Open first")
}
