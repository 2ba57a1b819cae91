package local

import (
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/boltdb"
	"github.com/fastygo/taskboard/repository"
)

// Options configures the local-first backend.
type Options struct {
	// Path of the Bolt database file.
	Path string
	// FallbackPath of the JSON blob used when Bolt cannot be opened. Defaults to Path + ".json".
	FallbackPath string
	// LockTimeout bounds how long Open waits for the Bolt file lock.
	LockTimeout time.Duration
	// Fs backs the blob fallback. Defaults to the OS filesystem.
	Fs afero.Fs
}

// Open returns the embedded transactional backend, or transparently degrades to the
// single-blob fallback when the embedded store is unavailable.
func Open(opts Options, logger *zap.Logger) repository.Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FallbackPath == "" {
		opts.FallbackPath = opts.Path + ".json"
	}

	store, err := boltdb.Open(opts.Path, opts.LockTimeout, collections()...)
	if err == nil {
		logger.Info("local store opened", zap.String("path", opts.Path))
		return NewBoltGateway(store)
	}

	logger.Warn("embedded store unavailable, degrading to blob fallback",
		zap.String("path", opts.Path),
		zap.String("fallback", opts.FallbackPath),
		zap.Error(err))
	return NewBlobGateway(opts.Fs, opts.FallbackPath)
}

func collections() []string {
	names := make([]string, 0, len(domain.Kinds))
	for _, k := range domain.Kinds {
		names = append(names, k.Collection())
	}
	return names
}
