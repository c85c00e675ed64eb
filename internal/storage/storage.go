package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/IshaanNene/MovieGoat/internal/config"
	"github.com/IshaanNene/MovieGoat/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a set of records in order.
	Store(records types.RecordSet) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New builds the backends named in cfg.Storage.Type. A single backend is
// returned as is; several are wrapped in a MultiStorage.
func New(cfg *config.Config, runID string, logger *slog.Logger) (Storage, error) {
	sc := cfg.Storage
	var backends []Storage

	for _, typ := range config.StorageTypes(sc.Type) {
		s, err := newBackend(typ, sc, runID, logger)
		if err != nil {
			for _, b := range backends {
				_ = b.Close()
			}
			return nil, err
		}
		backends = append(backends, s)
	}

	switch len(backends) {
	case 0:
		return nil, fmt.Errorf("no storage backend configured")
	case 1:
		return backends[0], nil
	default:
		return NewMultiStorage(backends, logger), nil
	}
}

func newBackend(typ string, sc config.StorageConfig, runID string, logger *slog.Logger) (Storage, error) {
	base := filepath.Join(sc.OutputPath, sc.FileName)

	switch typ {
	case "csv":
		return NewCSVStorage(base+".csv", logger)
	case "json":
		return NewJSONStorage(base+".json", logger)
	case "jsonl":
		return NewJSONLStorage(base+".jsonl", logger)
	case "sqlite":
		return NewSQLiteStorage(base+".db", runID, logger)
	case "mongodb":
		return NewMongoStorage(sc.Mongo.URI, sc.Mongo.Database, sc.Mongo.Collection, runID, logger)
	case "table":
		return NewTableStorage(os.Stdout, logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", typ)
	}
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
