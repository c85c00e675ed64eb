package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"

	"github.com/IshaanNene/MovieGoat/internal/types"
)

// --- SQLite Storage ---

// SQLiteStorage writes records to the movies table of a SQLite file.
type SQLiteStorage struct {
	path   string
	db     *sql.DB
	runID  string
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// sqliteColumns maps each record column to its SQL type. Names are quoted
// in statements because of US_box_office.
var sqliteColumns = map[string]string{
	types.ColTitle:       "TEXT",
	types.ColYear:        "INTEGER",
	types.ColCertificate: "TEXT",
	types.ColLength:      "TEXT",
	types.ColGenres:      "TEXT",
	types.ColCategory:    "TEXT",
	types.ColRating:      "REAL",
	types.ColMetascore:   "INTEGER",
	types.ColTotalVotes:  "INTEGER",
	types.ColBoxOffice:   "INTEGER",
}

// NewSQLiteStorage opens (or creates) the database file and its table.
func NewSQLiteStorage(path, runID string, logger *slog.Logger) (*SQLiteStorage, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	cols := []string{"id INTEGER PRIMARY KEY AUTOINCREMENT", "run_id TEXT NOT NULL"}
	for _, c := range types.Columns {
		cols = append(cols, fmt.Sprintf("%q %s", c, sqliteColumns[c]))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS movies (%s)", strings.Join(cols, ", "))
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite create table: %w", err)
	}

	return &SQLiteStorage{
		path:   path,
		db:     db,
		runID:  runID,
		logger: logger.With("component", "sqlite_storage"),
	}, nil
}

func (s *SQLiteStorage) Name() string { return "sqlite" }

func (s *SQLiteStorage) Store(records types.RecordSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quoted := make([]string, 0, len(types.Columns)+1)
	quoted = append(quoted, "run_id")
	for _, c := range types.Columns {
		quoted = append(quoted, fmt.Sprintf("%q", c))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(quoted)), ", ")
	query := fmt.Sprintf("INSERT INTO movies (%s) VALUES (%s)", strings.Join(quoted, ", "), placeholders)

	tx, err := s.db.Begin()
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	defer stmt.Close()

	for _, r := range records {
		args := make([]any, 0, len(quoted))
		args = append(args, s.runID)
		for _, f := range r.Fields() {
			args = append(args, f.Value)
		}
		if _, err := stmt.Exec(args...); err != nil {
			_ = tx.Rollback()
			return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("insert: %w", err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}

	s.count += len(records)
	s.logger.Debug("records stored in sqlite", "count", len(records), "total", s.count)
	return nil
}

func (s *SQLiteStorage) Close() error {
	s.logger.Info("SQLite written", "path", s.path, "records", s.count)
	return s.db.Close()
}

// --- MongoDB Storage ---

// MongoStorage writes records to a MongoDB collection.
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	runID      string
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoStorage creates a new MongoDB storage backend.
func NewMongoStorage(uri, database, collection, runID string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		runID:      runID,
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(records types.RecordSet) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]any, len(records))
	for i, r := range records {
		docs[i] = recordDocument(r, s.runID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("insert: %w", err)}
	}

	s.count += len(records)
	s.logger.Debug("records stored in mongodb", "count", len(records), "total", s.count)
	return nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "total_records", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// recordDocument keeps the column order in the stored document.
func recordDocument(r *types.Record, runID string) bson.D {
	doc := make(bson.D, 0, len(types.Columns)+1)
	doc = append(doc, bson.E{Key: "_run_id", Value: runID})
	for _, f := range r.Fields() {
		doc = append(doc, bson.E{Key: f.Name, Value: f.Value})
	}
	return doc
}

// --- Multi-Storage Fan-Out ---

// MultiStorage writes records to multiple backends.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string {
	names := make([]string, len(s.backends))
	for i, b := range s.backends {
		names[i] = b.Name()
	}
	return strings.Join(names, ",")
}

func (s *MultiStorage) Store(records types.RecordSet) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(records); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MultiStorage) Close() error {
	var errs []error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
