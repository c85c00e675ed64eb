package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/IshaanNene/MovieGoat/internal/config"
	"github.com/IshaanNene/MovieGoat/internal/observability"
	"github.com/IshaanNene/MovieGoat/internal/types"
)

// State represents the engine's current lifecycle state.
type State int32

const (
	StateIdle    State = 0
	StateRunning State = 1
	StateStopped State = 2
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Fetcher is the interface for all fetcher implementations.
type Fetcher interface {
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)
	Close() error
}

// Parser is the interface for all parser implementations.
type Parser interface {
	Items(resp *types.Response) ([]*goquery.Selection, error)
	Categories(resp *types.Response) ([]string, error)
}

// Storage is the interface for all storage backends.
type Storage interface {
	Store(records types.RecordSet) error
	Close() error
	Name() string
}

// Summary describes a finished run.
type Summary struct {
	RunID         string
	Categories    int
	Offsets       int
	PagesFetched  int64
	PagesFailed   int64
	Records       int
	FieldsMissing map[string]int
	Elapsed       time.Duration
}

// LogValue implements slog.LogValuer.
func (s *Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("categories", s.Categories),
		slog.Int("offsets", s.Offsets),
		slog.Int64("pages_fetched", s.PagesFetched),
		slog.Int64("pages_failed", s.PagesFailed),
		slog.Int("records", s.Records),
		slog.Any("fields_missing", s.FieldsMissing),
		slog.Duration("elapsed", s.Elapsed),
	)
}

// Engine collects listing records category by category, page by page.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	fetcher  Fetcher
	parser   Parser
	storage  Storage
	metrics  *observability.Metrics
	throttle *throttle
	runID    string

	state atomic.Int32
	mu    sync.RWMutex
}

// New creates a new Engine with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		logger:   logger.With("component", "engine"),
		metrics:  observability.NewMetrics(logger),
		throttle: newThrottle(cfg.Scraper.Delay),
		runID:    uuid.NewString(),
	}
}

// RunID identifies the run this engine performs. Storage backends that keep
// several runs side by side tag records with it.
func (e *Engine) RunID() string {
	return e.runID
}

// SetFetcher sets the fetcher used for landing and listing pages.
func (e *Engine) SetFetcher(f Fetcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fetcher = f
}

// SetParser sets the parser implementation.
func (e *Engine) SetParser(p Parser) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parser = p
}

// SetStorage sets the storage implementation.
func (e *Engine) SetStorage(s Storage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.storage = s
}

// SetMetrics replaces the engine's metrics collector.
func (e *Engine) SetMetrics(m *observability.Metrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics = m
}

// Metrics returns the engine's metrics collector.
func (e *Engine) Metrics() *observability.Metrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.metrics
}

// GetState returns the current engine state.
func (e *Engine) GetState() State {
	return State(e.state.Load())
}

// Run performs a complete scrape: resolve categories, plan offsets, collect
// every page and hand the result to storage. If ctx is cancelled during
// collection, the partial set is still stored and the cancellation error is
// returned with the summary.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, fmt.Errorf("engine is in state %s, cannot run", State(e.state.Load()))
	}
	defer e.state.Store(int32(StateStopped))

	if err := e.ready(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := e.runID
	logger := e.logger.With("run_id", runID)

	categories, err := e.resolveCategories(ctx)
	if err != nil {
		e.closeStorage()
		return nil, err
	}

	offsets := PlanOffsets(e.cfg.Scraper.PerCategory, e.cfg.Scraper.PageSize)
	logger.Info("run starting",
		"categories", len(categories),
		"offsets", len(offsets),
		"delay", e.cfg.Scraper.Delay,
	)

	records, collectErr := e.Collect(ctx, categories, offsets)

	storeErr := e.store(records)

	summary := newSummary(runID, len(categories), len(offsets), len(records), e.Metrics().Snapshot())
	summary.Elapsed = time.Since(start)

	if collectErr != nil {
		logger.Warn("run interrupted", "summary", summary, "error", collectErr)
		return summary, errors.Join(collectErr, storeErr)
	}
	if storeErr != nil {
		return summary, storeErr
	}

	logger.Info("run complete", "summary", summary)
	return summary, nil
}

// ready reports whether the required components are set.
func (e *Engine) ready() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.fetcher == nil {
		return types.ErrNoFetcher
	}
	if e.parser == nil {
		return types.ErrNoParser
	}
	return nil
}

func (e *Engine) resolveCategories(ctx context.Context) ([]string, error) {
	if fixed := e.cfg.Scraper.Categories; len(fixed) > 0 {
		e.logger.Info("using configured categories", "count", len(fixed))
		e.metrics.CategoriesFound.Add(int64(len(fixed)))
		return fixed, nil
	}
	return e.DiscoverCategories(ctx)
}

func (e *Engine) store(records types.RecordSet) error {
	e.mu.RLock()
	s := e.storage
	e.mu.RUnlock()

	if s == nil {
		e.logger.Warn("no storage configured, records discarded", "records", len(records))
		return nil
	}

	if err := s.Store(records); err != nil {
		_ = s.Close()
		return err
	}
	e.metrics.RecordsStored.Add(int64(len(records)))

	if err := s.Close(); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	e.logger.Info("records stored", "backend", s.Name(), "records", len(records))
	return nil
}

func (e *Engine) closeStorage() {
	e.mu.RLock()
	s := e.storage
	e.mu.RUnlock()
	if s != nil {
		if err := s.Close(); err != nil {
			e.logger.Error("storage close error", "error", err)
		}
	}
}

// newSummary reads page and field counts from a metrics snapshot.
func newSummary(runID string, categories, offsets, records int, snap map[string]int64) *Summary {
	missing := make(map[string]int, len(types.Columns))
	for _, col := range types.Columns {
		missing[col] = int(snap["fields_missing."+col])
	}
	return &Summary{
		RunID:         runID,
		Categories:    categories,
		Offsets:       offsets,
		PagesFetched:  snap["pages_requested"] - snap["pages_failed"],
		PagesFailed:   snap["pages_failed"],
		Records:       records,
		FieldsMissing: missing,
	}
}
