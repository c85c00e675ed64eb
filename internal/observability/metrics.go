package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/MovieGoat/internal/types"
)

// Metrics tracks counters for a scrape run.
type Metrics struct {
	// Page metrics
	PagesRequested  atomic.Int64
	PagesFailed     atomic.Int64
	BytesDownloaded atomic.Int64

	// Record metrics
	FragmentsSeen    atomic.Int64
	RecordsCollected atomic.Int64
	RecordsStored    atomic.Int64

	CategoriesFound atomic.Int64

	fieldsMissing map[string]*atomic.Int64
	server        *http.Server
	logger        *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	missing := make(map[string]*atomic.Int64, len(types.Columns))
	for _, col := range types.Columns {
		missing[col] = new(atomic.Int64)
	}
	return &Metrics{
		fieldsMissing: missing,
		logger:        logger.With("component", "metrics"),
	}
}

// ObserveRecord counts a collected record and each of its missing fields.
func (m *Metrics) ObserveRecord(r *types.Record) {
	m.RecordsCollected.Add(1)
	for _, col := range r.MissingColumns() {
		if c, ok := m.fieldsMissing[col]; ok {
			c.Add(1)
		}
	}
}

// FieldMissing returns how many collected records lacked the given column.
func (m *Metrics) FieldMissing(col string) int64 {
	if c, ok := m.fieldsMissing[col]; ok {
		return c.Load()
	}
	return 0
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"moviegoat_pages_requested_total", "Total listing pages requested", m.PagesRequested.Load()},
		{"moviegoat_pages_failed_total", "Total listing pages that failed", m.PagesFailed.Load()},
		{"moviegoat_bytes_downloaded_total", "Total bytes downloaded", m.BytesDownloaded.Load()},
		{"moviegoat_fragments_seen_total", "Total listing entries seen", m.FragmentsSeen.Load()},
		{"moviegoat_records_collected_total", "Total records collected", m.RecordsCollected.Load()},
		{"moviegoat_records_stored_total", "Total records stored", m.RecordsStored.Load()},
		{"moviegoat_categories_found_total", "Total categories discovered", m.CategoriesFound.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}

	const missing = "moviegoat_fields_missing_total"
	fmt.Fprintf(w, "# HELP %s Records collected without the field\n", missing)
	fmt.Fprintf(w, "# TYPE %s counter\n", missing)
	for _, col := range types.Columns {
		fmt.Fprintf(w, "%s{field=%q} %d\n", missing, col, m.fieldsMissing[col].Load())
	}
}

// StartServer starts the metrics HTTP server in the background.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Shutdown stops the metrics server if it was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	snap := map[string]int64{
		"pages_requested":   m.PagesRequested.Load(),
		"pages_failed":      m.PagesFailed.Load(),
		"bytes_downloaded":  m.BytesDownloaded.Load(),
		"fragments_seen":    m.FragmentsSeen.Load(),
		"records_collected": m.RecordsCollected.Load(),
		"records_stored":    m.RecordsStored.Load(),
		"categories_found":  m.CategoriesFound.Load(),
	}
	for col, c := range m.fieldsMissing {
		snap["fields_missing."+col] = c.Load()
	}
	return snap
}
