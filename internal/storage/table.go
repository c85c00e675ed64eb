package storage

import (
	"io"
	"log/slog"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/IshaanNene/MovieGoat/internal/types"
)

// TableStorage renders records as a text table on Close.
type TableStorage struct {
	out     io.Writer
	records types.RecordSet
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewTableStorage creates a table writer that renders to out.
func NewTableStorage(out io.Writer, logger *slog.Logger) *TableStorage {
	return &TableStorage{
		out:    out,
		logger: logger.With("component", "table_storage"),
	}
}

func (s *TableStorage) Name() string { return "table" }

func (s *TableStorage) Store(records types.RecordSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *TableStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]string, len(s.records))
	for i, r := range s.records {
		rows[i] = r.Row()
	}
	RenderTable(s.out, types.Columns, rows)
	s.logger.Debug("table rendered", "records", len(s.records))
	return nil
}

// RenderTable writes header and rows as a rounded text table.
func RenderTable(out io.Writer, header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(out)

	h := make(table.Row, len(header))
	for i, c := range header {
		h[i] = c
	}
	t.AppendHeader(h)

	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, c := range r {
			row[i] = c
		}
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
