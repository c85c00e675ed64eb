package types

import (
	"errors"
	"testing"
)

func TestEmptyRecordHasAllColumns(t *testing.T) {
	r := &Record{}

	m := r.Map()
	if len(m) != len(Columns) {
		t.Fatalf("expected %d keys, got %d", len(Columns), len(m))
	}
	for _, col := range Columns {
		v, ok := m[col]
		if !ok {
			t.Errorf("missing key %q", col)
		}
		if v != nil {
			t.Errorf("expected nil for %q, got %v", col, v)
		}
	}

	if got := len(r.MissingColumns()); got != len(Columns) {
		t.Errorf("expected %d missing columns, got %d", len(Columns), got)
	}
}

func TestRecordRow(t *testing.T) {
	r := &Record{
		Title:     Some("Incredibles 2"),
		Year:      Some(2018),
		Category:  Some("Animation"),
		Rating:    Some(7.6),
		BoxOffice: Some(608581744),
	}

	want := []string{"Incredibles 2", "2018", "", "", "", "Animation", "7.6", "", "", "608581744"}
	got := r.Row()
	if len(got) != len(want) {
		t.Fatalf("expected %d cells, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d (%s): expected %q, got %q", i, Columns[i], want[i], got[i])
		}
	}
}

func TestFieldsOrder(t *testing.T) {
	fields := (&Record{}).Fields()
	for i, f := range fields {
		if f.Name != Columns[i] {
			t.Errorf("field %d: expected %q, got %q", i, Columns[i], f.Name)
		}
	}
}

func TestOpt(t *testing.T) {
	if _, ok := Missing[int]().Get(); ok {
		t.Error("missing value reported as present")
	}
	v, ok := Some(0).Get()
	if !ok || v != 0 {
		t.Errorf("expected present zero, got %v %v", v, ok)
	}
	if Some(0).Any() == nil {
		t.Error("present zero must not box to nil")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"PG", "PG"},
		{251410, "251410"},
		{7.0, "7"},
		{8.25, "8.25"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewRequestRejectsRelative(t *testing.T) {
	_, err := NewRequest("/search/title")
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := error(&FetchError{URL: "https://example.com", StatusCode: 503, Err: inner})
	if !errors.Is(err, inner) {
		t.Error("FetchError should unwrap to inner error")
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != 503 {
		t.Errorf("errors.As failed: %v", err)
	}
}
