package types

import (
	"strconv"
)

// Column names in the fixed output order.
const (
	ColTitle       = "title"
	ColYear        = "year"
	ColCertificate = "certificate"
	ColLength      = "length"
	ColGenres      = "genres"
	ColCategory    = "category"
	ColRating      = "rating"
	ColMetascore   = "metascore"
	ColTotalVotes  = "total_votes"
	ColBoxOffice   = "US_box_office"
)

// Columns is the header row of every tabular export.
var Columns = []string{
	ColTitle,
	ColYear,
	ColCertificate,
	ColLength,
	ColGenres,
	ColCategory,
	ColRating,
	ColMetascore,
	ColTotalVotes,
	ColBoxOffice,
}

// Opt is a field value that is either present or missing.
// The zero value is missing.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some returns a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Valid: true}
}

// Missing returns the missing sentinel for T.
func Missing[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Any returns the value boxed, or nil when missing.
func (o Opt[T]) Any() any {
	if !o.Valid {
		return nil
	}
	return o.Value
}

// Record is one movie extracted from a listing entry.
type Record struct {
	Title       Opt[string]
	Year        Opt[int]
	Certificate Opt[string]
	Length      Opt[string]
	Genres      Opt[string]
	Category    Opt[string]
	Rating      Opt[float64]
	Metascore   Opt[int]
	TotalVotes  Opt[int]
	BoxOffice   Opt[int]
}

// Field is a single named value of a record. Value is nil when missing.
type Field struct {
	Name  string
	Value any
}

// Fields returns all ten fields in column order.
func (r *Record) Fields() []Field {
	return []Field{
		{ColTitle, r.Title.Any()},
		{ColYear, r.Year.Any()},
		{ColCertificate, r.Certificate.Any()},
		{ColLength, r.Length.Any()},
		{ColGenres, r.Genres.Any()},
		{ColCategory, r.Category.Any()},
		{ColRating, r.Rating.Any()},
		{ColMetascore, r.Metascore.Any()},
		{ColTotalVotes, r.TotalVotes.Any()},
		{ColBoxOffice, r.BoxOffice.Any()},
	}
}

// Map returns the record keyed by column name. All ten keys are always set.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(Columns))
	for _, f := range r.Fields() {
		m[f.Name] = f.Value
	}
	return m
}

// Row returns the record formatted as strings in column order, with missing
// values rendered as empty cells.
func (r *Record) Row() []string {
	fields := r.Fields()
	row := make([]string, len(fields))
	for i, f := range fields {
		row[i] = FormatValue(f.Value)
	}
	return row
}

// MissingColumns returns the names of the fields that are missing.
func (r *Record) MissingColumns() []string {
	var out []string
	for _, f := range r.Fields() {
		if f.Value == nil {
			out = append(out, f.Name)
		}
	}
	return out
}

// FormatValue renders a field value as a table cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// RecordSet is the ordered collection of records gathered during a run.
type RecordSet []*Record
