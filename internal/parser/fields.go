package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/MovieGoat/internal/types"
)

// Selectors for the fields of a single listing entry.
const (
	selIndex       = "span.lister-item-index"
	selYear        = "span.lister-item-year"
	selCertificate = "span.certificate"
	selRuntime     = "span.runtime"
	selGenre       = "span.genre"
	selRating      = "div.inline-block.ratings-imdb-rating"
	selMetascore   = "span.metascore"
	selNumbers     = "p.sort-num_votes-visible"

	attrValue = "data-value"

	votesSpan     = 1
	boxOfficeSpan = 4
)

// ExtractRecord builds a record from one listing entry. The category is the
// one the entry was requested under, not read from the markup.
func ExtractRecord(item *goquery.Selection, category string) *types.Record {
	return &types.Record{
		Title:       Title(item),
		Year:        Year(item),
		Certificate: Certificate(item),
		Length:      Length(item),
		Genres:      Genres(item),
		Category:    Category(category),
		Rating:      Rating(item),
		Metascore:   Metascore(item),
		TotalVotes:  TotalVotes(item),
		BoxOffice:   BoxOffice(item),
	}
}

// Category is the label the entry was requested under.
func Category(name string) types.Opt[string] {
	return types.Some(name)
}

// Title is the text of the element right after the ranking index.
func Title(item *goquery.Selection) types.Opt[string] {
	idx := find(item, selIndex)
	if idx == nil {
		return types.Missing[string]()
	}
	next := idx.Next()
	if next.Length() == 0 {
		return types.Missing[string]()
	}
	return types.Some(next.Text())
}

// Year reads the four digits following the opening parenthesis of "(2018)".
func Year(item *goquery.Selection) types.Opt[int] {
	raw, ok := text(item, selYear)
	if !ok {
		return types.Missing[int]()
	}
	r := []rune(raw)
	if len(r) < 5 {
		return types.Missing[int]()
	}
	return atoi(string(r[1:5]))
}

func Certificate(item *goquery.Selection) types.Opt[string] {
	return textOpt(item, selCertificate)
}

// Length is the runtime text as displayed, e.g. "118 min".
func Length(item *goquery.Selection) types.Opt[string] {
	return textOpt(item, selRuntime)
}

// Genres drops trailing whitespace and the leading newline the markup
// carries before the genre list.
func Genres(item *goquery.Selection) types.Opt[string] {
	raw, ok := text(item, selGenre)
	if !ok {
		return types.Missing[string]()
	}
	r := []rune(strings.TrimRightFunc(raw, unicode.IsSpace))
	if len(r) < 2 {
		return types.Missing[string]()
	}
	return types.Some(string(r[1:]))
}

func Rating(item *goquery.Selection) types.Opt[float64] {
	sel := find(item, selRating)
	if sel == nil {
		return types.Missing[float64]()
	}
	v, ok := sel.Attr(attrValue)
	if !ok {
		return types.Missing[float64]()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return types.Missing[float64]()
	}
	return types.Some(f)
}

func Metascore(item *goquery.Selection) types.Opt[int] {
	raw, ok := text(item, selMetascore)
	if !ok {
		return types.Missing[int]()
	}
	return atoi(strings.TrimSpace(raw))
}

// TotalVotes reads the raw vote count. Separators are not expected here.
func TotalVotes(item *goquery.Selection) types.Opt[int] {
	v, ok := numberAttr(item, votesSpan)
	if !ok {
		return types.Missing[int]()
	}
	return atoi(v)
}

// BoxOffice reads the gross, which is published with thousands separators.
func BoxOffice(item *goquery.Selection) types.Opt[int] {
	v, ok := numberAttr(item, boxOfficeSpan)
	if !ok {
		return types.Missing[int]()
	}
	return atoi(strings.ReplaceAll(v, ",", ""))
}

func find(item *goquery.Selection, selector string) *goquery.Selection {
	if item == nil {
		return nil
	}
	sel := item.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return sel
}

func text(item *goquery.Selection, selector string) (string, bool) {
	sel := find(item, selector)
	if sel == nil {
		return "", false
	}
	return sel.Text(), true
}

func textOpt(item *goquery.Selection, selector string) types.Opt[string] {
	t, ok := text(item, selector)
	if !ok {
		return types.Missing[string]()
	}
	return types.Some(t)
}

func numberAttr(item *goquery.Selection, span int) (string, bool) {
	p := find(item, selNumbers)
	if p == nil {
		return "", false
	}
	return p.Find("span").Eq(span).Attr(attrValue)
}

func atoi(s string) types.Opt[int] {
	n, err := strconv.Atoi(s)
	if err != nil {
		return types.Missing[int]()
	}
	return types.Some(n)
}
