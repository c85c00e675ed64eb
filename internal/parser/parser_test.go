package parser

import (
	"log/slog"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/MovieGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func makeResp(t *testing.T, url, body string) *types.Response {
	t.Helper()
	req, err := types.NewRequest(url)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return &types.Response{
		Request:     req,
		StatusCode:  200,
		Body:        []byte(body),
		ContentType: "text/html",
	}
}

func allParsers() []Parser {
	return []Parser{NewCSSParser(testLogger), NewXPathParser(testLogger)}
}

func TestParserCategories(t *testing.T) {
	body := readFixture(t, "landing.html")
	want := []string{"Action", "Adventure", "Action", "Sci-Fi"}

	for _, p := range allParsers() {
		t.Run(p.Type(), func(t *testing.T) {
			got, err := p.Categories(makeResp(t, "https://www.imdb.com/feature/genre", body))
			if err != nil {
				t.Fatalf("categories: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("categories mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParserCategoriesEmpty(t *testing.T) {
	for _, p := range allParsers() {
		got, err := p.Categories(makeResp(t, "https://example.com/", "<html><body></body></html>"))
		if err != nil {
			t.Fatalf("%s: categories: %v", p.Type(), err)
		}
		if len(got) != 0 {
			t.Errorf("%s: expected no categories, got %v", p.Type(), got)
		}
	}
}

func TestParsersAgreeOnItems(t *testing.T) {
	body := readFixture(t, "listing.html")

	var results [][]*types.Record
	for _, p := range allParsers() {
		items, err := p.Items(makeResp(t, "https://www.imdb.com/search/title/?genres=animation", body))
		if err != nil {
			t.Fatalf("%s: items: %v", p.Type(), err)
		}
		if len(items) != 2 {
			t.Fatalf("%s: expected 2 items, got %d", p.Type(), len(items))
		}
		var recs []*types.Record
		for _, it := range items {
			recs = append(recs, ExtractRecord(it, "Animation"))
		}
		results = append(results, recs)
	}

	if diff := cmp.Diff(results[0], results[1]); diff != "" {
		t.Errorf("css and xpath disagree (-css +xpath):\n%s", diff)
	}
	if title, _ := results[1][0].Title.Get(); title != "Incredibles 2" {
		t.Errorf("expected Incredibles 2, got %q", title)
	}
}

func TestParserNoItems(t *testing.T) {
	for _, p := range allParsers() {
		items, err := p.Items(makeResp(t, "https://example.com/", "<html><body><p>nothing</p></body></html>"))
		if err != nil {
			t.Fatalf("%s: items: %v", p.Type(), err)
		}
		if len(items) != 0 {
			t.Errorf("%s: expected no items, got %d", p.Type(), len(items))
		}
	}
}

func TestNewParser(t *testing.T) {
	for _, typ := range []string{"css", "xpath"} {
		p, err := New(typ, testLogger)
		if err != nil {
			t.Fatalf("new %s: %v", typ, err)
		}
		if p.Type() != typ {
			t.Errorf("expected %s, got %s", typ, p.Type())
		}
	}
	if _, err := New("regex", testLogger); err == nil {
		t.Error("expected error for unsupported parser type")
	}
}
