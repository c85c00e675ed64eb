package parser

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/IshaanNene/MovieGoat/internal/types"
)

var (
	itemMatcher     = cascadia.MustCompile(ItemSelector)
	categoryMatcher = cascadia.MustCompile(CategorySelector)
	imageMatcher    = cascadia.MustCompile(CategoryImage)
)

// CSSParser splits pages using CSS selectors via goquery.
type CSSParser struct {
	logger *slog.Logger
}

// NewCSSParser creates a new CSS selector parser.
func NewCSSParser(logger *slog.Logger) *CSSParser {
	return &CSSParser{
		logger: logger.With("component", "css_parser"),
	}
}

// Items implements Parser.
func (p *CSSParser) Items(resp *types.Response) ([]*goquery.Selection, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: requestURL(resp), Err: err}
	}

	var items []*goquery.Selection
	doc.FindMatcher(itemMatcher).Each(func(i int, sel *goquery.Selection) {
		items = append(items, sel)
	})

	p.logger.Debug("items found", "url", requestURL(resp), "count", len(items))
	return items, nil
}

// Categories implements Parser.
func (p *CSSParser) Categories(resp *types.Response) ([]string, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: requestURL(resp), Err: err}
	}

	var names []string
	doc.FindMatcher(categoryMatcher).Each(func(i int, sel *goquery.Selection) {
		name, ok := sel.FindMatcher(imageMatcher).First().Attr(CategoryAttr)
		if !ok {
			p.logger.Debug("category widget without labelled image", "index", i)
			return
		}
		names = append(names, name)
	})

	return names, nil
}

// Type returns the parser type identifier.
func (p *CSSParser) Type() string { return "css" }
