package parser

import (
	"bytes"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/MovieGoat/internal/types"
)

// XPath equivalents of the CSS markers. Class tests match whole tokens.
const (
	itemXPath     = `//div[contains(concat(' ', normalize-space(@class), ' '), ' lister-item ')]`
	categoryXPath = `//div[contains(concat(' ', normalize-space(@class), ' '), ' widget_image ')]`
	imageXPath    = `.//img[@title]`
)

// XPathParser splits pages using XPath expressions via htmlquery.
type XPathParser struct {
	logger *slog.Logger
}

// NewXPathParser creates a new XPath parser.
func NewXPathParser(logger *slog.Logger) *XPathParser {
	return &XPathParser{
		logger: logger.With("component", "xpath_parser"),
	}
}

// Items implements Parser. Each matched node is wrapped as a goquery
// selection so the field extractors apply unchanged.
func (p *XPathParser) Items(resp *types.Response) ([]*goquery.Selection, error) {
	doc, err := p.parse(resp)
	if err != nil {
		return nil, err
	}

	nodes, err := htmlquery.QueryAll(doc, itemXPath)
	if err != nil {
		return nil, &types.ParseError{URL: requestURL(resp), Selector: itemXPath, Err: err}
	}

	items := make([]*goquery.Selection, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, goquery.NewDocumentFromNode(n).Selection)
	}

	p.logger.Debug("items found", "url", requestURL(resp), "count", len(items))
	return items, nil
}

// Categories implements Parser.
func (p *XPathParser) Categories(resp *types.Response) ([]string, error) {
	doc, err := p.parse(resp)
	if err != nil {
		return nil, err
	}

	widgets, err := htmlquery.QueryAll(doc, categoryXPath)
	if err != nil {
		return nil, &types.ParseError{URL: requestURL(resp), Selector: categoryXPath, Err: err}
	}

	var names []string
	for i, w := range widgets {
		img := htmlquery.FindOne(w, imageXPath)
		if img == nil {
			p.logger.Debug("category widget without labelled image", "index", i)
			continue
		}
		names = append(names, htmlquery.SelectAttr(img, CategoryAttr))
	}

	return names, nil
}

// Type returns the parser type identifier.
func (p *XPathParser) Type() string { return "xpath" }

func (p *XPathParser) parse(resp *types.Response) (*html.Node, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.ParseError{URL: requestURL(resp), Err: err}
	}
	return doc, nil
}
