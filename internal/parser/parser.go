package parser

import (
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/MovieGoat/internal/types"
)

// Structural markers on listing and landing pages.
const (
	ItemSelector     = "div.lister-item"
	CategorySelector = "div.widget_image"
	CategoryImage    = "img[title]"
	CategoryAttr     = "title"
)

// Parser splits fetched pages into the pieces the engine works on.
type Parser interface {
	// Items returns one fragment per listing entry, in document order.
	Items(resp *types.Response) ([]*goquery.Selection, error)

	// Categories returns the category labels of a landing page, in document
	// order. Duplicates are kept.
	Categories(resp *types.Response) ([]string, error)

	// Type returns the parser type identifier.
	Type() string
}

// New creates the parser selected by parserType ("css" or "xpath").
func New(parserType string, logger *slog.Logger) (Parser, error) {
	switch parserType {
	case "", "css":
		return NewCSSParser(logger), nil
	case "xpath":
		return NewXPathParser(logger), nil
	default:
		return nil, fmt.Errorf("unsupported parser type: %s", parserType)
	}
}

func requestURL(resp *types.Response) string {
	if resp.Request == nil {
		return resp.FinalURL
	}
	return resp.Request.URLString()
}
