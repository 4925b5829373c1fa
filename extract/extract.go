// Package extract turns parsed catalog pages into structured records. Every
// field is extracted independently: a selector or pattern that matches
// nothing leaves that field at its absence value and never disturbs the rest
// of the record.
package extract

import (
	"regexp"

	"github.com/aluiziolira/goodreads-scraper/models"
	"github.com/aluiziolira/goodreads-scraper/parser"
)

// siteRoot prefixes relative hrefs when building absolute detail URLs.
const siteRoot = "https://www.goodreads.com"

// isSentinel reports whether the text is one of the UI control labels that
// expand truncated lists. Page variants use more than one label; all of them
// are filtered from list fields, never stored as data.
func isSentinel(s string) bool {
	switch s {
	case "...more", "…more", "...show all", "…show all":
		return true
	}
	return false
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// detailRule binds a document selector and an optional capture pattern to
// the assignment that writes the value into a detail record.
type detailRule struct {
	field    string
	selector string
	pattern  *regexp.Regexp
	assign   func(*models.BookDetail, string)
}

// rowRule is the same binding scoped to a single search-result row.
type rowRule struct {
	field    string
	selector string
	pattern  *regexp.Regexp
	assign   func(*models.SearchResult, string)
}

func applyDetailRules(doc *parser.Document, book *models.BookDetail) {
	for _, r := range detailRules {
		if v, ok := capture(doc.First(r.selector).Text(), r.pattern); ok {
			r.assign(book, v)
		}
	}
}

func applyRowRules(row parser.Selection, rec *models.SearchResult) {
	for _, r := range rowRules {
		if v, ok := capture(row.Find(r.selector).First().Text(), r.pattern); ok {
			r.assign(rec, v)
		}
	}
}

// capture applies an optional pattern to the selected text. A nil pattern
// passes the text through unchanged; an empty text or a miss reports false.
func capture(text string, pattern *regexp.Regexp) (string, bool) {
	if text == "" {
		return "", false
	}
	if pattern == nil {
		return text, true
	}
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
