// Package parser adapts raw HTML into a tolerant, selector-queryable view.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrEmptyDocument reports input that cannot be interpreted as a document.
var ErrEmptyDocument = errors.New("empty document")

var innerWhitespace = regexp.MustCompile(`\s+`)

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)

// Document wraps a parsed HTML tree. Lookups on it degrade to empty
// selections instead of failing, so callers treat "not found" as absence.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from an HTML string. It fails only when the input
// holds no markup at all; malformed fragments still yield a queryable tree.
func Parse(html string) (*Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyDocument
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Find returns every node matching the CSS selector, in document order.
func (d *Document) Find(selector string) Selection {
	if d == nil || d.doc == nil {
		return Selection{}
	}
	return Selection{sel: d.doc.Find(selector)}
}

// First returns the first node matching the CSS selector.
func (d *Document) First(selector string) Selection {
	return d.Find(selector).First()
}

// Selection is a possibly-empty set of matched nodes.
type Selection struct {
	sel *goquery.Selection
}

// Find returns every descendant matching the CSS selector.
func (s Selection) Find(selector string) Selection {
	if s.sel == nil {
		return Selection{}
	}
	return Selection{sel: s.sel.Find(selector)}
}

// First narrows the selection to its first node.
func (s Selection) First() Selection {
	if s.sel == nil {
		return Selection{}
	}
	return Selection{sel: s.sel.First()}
}

// Each visits every node in the selection in document order.
func (s Selection) Each(fn func(int, Selection)) {
	if s.sel == nil {
		return
	}
	s.sel.Each(func(i int, sel *goquery.Selection) {
		fn(i, Selection{sel: sel})
	})
}

// Length reports how many nodes matched.
func (s Selection) Length() int {
	if s.sel == nil {
		return 0
	}
	return s.sel.Length()
}

// Exists reports whether at least one node matched.
func (s Selection) Exists() bool {
	return s.Length() > 0
}

// Text returns the visible text of the selection with whitespace collapsed
// and trimmed. Empty selections yield "".
func (s Selection) Text() string {
	if s.sel == nil {
		return ""
	}
	return CleanText(s.sel.Text())
}

// Attr returns the named attribute of the first node, and whether it exists.
func (s Selection) Attr(name string) (string, bool) {
	if s.sel == nil {
		return "", false
	}
	return s.sel.Attr(name)
}

// AttrOr returns the named attribute of the first node, or def when absent.
func (s Selection) AttrOr(name, def string) string {
	if v, ok := s.Attr(name); ok {
		return v
	}
	return def
}

// CleanText collapses whitespace runs to single spaces and trims the ends.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

// StripCommas removes thousands separators from numeric text.
func StripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

// StripParenthetical removes parenthesized annotations such as "(England)".
func StripParenthetical(s string) string {
	return CleanText(parenthetical.ReplaceAllString(s, " "))
}
