package extract

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aluiziolira/goodreads-scraper/parser"
)

// searchRowFixture assembles one result row in the shape the site's search
// listing serves. An empty href renders a title link without one.
type searchRowFixture struct {
	href    string
	title   string
	authors []string
	mini    string
	pub     string
}

func (r searchRowFixture) render() string {
	var b strings.Builder
	b.WriteString(`<tr itemscope itemtype="http://schema.org/Book"><td>`)
	if r.title != "" {
		if r.href != "" {
			b.WriteString(`<a class="bookTitle" itemprop="url" href="`)
			b.WriteString(r.href)
			b.WriteString(`">`)
		} else {
			b.WriteString(`<a class="bookTitle">`)
		}
		b.WriteString(`<span itemprop="name">`)
		b.WriteString(r.title)
		b.WriteString(`</span></a>`)
	}
	for _, author := range r.authors {
		b.WriteString(`<span itemprop="author"><a class="authorName" itemprop="url" href="/author/show/153394"><span itemprop="name">`)
		b.WriteString(author)
		b.WriteString(`</span></a></span>`)
	}
	b.WriteString(`<span class="greyText smallText uitext">`)
	if r.mini != "" {
		b.WriteString(`<span class="minirating">`)
		b.WriteString(r.mini)
		b.WriteString(`</span>`)
	}
	if r.pub != "" {
		b.WriteString(` — `)
		b.WriteString(r.pub)
	}
	b.WriteString(`</span></td></tr>`)
	return b.String()
}

func searchPage(rows ...searchRowFixture) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="tableList">`)
	for _, row := range rows {
		b.WriteString(row.render())
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

func TestSearchResultsStandardRows(t *testing.T) {
	html := searchPage(
		searchRowFixture{
			href:    "/book/show/2767052-the-hunger-games?from_search=true",
			title:   "The Hunger Games",
			authors: []string{"Suzanne Collins"},
			mini:    "4.34 avg rating — 9,365,720 ratings",
			pub:     "published 2008",
		},
		searchRowFixture{
			href:    "/book/show/6148028-catching-fire",
			title:   "Catching Fire",
			authors: []string{"Suzanne Collins"},
			mini:    "4.34 avg rating — 55,061 ratings",
			pub:     "published 2009",
		},
	)

	results, err := SearchResultsFromHTML(html)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("rows = %d, want 2", len(results))
	}

	first := results[0]
	if got := str(first.Title); got != "The Hunger Games" {
		t.Errorf("title = %q, want %q", got, "The Hunger Games")
	}
	if len(first.Authors) != 1 || first.Authors[0] != "Suzanne Collins" {
		t.Errorf("authors = %v, want [Suzanne Collins]", first.Authors)
	}
	wantURL := "https://www.goodreads.com/book/show/2767052-the-hunger-games?from_search=true"
	if got := str(first.DetailsURL); got != wantURL {
		t.Errorf("detailsUrl = %q, want %q", got, wantURL)
	}
	if got := str(first.GoodreadsID); got != "2767052" {
		t.Errorf("goodreadsId = %q, want %q", got, "2767052")
	}
	if got := str(first.PublishedYear); got != "2008" {
		t.Errorf("publishedYear = %q, want %q", got, "2008")
	}
	if got := str(first.AverageRating); got != "4.34" {
		t.Errorf("averageRating = %q, want %q", got, "4.34")
	}
	if got := str(first.NumberOfRatings); got != "9365720" {
		t.Errorf("numberOfRatings = %q, want %q", got, "9365720")
	}

	second := results[1]
	if got := str(second.Title); got != "Catching Fire" {
		t.Errorf("second title = %q, want %q", got, "Catching Fire")
	}
	if got := str(second.NumberOfRatings); got != "55061" {
		t.Errorf("second numberOfRatings = %q, want %q", got, "55061")
	}
}

func TestSearchRowWithoutHref(t *testing.T) {
	html := searchPage(searchRowFixture{
		title:   "Mystery Listing",
		authors: []string{"Unknown"},
		mini:    "3.50 avg rating — 12 ratings",
	})

	results, err := SearchResultsFromHTML(html)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("rows = %d, want 1", len(results))
	}

	row := results[0]
	if row.DetailsURL != nil {
		t.Errorf("detailsUrl = %q, want absent", *row.DetailsURL)
	}
	if row.GoodreadsID != nil {
		t.Errorf("goodreadsId = %q, want absent", *row.GoodreadsID)
	}
	if got := str(row.Title); got != "Mystery Listing" {
		t.Errorf("title = %q, want %q", got, "Mystery Listing")
	}
	if got := str(row.AverageRating); got != "3.50" {
		t.Errorf("averageRating = %q, want %q", got, "3.50")
	}
}

func TestSearchRowAbsoluteHref(t *testing.T) {
	html := searchPage(searchRowFixture{
		href:  "https://www.goodreads.com/book/show/5107-the-catcher-in-the-rye",
		title: "The Catcher in the Rye",
	})

	results, err := SearchResultsFromHTML(html)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("rows = %d, want 1", len(results))
	}

	want := "https://www.goodreads.com/book/show/5107-the-catcher-in-the-rye"
	if got := str(results[0].DetailsURL); got != want {
		t.Errorf("detailsUrl = %q, want %q", got, want)
	}
	if got := str(results[0].GoodreadsID); got != "5107" {
		t.Errorf("goodreadsId = %q, want %q", got, "5107")
	}
}

func TestSearchRowUnrecognizedPath(t *testing.T) {
	html := searchPage(searchRowFixture{
		href:  "/work/editions/2792775-the-hunger-games",
		title: "The Hunger Games",
	})

	results, err := SearchResultsFromHTML(html)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("rows = %d, want 1", len(results))
	}

	want := "https://www.goodreads.com/work/editions/2792775-the-hunger-games"
	if got := str(results[0].DetailsURL); got != want {
		t.Errorf("detailsUrl = %q, want %q", got, want)
	}
	if results[0].GoodreadsID != nil {
		t.Errorf("goodreadsId = %q, want absent", *results[0].GoodreadsID)
	}
}

func TestSearchRowMultipleAuthors(t *testing.T) {
	html := searchPage(searchRowFixture{
		href:    "/book/show/7190-good-omens",
		title:   "Good Omens",
		authors: []string{"Terry Pratchett", "Neil Gaiman"},
	})

	results, err := SearchResultsFromHTML(html)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("rows = %d, want 1", len(results))
	}

	authors := results[0].Authors
	if len(authors) != 2 || authors[0] != "Terry Pratchett" || authors[1] != "Neil Gaiman" {
		t.Errorf("authors = %v, want [Terry Pratchett Neil Gaiman]", authors)
	}
}

func TestSearchResultsEmptyPage(t *testing.T) {
	results, err := SearchResultsFromHTML(`<html><body><table class="tableList"></table></body></html>`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("results = %v, want empty slice", results)
	}

	data, err := json.Marshal(results)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("empty results JSON = %s, want []", data)
	}
}

func TestSearchResultsFromHTMLEmptyInput(t *testing.T) {
	_, err := SearchResultsFromHTML("")
	if !errors.Is(err, parser.ErrEmptyDocument) {
		t.Fatalf("error = %v, want ErrEmptyDocument", err)
	}
}
