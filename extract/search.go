package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aluiziolira/goodreads-scraper/models"
	"github.com/aluiziolira/goodreads-scraper/parser"
)

// Selectors for the search results listing.
const (
	searchRowSelector  = "tr[itemtype='http://schema.org/Book']"
	titleLinkSelector  = "a.bookTitle"
	titleNameSelector  = "a.bookTitle span[itemprop=name]"
	rowAuthorSelector  = "a.authorName span[itemprop=name]"
	rowGreyTextSelect  = "span.greyText.smallText.uitext"
	miniRatingSelector = "span.minirating"
)

var (
	bookIDPattern    = regexp.MustCompile(`/book/show/(\d+)`)
	publishedPattern = regexp.MustCompile(`published\s+(\d{4})`)
	avgRatingPattern = regexp.MustCompile(`([\d.]+)\s+avg rating`)
	miniCountPattern = regexp.MustCompile(`—\s*([\d,]+)\s+ratings?`)
)

// rowRules covers the per-row scalar fields. The details link and the author
// list are structural and have dedicated extractors.
var rowRules = []rowRule{
	{
		field:    "title",
		selector: titleNameSelector,
		assign:   func(r *models.SearchResult, v string) { r.Title = ptrStr(v) },
	},
	{
		field:    "publishedYear",
		selector: rowGreyTextSelect,
		pattern:  publishedPattern,
		assign:   func(r *models.SearchResult, v string) { r.PublishedYear = ptrStr(v) },
	},
	{
		field:    "averageRating",
		selector: miniRatingSelector,
		pattern:  avgRatingPattern,
		assign:   func(r *models.SearchResult, v string) { r.AverageRating = ptrStr(v) },
	},
	{
		field:    "numberOfRatings",
		selector: miniRatingSelector,
		pattern:  miniCountPattern,
		assign:   func(r *models.SearchResult, v string) { r.NumberOfRatings = ptrStr(parser.StripCommas(v)) },
	},
}

// SearchResults assembles every book row of a results page, preserving
// document order. A page with no rows yields an empty, non-nil slice.
func SearchResults(doc *parser.Document) []*models.SearchResult {
	results := make([]*models.SearchResult, 0)
	doc.Find(searchRowSelector).Each(func(_ int, row parser.Selection) {
		results = append(results, searchRow(row))
	})
	return results
}

// SearchResultsFromHTML parses raw results-page HTML and assembles the rows.
func SearchResultsFromHTML(html string) ([]*models.SearchResult, error) {
	doc, err := parser.Parse(html)
	if err != nil {
		return nil, fmt.Errorf("search page: %w", err)
	}
	return SearchResults(doc), nil
}

func searchRow(row parser.Selection) *models.SearchResult {
	rec := models.NewSearchResult()
	applyRowRules(row, rec)
	extractRowAuthors(row, rec)
	extractRowLink(row, rec)
	return rec
}

func extractRowAuthors(row parser.Selection, rec *models.SearchResult) {
	row.Find(rowAuthorSelector).Each(func(_ int, s parser.Selection) {
		if name := s.Text(); name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	})
}

// extractRowLink resolves the title link into an absolute details URL and
// pulls the numeric book id out of its path. A row without an href keeps
// both fields absent; an href whose path has no recognizable id keeps only
// the id absent.
func extractRowLink(row parser.Selection, rec *models.SearchResult) {
	href, ok := row.Find(titleLinkSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return
	}
	u := href
	if !strings.HasPrefix(u, "http") {
		u = siteRoot + u
	}
	rec.DetailsURL = ptrStr(u)
	if m := bookIDPattern.FindStringSubmatch(u); m != nil {
		rec.GoodreadsID = ptrStr(m[1])
	}
}
