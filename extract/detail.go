package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aluiziolira/goodreads-scraper/models"
	"github.com/aluiziolira/goodreads-scraper/parser"
)

// Selectors for the book detail page layout.
const (
	titleSectionSelector = "div.BookPageTitleSection__title"
	titleHeadingSelector = "h1[data-testid=bookTitle]"
	seriesLinkSelector   = "h3 a"
	contributorSelector  = "div.BookPageMetadataSection__contributor span.ContributorLink__name"
	ratingSelector       = "div.RatingStatistics__rating"
	ratingMetaSelector   = "div.RatingStatistics__meta"
	genreChipSelector    = "div[data-testid=genresList] span.Button__labelItem"
	pagesSelector        = "p[data-testid=pagesFormat]"
	publicationSelector  = "p[data-testid=publicationInfo]"
	descriptionSelector  = "div[data-testid=description] span.Formatted"
	coverImageSelector   = "img.ResponsiveImage"
	editionItemSelector  = "div.EditionDetails div.DescListItem"
	workItemSelector     = "div.WorkDetails div.DescListItem"
	settingValueSelector = "dd span.Formatted"
)

const settingLabel = "Setting"

var (
	ratingsCountPattern = regexp.MustCompile(`([\d,]+)\s+ratings?`)
	reviewsCountPattern = regexp.MustCompile(`([\d,]+)\s+reviews?`)
	pagesPattern        = regexp.MustCompile(`(\d+)\s+pages`)
	firstPubPattern     = regexp.MustCompile(`First published\s+(.+)`)
	isbn13Pattern       = regexp.MustCompile(`^(\d{13})`)
	isbn10Pattern       = regexp.MustCompile(`ISBN10:\s*([0-9Xx]{10})`)
)

// detailRules covers the scalar fields that reduce to "select one block,
// capture one group". Structural fields (title block, contributor list,
// genre chips, edition and work detail lists) have dedicated extractors.
var detailRules = []detailRule{
	{
		field:    "rating",
		selector: ratingSelector,
		assign:   func(b *models.BookDetail, v string) { b.Rating = ptrStr(v) },
	},
	{
		field:    "numberOfRatings",
		selector: ratingMetaSelector,
		pattern:  ratingsCountPattern,
		assign:   func(b *models.BookDetail, v string) { b.NumberOfRatings = ptrStr(parser.StripCommas(v)) },
	},
	{
		field:    "numberOfReviews",
		selector: ratingMetaSelector,
		pattern:  reviewsCountPattern,
		assign:   func(b *models.BookDetail, v string) { b.NumberOfReviews = ptrStr(parser.StripCommas(v)) },
	},
	{
		field:    "numberOfPages",
		selector: pagesSelector,
		pattern:  pagesPattern,
		assign:   func(b *models.BookDetail, v string) { b.NumberOfPages = ptrStr(v) },
	},
	{
		field:    "firstPublished",
		selector: publicationSelector,
		pattern:  firstPubPattern,
		assign:   func(b *models.BookDetail, v string) { b.FirstPublished = ptrStr(v) },
	},
	{
		field:    "description",
		selector: descriptionSelector,
		assign:   func(b *models.BookDetail, v string) { b.Description = ptrStr(v) },
	},
}

// Book assembles one detail record from a parsed detail page. Every field is
// filled independently; anything the page does not expose keeps its absence
// value.
func Book(doc *parser.Document) *models.BookDetail {
	book := models.NewBookDetail()
	extractTitleSeries(doc, book)
	extractAuthors(doc, book)
	applyDetailRules(doc, book)
	extractGenres(doc, book)
	extractCoverImage(doc, book)
	extractEditionDetails(doc, book)
	extractSettings(doc, book)
	return book
}

// BookFromHTML parses raw detail-page HTML and assembles the record.
func BookFromHTML(html string) (*models.BookDetail, error) {
	doc, err := parser.Parse(html)
	if err != nil {
		return nil, fmt.Errorf("book page: %w", err)
	}
	return Book(doc), nil
}

// extractTitleSeries reads the title block. A nested series link splits the
// block into series text and heading title; without one the whole block text
// is the title and the book has no series.
func extractTitleSeries(doc *parser.Document, book *models.BookDetail) {
	block := doc.First(titleSectionSelector)
	if !block.Exists() {
		return
	}
	series := block.Find(seriesLinkSelector).First()
	if series.Exists() {
		book.Series = ptrStr(series.Text())
		book.Title = ptrStr(block.Find(titleHeadingSelector).First().Text())
		return
	}
	book.Title = ptrStr(block.Text())
}

func extractAuthors(doc *parser.Document, book *models.BookDetail) {
	doc.Find(contributorSelector).Each(func(_ int, s parser.Selection) {
		if name := s.Text(); name != "" {
			book.Authors = append(book.Authors, name)
		}
	})
}

func extractGenres(doc *parser.Document, book *models.BookDetail) {
	doc.Find(genreChipSelector).Each(func(_ int, chip parser.Selection) {
		text := chip.Text()
		if text == "" || isSentinel(text) {
			return
		}
		book.Genres = append(book.Genres, text)
	})
}

func extractCoverImage(doc *parser.Document, book *models.BookDetail) {
	if src := doc.First(coverImageSelector).AttrOr("src", ""); src != "" {
		book.CoverImage = ptrStr(src)
	}
}

// extractEditionDetails walks the edition list's label/value pairs. The isbn
// value may carry both an ISBN-13 (leading digit run) and a separately
// labeled ISBN-10 in one string; each is captured on its own.
func extractEditionDetails(doc *parser.Document, book *models.BookDetail) {
	doc.Find(editionItemSelector).Each(func(_ int, item parser.Selection) {
		label := strings.ToLower(strings.TrimSuffix(item.Find("dt").First().Text(), ":"))
		value := item.Find("dd").First().Text()
		if value == "" {
			return
		}
		switch label {
		case "format":
			book.EditionDetails.Format = ptrStr(value)
		case "published":
			book.EditionDetails.Published = ptrStr(value)
		case "isbn":
			if m := isbn13Pattern.FindStringSubmatch(value); m != nil {
				book.EditionDetails.ISBN13 = ptrStr(m[1])
			}
			if m := isbn10Pattern.FindStringSubmatch(value); m != nil {
				book.EditionDetails.ISBN10 = ptrStr(m[1])
			}
		case "asin":
			book.EditionDetails.ASIN = ptrStr(value)
		case "language":
			book.EditionDetails.Language = ptrStr(value)
		}
	})
}

// extractSettings reads the work-details item labeled Setting, splits its
// text on commas, strips parenthetical annotations, and deduplicates the
// normalized places keeping first-seen order.
func extractSettings(doc *parser.Document, book *models.BookDetail) {
	seen := make(map[string]struct{})
	doc.Find(workItemSelector).Each(func(_ int, item parser.Selection) {
		if item.Find("dt").First().Text() != settingLabel {
			return
		}
		raw := item.Find(settingValueSelector).First().Text()
		for _, piece := range strings.Split(raw, ",") {
			place := parser.StripParenthetical(piece)
			if place == "" || isSentinel(place) {
				continue
			}
			if _, ok := seen[place]; ok {
				continue
			}
			seen[place] = struct{}{}
			book.Settings = append(book.Settings, place)
		}
	})
}
