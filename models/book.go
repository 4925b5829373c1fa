// Package models defines the record shapes produced by the extraction pipelines.
package models

import "time"

// EditionDetails holds the label/value pairs of a detail page's edition
// section. Every field is nil when the page does not carry that label.
type EditionDetails struct {
	Format    *string `json:"format"`
	Published *string `json:"published"`
	ISBN13    *string `json:"isbn13"`
	ISBN10    *string `json:"isbn10"`
	ASIN      *string `json:"asin"`
	Language  *string `json:"language"`
}

// BookDetail represents one book detail page. Scalar fields are nil when the
// page does not expose them. Sequence fields are always non-nil so an absent
// list serializes as [] rather than null.
type BookDetail struct {
	Title           *string        `json:"title"`
	Series          *string        `json:"series"`
	Authors         []string       `json:"authors"`
	Rating          *string        `json:"rating"`
	NumberOfRatings *string        `json:"numberOfRatings"`
	NumberOfReviews *string        `json:"numberOfReviews"`
	Genres          []string       `json:"genres"`
	Settings        []string       `json:"settings"`
	NumberOfPages   *string        `json:"numberOfPages"`
	FirstPublished  *string        `json:"firstPublished"`
	Description     *string        `json:"description"`
	CoverImage      *string        `json:"coverImage"`
	EditionDetails  EditionDetails `json:"editionDetails"`
}

// NewBookDetail returns a detail record with every field at its absence value.
func NewBookDetail() *BookDetail {
	return &BookDetail{
		Authors:  []string{},
		Genres:   []string{},
		Settings: []string{},
	}
}

// SearchResult represents one row of a search results listing.
type SearchResult struct {
	Title           *string  `json:"title"`
	Authors         []string `json:"authors"`
	DetailsURL      *string  `json:"detailsUrl"`
	GoodreadsID     *string  `json:"goodreadsId"`
	PublishedYear   *string  `json:"publishedYear"`
	AverageRating   *string  `json:"averageRating"`
	NumberOfRatings *string  `json:"numberOfRatings"`
}

// NewSearchResult returns a search row with every field at its absence value.
func NewSearchResult() *SearchResult {
	return &SearchResult{Authors: []string{}}
}

// ExportRecord pairs a fetched detail record with the id it was fetched
// for. The embedded detail fields marshal inline next to the id.
type ExportRecord struct {
	GoodreadsID string `json:"goodreadsId"`
	*BookDetail
}

// ExportResult holds the overall result of an export run
type ExportResult struct {
	StartTime    time.Time
	EndTime      time.Time
	TotalCount   int
	ErrorCount   int
	FailedIDs    []string
	ErrorsByType map[string]int
	RetryCount   int
	RequestCount int
}
