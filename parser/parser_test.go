package parser

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "valid document",
			input:   `<html><body><h1>Title</h1></body></html>`,
			wantErr: nil,
		},
		{
			name:    "fragment without html envelope",
			input:   `<div class="col"><p>text</p></div>`,
			wantErr: nil,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: ErrEmptyDocument,
		},
		{
			name:    "whitespace only",
			input:   " \n\t ",
			wantErr: ErrEmptyDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if doc == nil {
				t.Fatalf("Parse() returned nil document")
			}
		})
	}
}

func TestDocumentFindAbsence(t *testing.T) {
	doc, err := Parse(`<html><body><p class="present">here</p></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	missing := doc.Find("div.absent")
	if missing.Exists() {
		t.Fatalf("Exists() = true for missing selector")
	}
	if got := missing.Length(); got != 0 {
		t.Fatalf("Length() = %d, want 0", got)
	}
	if got := missing.Text(); got != "" {
		t.Fatalf("Text() = %q, want empty", got)
	}
	if _, ok := missing.Attr("href"); ok {
		t.Fatalf("Attr() reported a value on a missing selection")
	}

	called := false
	missing.Each(func(int, Selection) { called = true })
	if called {
		t.Fatalf("Each() visited nodes of a missing selection")
	}

	if got := missing.First().Find("span").Text(); got != "" {
		t.Fatalf("chained lookup on missing selection = %q, want empty", got)
	}
}

func TestSelectionTextNormalization(t *testing.T) {
	html := "<html><body><div id=\"blurb\">\n  A Tale\n  of <em>Two</em>\tCities\n</div></body></html>"
	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := doc.First("#blurb").Text()
	want := "A Tale of Two Cities"
	if got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestSelectionAttr(t *testing.T) {
	doc, err := Parse(`<html><body><a class="link" href="/book/show/123">title</a></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	link := doc.First("a.link")
	href, ok := link.Attr("href")
	if !ok || href != "/book/show/123" {
		t.Errorf("Attr(href) = %q, %v, want %q, true", href, ok, "/book/show/123")
	}
	if got := link.AttrOr("rel", "none"); got != "none" {
		t.Errorf("AttrOr(rel) = %q, want %q", got, "none")
	}
}

func TestSelectionEachOrder(t *testing.T) {
	doc, err := Parse(`<html><body><ul><li>one</li><li>two</li><li>three</li></ul></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var texts []string
	doc.Find("li").Each(func(_ int, item Selection) {
		texts = append(texts, item.Text())
	})

	want := []string{"one", "two", "three"}
	if len(texts) != len(want) {
		t.Fatalf("visited %d items, want %d", len(texts), len(want))
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "surrounding whitespace",
			input:    "  The Hunger Games  ",
			expected: "The Hunger Games",
		},
		{
			name:     "inner runs collapse",
			input:    "The\n\tHunger   Games",
			expected: "The Hunger Games",
		},
		{
			name:     "non-breaking spaces",
			input:    "The Hunger Games",
			expected: "The Hunger Games",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanText(tt.input)
			if result != tt.expected {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestStripCommas(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "thousands separator",
			input:    "55,061",
			expected: "55061",
		},
		{
			name:     "millions",
			input:    "9,365,720",
			expected: "9365720",
		},
		{
			name:     "no separators",
			input:    "374",
			expected: "374",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripCommas(tt.input)
			if result != tt.expected {
				t.Errorf("StripCommas(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestStripParenthetical(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single annotation",
			input:    "London (England)",
			expected: "London",
		},
		{
			name:     "multiple annotations",
			input:    "Paris (France) (1920s)",
			expected: "Paris",
		},
		{
			name:     "no annotation",
			input:    "District 12, Panem",
			expected: "District 12, Panem",
		},
		{
			name:     "annotation only",
			input:    "(fictional)",
			expected: "",
		},
		{
			name:     "padded input",
			input:    "  Casterbridge (Wessex)  ",
			expected: "Casterbridge",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripParenthetical(tt.input)
			if result != tt.expected {
				t.Errorf("StripParenthetical(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
