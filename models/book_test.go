package models

import (
	"encoding/json"
	"testing"
)

func TestBookDetailJSONAbsence(t *testing.T) {
	data, err := json.Marshal(NewBookDetail())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"title":null,"series":null,"authors":[],"rating":null,` +
		`"numberOfRatings":null,"numberOfReviews":null,"genres":[],"settings":[],` +
		`"numberOfPages":null,"firstPublished":null,"description":null,` +
		`"coverImage":null,"editionDetails":{"format":null,"published":null,` +
		`"isbn13":null,"isbn10":null,"asin":null,"language":null}}`
	if string(data) != want {
		t.Errorf("empty detail JSON = %s, want %s", data, want)
	}
}

func TestSearchResultJSONAbsence(t *testing.T) {
	data, err := json.Marshal(NewSearchResult())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"title":null,"authors":[],"detailsUrl":null,"goodreadsId":null,` +
		`"publishedYear":null,"averageRating":null,"numberOfRatings":null}`
	if string(data) != want {
		t.Errorf("empty search row JSON = %s, want %s", data, want)
	}
}

func TestExportRecordJSONFlattens(t *testing.T) {
	title := "The Hunger Games"
	detail := NewBookDetail()
	detail.Title = &title

	data, err := json.Marshal(&ExportRecord{GoodreadsID: "2767052", BookDetail: detail})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if string(decoded["goodreadsId"]) != `"2767052"` {
		t.Errorf("goodreadsId = %s, want %q", decoded["goodreadsId"], "2767052")
	}
	if string(decoded["title"]) != `"The Hunger Games"` {
		t.Errorf("title = %s, want %q", decoded["title"], "The Hunger Games")
	}
	if _, nested := decoded["bookDetail"]; nested {
		t.Errorf("detail fields should inline, found nested bookDetail object")
	}
}
