package listing

import (
	"reflect"
	"testing"

	"zappavault/internal/config"
)

func sourceKeys(records []Record) []string {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.SourceKey)
	}
	return keys
}

func TestExtractStripsBookmarkSuffix(t *testing.T) {
	text := "1966 – Freak Out!Bookmark\n1979 – Joe's Garage: Act IBookmark\n"
	records := New(config.Listing{}).Extract(text)
	want := []string{"1966 – Freak Out!", "1979 – Joe's Garage: Act I"}
	if got := sourceKeys(records); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if records[1].Year != "1979" || records[1].Title != "Joe's Garage: Act I" {
		t.Fatalf("unexpected record %+v", records[1])
	}
}

func TestExtractFiltersNoiseAndShortTitles(t *testing.T) {
	text := `Albums
1969 - Hot Rats (23)
1970 — Toggle
1971 – EPS
1972-Waka/Jawaka (+4)
1973 – Ok
Seeders Leechers
1974 – Apostrophe (')Bookmark
1975 – One Size Fits All (4.5/5)
not a release line
`
	records, stats := New(config.Listing{}).ExtractWithStats(text)
	want := []string{
		"1969 – Hot Rats",
		"1972 – Waka/Jawaka",
		"1974 – Apostrophe (')",
		"1975 – One Size Fits All",
	}
	if got := sourceKeys(records); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if stats.Lines != 10 || stats.Matched != 7 || stats.Noise != 2 || stats.TooShort != 1 || stats.Extracted != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestExtractDeduplicatesBySourceKeyOnly(t *testing.T) {
	text := "1968 – Lumpy Gravy\n1968 – Lumpy Gravy\n1968 – LUMPY GRAVY\n1968 –  Lumpy   Gravy \n"
	records, stats := New(config.Listing{}).ExtractWithStats(text)
	want := []string{"1968 – Lumpy Gravy", "1968 – LUMPY GRAVY"}
	if got := sourceKeys(records); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if stats.Duplicates != 2 {
		t.Fatalf("expected 2 duplicates, got %d", stats.Duplicates)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	records, stats := New(config.Listing{}).ExtractWithStats("")
	if len(records) != 0 || stats.Lines != 0 {
		t.Fatalf("expected nothing from empty input, got %v %+v", records, stats)
	}
}

func TestExtractCustomVocabulary(t *testing.T) {
	e := New(config.Listing{NoiseWords: []string{"Uncle Meat"}, RunOnSuffixes: []string{"★"}})
	records := e.Extract("1969 – Uncle Meat\n1969 – Hot Rats★\n1966 – Freak Out!Bookmark\n")
	want := []string{"1969 – Hot Rats", "1966 – Freak Out!Bookmark"}
	if got := sourceKeys(records); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSuffixOnlyTitleIsKept(t *testing.T) {
	records := New(config.Listing{}).Extract("1999 – Bookmark\n")
	if len(records) != 1 || records[0].Title != "Bookmark" {
		t.Fatalf("expected bare suffix word to survive as a title, got %v", records)
	}
}

func TestNewRecordWithoutYear(t *testing.T) {
	r := NewRecord("", "Civilization Phaze III")
	if r.SourceKey != "Civilization Phaze III" {
		t.Fatalf("unexpected source key %q", r.SourceKey)
	}
}
