package matching

import (
	"encoding/json"
	"math"
	"testing"

	"zappavault/internal/catalog"
	"zappavault/internal/normalize"
)

func newCatalog(titles ...string) *catalog.Catalog {
	cat := catalog.New()
	for i, title := range titles {
		cat.Add(title, "src-"+title+"-"+string(rune('a'+i)))
	}
	return cat
}

func TestExactKeyBeatsEarlierNormalizedDuplicate(t *testing.T) {
	cat := newCatalog("hot rats", "Hot Rats (Remaster)", "Hot Rats")
	res := New().Match("Hot Rats", cat)
	if res.Tier != TierExactKey || res.Entry == nil || res.Entry.DisplayTitle != "Hot Rats" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Score != 1.0 {
		t.Fatalf("expected score 1, got %v", res.Score)
	}
}

func TestNormalizedExact(t *testing.T) {
	cat := newCatalog("Apostrophe (')", "joe's garage act i")
	res := New().Match("Joe’s Garage: Act I", cat)
	if res.Tier != TierNormalizedExact || res.Entry.DisplayTitle != "joe's garage act i" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestShortSubstringRejected(t *testing.T) {
	cat := newCatalog("Hot Rats", "The Hot Rocks")
	res := New().Match("Hot", cat)
	if res.Tier != TierNone || res.Entry != nil || res.Score != 0 {
		t.Fatalf("expected no match, got %+v", res)
	}
}

func TestSubstringScoreAndCatalogOrder(t *testing.T) {
	cat := newCatalog("Shut Up 'n Play Yer Guitar Some More", "Shut Up 'n Play Yer Guitar")
	res := New().Match("Play Yer Guitar", cat)
	if res.Tier != TierSubstring {
		t.Fatalf("expected substring tier, got %+v", res)
	}
	if res.Entry.DisplayTitle != "Shut Up 'n Play Yer Guitar Some More" {
		t.Fatalf("expected first catalog candidate, got %q", res.Entry.DisplayTitle)
	}
	want := float64(len("play yer guitar")) / float64(len("shut up 'n play yer guitar some more"))
	if math.Abs(res.Score-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", res.Score, want)
	}
}

func TestJoesGarageMatchesBoxedTitle(t *testing.T) {
	cat := newCatalog("Joe's Garage Acts I, II & III")
	res := New().Match("Joe's Garage", cat)
	if !res.Matched() {
		t.Fatalf("expected a match, got %+v", res)
	}
	if res.Tier != TierSubstring {
		t.Fatalf("expected substring tier to fire first, got %s", res.Tier)
	}

	m := New()
	score, ok := m.wordOverlap(
		normalize.Words(normalize.Title("Joe's Garage")),
		normalize.Words(normalize.Title("Joe's Garage Acts I, II & III")),
	)
	if !ok {
		t.Fatal("expected word overlap to accept two shared words")
	}
	if math.Abs(score-2.0/6.0) > 1e-9 {
		t.Fatalf("jaccard = %v, want 1/3", score)
	}
}

func TestWordOverlapTier(t *testing.T) {
	cat := newCatalog("Freak Out!", "Joe's Garage Acts I, II & III")
	res := New().Match("Joe's Garage: Act I", cat)
	if res.Tier != TierWordOverlap || res.Entry.DisplayTitle != "Joe's Garage Acts I, II & III" {
		t.Fatalf("unexpected result %+v", res)
	}
	if math.Abs(res.Score-3.0/7.0) > 1e-9 {
		t.Fatalf("score = %v, want 3/7", res.Score)
	}
}

func TestWordOverlapRequiresQueryShare(t *testing.T) {
	// Two of five query words are shared: below 0.7 of the query.
	cat := newCatalog("Lumpy Gravy Primordial")
	res := New().Match("Lumpy Gravy And Other Things", cat)
	if res.Matched() {
		t.Fatalf("expected no match, got %+v", res)
	}
}

func TestWithOverlapOverride(t *testing.T) {
	cat := newCatalog("Lumpy Gravy Primordial")
	res := New(WithOverlap(2, 0.4)).Match("Lumpy Gravy And Other Things", cat)
	if res.Tier != TierWordOverlap {
		t.Fatalf("expected word overlap with relaxed ratio, got %+v", res)
	}
}

func TestWithMinSubstringLengthOverride(t *testing.T) {
	cat := newCatalog("Hot Rats")
	res := New(WithMinSubstringLength(2)).Match("Hot", cat)
	if res.Tier != TierSubstring {
		t.Fatalf("expected substring match with relaxed guard, got %+v", res)
	}
}

func TestEmptyInputs(t *testing.T) {
	m := New()
	if res := m.Match("Hot Rats", nil); res.Matched() || res.Query != "Hot Rats" {
		t.Fatalf("nil catalog: %+v", res)
	}
	if res := m.Match("Hot Rats", catalog.New()); res.Matched() {
		t.Fatalf("empty catalog: %+v", res)
	}
	if res := m.Match("!!!", newCatalog("???")); res.Matched() {
		t.Fatalf("punctuation-only titles must not match: %+v", res)
	}
}

func TestClosest(t *testing.T) {
	cat := newCatalog("Hot Rats", "Sheik Yerbouti", "Uncle Meat")
	entry, score, ok := New().Closest("Sheik Yerboutii", cat)
	if !ok || entry.DisplayTitle != "Sheik Yerbouti" {
		t.Fatalf("unexpected closest %+v (ok=%v)", entry, ok)
	}
	if score <= 0.9 || score > 1 {
		t.Fatalf("unexpected similarity %v", score)
	}
	if _, _, ok := New().Closest("", cat); ok {
		t.Fatal("empty query should have no closest entry")
	}
}

func TestTierJSON(t *testing.T) {
	data, err := json.Marshal(TierWordOverlap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"word_overlap"` {
		t.Fatalf("unexpected json %s", data)
	}
	var tier Tier
	if err := json.Unmarshal([]byte(`"filename_suffix"`), &tier); err != nil || tier != TierFilenameSuffix {
		t.Fatalf("unmarshal: %v %v", tier, err)
	}
	if err := json.Unmarshal([]byte(`"bogus"`), &tier); err == nil {
		t.Fatal("expected error for unknown tier")
	}
	if !TierSubstring.Fuzzy() || TierExactKey.Fuzzy() {
		t.Fatal("unexpected fuzzy classification")
	}
}
