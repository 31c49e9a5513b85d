package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseFolderName(t *testing.T) {
	cases := []struct {
		name  string
		title string
		ok    bool
	}{
		{"#1 Freak Out! (February 1966)", "Freak Out!", true},
		{"#28-29 Joe's Garage Acts I, II & III (September 1979)", "Joe's Garage Acts I, II & III", true},
		{"#8 Hot Rats (October 1969) [2012 remaster]", "Hot Rats", true},
		{"#63 Trance-Fusion [Zappa Records]", "Trance-Fusion", true},
		{"062 Läther (1996)", "Läther", true},
		{"Bootleg Sheik Yerbouti", "Sheik Yerbouti", true},
		{"Singleton", "", false},
		{"#12 (1970)", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		title, ok := ParseFolderName(tc.name)
		if ok != tc.ok || title != tc.title {
			t.Fatalf("ParseFolderName(%q) = %q, %v; want %q, %v", tc.name, title, ok, tc.title, tc.ok)
		}
	}
}

func TestLoadFromDirectoryReportsOrphans(t *testing.T) {
	names := []string{
		"#1 Freak Out! (February 1966)",
		"README",
		"#28-29 Joe's Garage Acts I, II & III (September 1979)",
	}
	cat, orphans := LoadFromDirectory(names)
	if cat.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cat.Len())
	}
	if !reflect.DeepEqual(orphans, []string{"README"}) {
		t.Fatalf("unexpected orphans %v", orphans)
	}
	entry, ok := cat.Get("Freak Out!")
	if !ok || entry.SourceIdentifier != names[0] {
		t.Fatalf("unexpected entry %+v (found=%v)", entry, ok)
	}
	entries := cat.Entries()
	if entries[0].DisplayTitle != "Freak Out!" || entries[1].DisplayTitle != "Joe's Garage Acts I, II & III" {
		t.Fatalf("entries out of insertion order: %+v", entries)
	}
}

func TestCatalogCollisionKeepsPositionAndLastSource(t *testing.T) {
	cat, _ := LoadFromDirectory([]string{
		"#8 Hot Rats (October 1969)",
		"#9 Burnt Weeny Sandwich (February 1970)",
		"#8 Hot Rats (2012)",
	})
	if cat.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cat.Len())
	}
	if cat.Collisions() != 1 {
		t.Fatalf("expected 1 collision, got %d", cat.Collisions())
	}
	entries := cat.Entries()
	if entries[0].DisplayTitle != "Hot Rats" || entries[0].SourceIdentifier != "#8 Hot Rats (2012)" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
}

func TestNilCatalogIsEmpty(t *testing.T) {
	var cat *Catalog
	if cat.Len() != 0 || cat.Entries() != nil || cat.Collisions() != 0 {
		t.Fatal("nil catalog should be empty")
	}
	if _, ok := cat.Get("x"); ok {
		t.Fatal("nil catalog should not find entries")
	}
}

func TestReadDirectorySkipsFilesHiddenAndCovers(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"#2 Absolutely Free (May 1967)", "#1 Freak Out! (February 1966)", ".cache", "Covers"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	names, err := ReadDirectory(dir)
	if err != nil {
		t.Fatalf("ReadDirectory: %v", err)
	}
	want := []string{"#1 Freak Out! (February 1966)", "#2 Absolutely Free (May 1967)"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v, want %v", names, want)
	}
}

func TestReadDirectoryMissing(t *testing.T) {
	if _, err := ReadDirectory(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestReadNameList(t *testing.T) {
	got := ReadNameList("#1 Freak Out! (February 1966)\r\n\n// skipped\n  #8 Hot Rats (October 1969)  \n")
	want := []string{"#1 Freak Out! (February 1966)", "#8 Hot Rats (October 1969)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
