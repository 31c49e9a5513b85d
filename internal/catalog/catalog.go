package catalog

import (
	"os"
	"regexp"
	"sort"
	"strings"
)

// Entry is one locally known release.
type Entry struct {
	DisplayTitle string `json:"display_title"`
	// SourceIdentifier is what the entry was derived from: the folder name,
	// an absolute path, or a database row id.
	SourceIdentifier string `json:"source_identifier"`
}

// Catalog maps display titles to entries in insertion order.
type Catalog struct {
	entries    []Entry
	index      map[string]int
	collisions int
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Add inserts or replaces the entry for title. A repeated title keeps its
// original position and takes the newer source identifier.
func (c *Catalog) Add(title, source string) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if pos, ok := c.index[title]; ok {
		c.entries[pos].SourceIdentifier = source
		c.collisions++
		return
	}
	c.index[title] = len(c.entries)
	c.entries = append(c.entries, Entry{DisplayTitle: title, SourceIdentifier: source})
}

// Get returns the entry stored under the exact title.
func (c *Catalog) Get(title string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	pos, ok := c.index[title]
	if !ok {
		return Entry{}, false
	}
	return c.entries[pos], true
}

// Entries returns the entries in insertion order. The slice is a copy.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len reports the number of distinct titles.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Collisions reports how many Add calls replaced an existing title.
func (c *Catalog) Collisions() int {
	if c == nil {
		return 0
	}
	return c.collisions
}

var (
	datedFolder    = regexp.MustCompile(`^#\d+(?:-\d+)?\s+(.+?)\s*\([^)]*\)\s*(?:\[[^\]]*\])?\s*$`)
	bracketFolder  = regexp.MustCompile(`^#\d+(?:-\d+)?\s+(.+?)\s*\[[^\]]*\]\s*$`)
	leadingOrdinal = regexp.MustCompile(`^\S+\s+`)
)

// ParseFolderName extracts the release title from a library folder name such
// as "#28-29 Joe's Garage Acts I, II & III (September 1979)".
func ParseFolderName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if m := datedFolder.FindStringSubmatch(name); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title, true
		}
	}
	if m := bracketFolder.FindStringSubmatch(name); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title, true
		}
	}
	loc := leadingOrdinal.FindStringIndex(name)
	if loc == nil {
		return "", false
	}
	rest := name[loc[1]:]
	if idx := strings.Index(rest, "("); idx >= 0 {
		rest = rest[:idx]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}

// LoadFromDirectory parses folder names into a catalog. Names that yield no
// title are returned as orphans so the caller can surface them for review.
func LoadFromDirectory(names []string) (*Catalog, []string) {
	c := New()
	var orphans []string
	for _, name := range names {
		title, ok := ParseFolderName(name)
		if !ok {
			orphans = append(orphans, name)
			continue
		}
		c.Add(title, name)
	}
	return c, orphans
}

var skippedFolders = map[string]struct{}{
	"cover":  {},
	"covers": {},
}

// ReadDirectory lists the release folder names directly under dir in
// lexical order. Files, hidden folders and cover folders are skipped.
func ReadDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if _, skip := skippedFolders[strings.ToLower(name)]; skip {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadNameList parses a newline separated list of folder names, ignoring
// blank lines and lines starting with "//".
func ReadNameList(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		names = append(names, line)
	}
	return names
}
