package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	rawYearPrefix    = regexp.MustCompile(`^\d{4}\s*[-–—]\s*`)
	foldedYearPrefix = regexp.MustCompile(`^\d{4} ?- ?`)

	apostropheFolder = strings.NewReplacer(
		"‘", "'",
		"’", "'",
		"ʼ", "'",
		"′", "'",
		"`", "'",
	)
	separatorFolder = strings.NewReplacer(
		"–", " ",
		"—", " ",
		"−", " ",
		"/", " ",
		"‐", "-",
		"‑", "-",
	)
)

// Title returns the comparison key for a release title.
//
// A leading "YYYY – " prefix is dropped, the text is lowercased, curly
// apostrophes become "'", dashes and slashes become word breaks, anything that
// is not a letter, digit, space, apostrophe or hyphen is removed and
// whitespace is collapsed. Title(Title(s)) == Title(s) for every s.
func Title(title string) string {
	s := norm.NFC.String(title)
	s = stripYearPrefix(rawYearPrefix, s)
	s = strings.ToLower(s)
	s = apostropheFolder.Replace(s)
	s = separatorFolder.Replace(s)
	s = strings.Map(keepTitleRune, s)
	s = strings.Join(strings.Fields(s), " ")
	s = stripYearPrefix(foldedYearPrefix, s)
	return norm.NFC.String(strings.TrimSpace(s))
}

// Words splits a normalized key into its distinct words, in first-seen order.
func Words(key string) []string {
	fields := strings.Fields(key)
	seen := make(map[string]struct{}, len(fields))
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		words = append(words, field)
	}
	return words
}

func stripYearPrefix(pattern *regexp.Regexp, s string) string {
	for {
		loc := pattern.FindStringIndex(s)
		if loc == nil {
			return s
		}
		s = s[loc[1]:]
	}
}

func keepTitleRune(r rune) rune {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return r
	case r == '\'' || r == '-':
		return r
	case unicode.IsSpace(r):
		return ' '
	default:
		return -1
	}
}
