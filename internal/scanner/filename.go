package scanner

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var numberedName = regexp.MustCompile(`^(\d+)[\s.\-]*(.+)$`)

// ParseFileName derives a title and track number from a file name such as
// "01 - Peaches En Regalia.flac" or "02. Willie the Pimp.mp3". The number is
// 0 when the name has no leading digits. All-lowercase titles are title-cased.
func ParseFileName(name string) (string, int) {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
	title, number := stem, 0
	if m := numberedName.FindStringSubmatch(stem); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			number = n
			title = strings.TrimSpace(m[2])
		}
	}
	title = strings.Join(strings.Fields(title), " ")
	if isLower(title) {
		title = cases.Title(language.English).String(title)
	}
	return title, number
}

func isLower(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
