package normalize

import (
	"path"
	"regexp"
	"strings"
)

// DefaultRootMarker is the cloud-storage folder that local sync clients mount
// the remote tree under.
const DefaultRootMarker = "/dropbox/"

var driveLetter = regexp.MustCompile(`^[A-Za-z]:(/|$)`)

// PathNormalizer folds recorded file paths into slash-rooted canonical keys.
//
// The zero value treats every path literally apart from slash cleanup; set
// RootMarker to strip local sync-client prefixes from drive-letter paths and
// LibraryRoot to produce library-relative candidates.
type PathNormalizer struct {
	// RootMarker is located case-insensitively inside drive-letter paths;
	// everything up to and including it is dropped.
	RootMarker string
	// LibraryRoot is the remote folder that holds the library, for example
	// "/Apps/ZappaVault/ZappaLibrary".
	LibraryRoot string
}

// NewPathNormalizer returns a normalizer with cleaned marker and root values.
func NewPathNormalizer(rootMarker, libraryRoot string) PathNormalizer {
	return PathNormalizer{
		RootMarker:  cleanMarker(rootMarker),
		LibraryRoot: strings.TrimRight(cleanSlashes(strings.TrimSpace(libraryRoot)), "/"),
	}
}

// Normalize returns the canonical key for a recorded path. The result always
// begins with "/". Distinct inputs can collapse onto the same key when they
// share the root marker at different depths.
func (p PathNormalizer) Normalize(raw string) string {
	s := cleanSlashes(strings.TrimSpace(raw))
	if driveLetter.MatchString(s) {
		if marker := cleanMarker(p.RootMarker); marker != "" {
			if idx := indexFold(s, marker); idx >= 0 {
				s = s[idx+len(marker):]
			}
		}
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return s
}

// Relative trims the configured library root from a canonical path. Paths
// outside the root are returned unchanged.
func (p PathNormalizer) Relative(canonical string) string {
	root := strings.TrimRight(p.LibraryRoot, "/")
	if root == "" || !hasPrefixFold(canonical, root) {
		return canonical
	}
	rest := canonical[len(root):]
	if rest != "" && !strings.HasPrefix(rest, "/") {
		// Shares a name prefix with the root but is a sibling folder.
		return canonical
	}
	if rest == "" {
		return "/"
	}
	return rest
}

// Candidates lists the remote paths worth trying for a recorded path, most
// specific first. Full-access tokens address files as "/Apps/<app>/...";
// app-folder tokens address them relative to the app folder.
func (p PathNormalizer) Candidates(raw string) []string {
	normalized := p.Normalize(raw)
	var out []string
	add := func(candidate string) {
		if candidate == "" || candidate == "/" {
			return
		}
		candidate = cleanSlashes(candidate)
		if !strings.HasPrefix(candidate, "/") {
			candidate = "/" + candidate
		}
		for _, existing := range out {
			if existing == candidate {
				return
			}
		}
		out = append(out, candidate)
	}

	add(normalized)

	if root := strings.TrimRight(p.LibraryRoot, "/"); root != "" {
		rootKey := p.Normalize(root)
		if hasPrefixFold(normalized, rootKey) {
			add(normalized[len(rootKey):])
		}
	}

	if app := p.appFolder(); app != "" && hasPrefixFold(normalized, app) {
		add(normalized[len(app):])
	}

	parts := splitSegments(normalized)
	if len(parts) > 2 && strings.EqualFold(parts[0], "apps") {
		add("/" + strings.Join(parts[2:], "/"))
	}
	return out
}

// FileName returns the final segment of a path in either slash style.
func FileName(raw string) string {
	s := strings.TrimRight(cleanSlashes(raw), "/")
	if s == "" {
		return ""
	}
	return path.Base(s)
}

func (p PathNormalizer) appFolder() string {
	root := p.LibraryRoot
	if !hasPrefixFold(root, "/apps/") {
		return ""
	}
	parts := splitSegments(root)
	if len(parts) < 2 {
		return ""
	}
	return "/" + parts[0] + "/" + parts[1]
}

func cleanSlashes(s string) string {
	s = strings.ReplaceAll(s, `\`, "/")
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return s
}

func cleanMarker(marker string) string {
	trimmed := strings.Trim(cleanSlashes(strings.TrimSpace(marker)), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed + "/"
}

func splitSegments(s string) []string {
	raw := strings.Split(s, "/")
	parts := raw[:0]
	for _, part := range raw {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func indexFold(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}
