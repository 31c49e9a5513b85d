package dropbox

import (
	"net/url"
	"path"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// IsImagePath reports whether p names an image file.
func IsImagePath(p string) bool {
	_, ok := imageExtensions[strings.ToLower(path.Ext(strings.ReplaceAll(p, `\`, "/")))]
	return ok
}

// DirectLink turns a shared link into one that serves the file itself.
//
// Newer "scl" links stay on www.dropbox.com: audio gets dl=1 and images get
// raw=1 so browsers render them inline. Legacy links move to
// dl.dropboxusercontent.com without a query string.
func DirectLink(shared string, image bool) string {
	shared = strings.TrimSpace(shared)
	if isSCLLink(shared) {
		u, err := url.Parse(shared)
		if err != nil {
			sep := "?"
			if strings.Contains(shared, "?") {
				sep = "&"
			}
			return strings.TrimRight(shared, "?&") + sep + "dl=1"
		}
		q := u.Query()
		q.Del("dl")
		q.Del("raw")
		if image {
			q.Set("raw", "1")
		} else {
			q.Set("dl", "1")
		}
		u.RawQuery = q.Encode()
		return u.String()
	}
	direct := strings.Replace(shared, "www.dropbox.com", "dl.dropboxusercontent.com", 1)
	if idx := strings.Index(direct, "?"); idx >= 0 {
		direct = direct[:idx]
	}
	return direct
}

// RepairCoverURL rewrites an existing scl cover link that still carries a
// dl parameter into its raw=1 form. The second result reports a change.
func RepairCoverURL(link string) (string, bool) {
	if !isSCLLink(link) {
		return link, false
	}
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return link, false
	}
	if _, hasDL := u.Query()["dl"]; !hasDL {
		return link, false
	}
	repaired := DirectLink(link, true)
	return repaired, repaired != link
}

func isSCLLink(link string) bool {
	return strings.Contains(link, "scl/fo/") || strings.Contains(link, "scl/fi/")
}
