package dropbox

import "testing"

func TestDirectLink(t *testing.T) {
	cases := []struct {
		shared string
		image  bool
		want   string
	}{
		{"https://www.dropbox.com/s/abc/01.mp3?dl=0", false, "https://dl.dropboxusercontent.com/s/abc/01.mp3"},
		{"https://www.dropbox.com/s/abc/cover.jpg", true, "https://dl.dropboxusercontent.com/s/abc/cover.jpg"},
		{"https://www.dropbox.com/scl/fi/abc/01.mp3?rlkey=r&dl=0", false, "https://www.dropbox.com/scl/fi/abc/01.mp3?dl=1&rlkey=r"},
		{"https://www.dropbox.com/scl/fi/abc/cover.jpg?rlkey=r&dl=0", true, "https://www.dropbox.com/scl/fi/abc/cover.jpg?raw=1&rlkey=r"},
		{"https://www.dropbox.com/scl/fo/abc/folder", false, "https://www.dropbox.com/scl/fo/abc/folder?dl=1"},
	}
	for _, tc := range cases {
		if got := DirectLink(tc.shared, tc.image); got != tc.want {
			t.Fatalf("DirectLink(%q, %v) = %q, want %q", tc.shared, tc.image, got, tc.want)
		}
	}
}

func TestRepairCoverURL(t *testing.T) {
	repaired, changed := RepairCoverURL("https://www.dropbox.com/scl/fi/abc/cover.jpg?rlkey=r&dl=0")
	if !changed || repaired != "https://www.dropbox.com/scl/fi/abc/cover.jpg?raw=1&rlkey=r" {
		t.Fatalf("unexpected repair %q %v", repaired, changed)
	}
	for _, link := range []string{
		"https://www.dropbox.com/scl/fi/abc/cover.jpg?raw=1&rlkey=r",
		"https://dl.dropboxusercontent.com/s/abc/cover.jpg",
		"/Apps/ZappaVault/cover.jpg",
	} {
		if got, changed := RepairCoverURL(link); changed || got != link {
			t.Fatalf("RepairCoverURL(%q) should be a no-op, got %q", link, got)
		}
	}
}

func TestIsImagePath(t *testing.T) {
	if !IsImagePath("/a/Cover.JPG") || !IsImagePath(`C:\a\front.webp`) {
		t.Fatal("expected image paths")
	}
	if IsImagePath("/a/01.mp3") || IsImagePath("/a/jpg") {
		t.Fatal("expected non-image paths")
	}
}
