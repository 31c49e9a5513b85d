package scanner_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"zappavault/internal/config"
	"zappavault/internal/scanner"
	"zappavault/internal/services"
	"zappavault/internal/testsupport"
)

type fakeProber struct {
	probes map[string]scanner.Probe
	fail   map[string]bool
	calls  int
}

func (f *fakeProber) Probe(_ context.Context, path string) (scanner.Probe, error) {
	f.calls++
	if f.fail[filepath.Base(path)] {
		return scanner.Probe{}, errors.New("unsupported format")
	}
	return f.probes[filepath.Base(path)], nil
}

func TestParseFileName(t *testing.T) {
	cases := []struct {
		name   string
		title  string
		number int
	}{
		{"01 - Peaches En Regalia.flac", "Peaches En Regalia", 1},
		{"02. willie the pimp.mp3", "Willie The Pimp", 2},
		{"03_son_of_mr_green_genes.flac", "Son Of Mr Green Genes", 3},
		{"Lumpy Gravy.flac", "Lumpy Gravy", 0},
		{"10-It Must Be A Camel.wav", "It Must Be A Camel", 10},
	}
	for _, tc := range cases {
		title, number := scanner.ParseFileName(tc.name)
		if title != tc.title || number != tc.number {
			t.Fatalf("ParseFileName(%q) = %q, %d; want %q, %d", tc.name, title, number, tc.title, tc.number)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{
		0:      "00:00",
		-3:     "00:00",
		245:    "04:05",
		245.9:  "04:05",
		3725:   "01:02:05",
		359999: "99:59:59",
	}
	for seconds, want := range cases {
		if got := scanner.FormatSeconds(seconds); got != want {
			t.Fatalf("FormatSeconds(%v) = %q, want %q", seconds, got, want)
		}
	}
}

func TestScanRecordsAlbumsAndSkipsKnownFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	lib := cfg.Paths.LibraryDir
	testsupport.WriteFile(t, filepath.Join(lib, "Hot Rats", "01 Peaches.flac"), 16)
	testsupport.WriteFile(t, filepath.Join(lib, "Hot Rats", "02 Willie.mp3"), 16)
	testsupport.WriteFile(t, filepath.Join(lib, "Hot Rats", "cover.jpg"), 16)
	testsupport.WriteFile(t, filepath.Join(lib, "Hot Rats", "Covers", "front.mp3"), 16)
	testsupport.WriteFile(t, filepath.Join(lib, "Hot Rats", ".trash", "old.mp3"), 16)
	testsupport.WriteFile(t, filepath.Join(lib, "Uncle Meat", "CD 1", "01 Zolar.FLAC"), 16)
	testsupport.WriteFile(t, filepath.Join(lib, "Empty Album", "notes.txt"), 16)
	testsupport.WriteFile(t, filepath.Join(lib, "cover", "art.mp3"), 16)
	testsupport.WriteFile(t, filepath.Join(lib, "readme.txt"), 16)

	prober := &fakeProber{
		probes: map[string]scanner.Probe{
			"01 Peaches.flac": {Duration: 218500 * time.Millisecond, Title: "Peaches en Regalia", TrackNumber: 1},
			"01 Zolar.FLAC":   {Duration: time.Minute},
		},
		fail: map[string]bool{"02 Willie.mp3": true},
	}
	store := testsupport.MustOpenStore(t, cfg)
	sc := scanner.New(cfg.Scanner, store, scanner.WithProber(prober))

	var failures services.Failures
	stats, err := sc.Scan(context.Background(), lib, &failures)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if stats.Albums != 3 || stats.EmptyAlbums != 1 || stats.Files != 3 || stats.Inserted != 3 || stats.NoDuration != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.TotalSeconds != 278.5 {
		t.Fatalf("unexpected total seconds %v", stats.TotalSeconds)
	}
	if failures.Len() != 1 || !errors.Is(failures.Items()[0].Err, services.ErrExternal) {
		t.Fatalf("expected one external failure, got %+v", failures.Items())
	}

	reports, err := store.AlbumReports(context.Background())
	if err != nil {
		t.Fatalf("AlbumReports: %v", err)
	}
	if len(reports) != 2 || reports[0].Name != "Hot Rats" || reports[1].Name != "Uncle Meat" {
		t.Fatalf("unexpected albums %+v", reports)
	}
	hotRats := reports[0].Tracks
	if hotRats[0].Title != "Peaches en Regalia" || hotRats[0].DurationSeconds != 218.5 {
		t.Fatalf("unexpected first track %+v", hotRats[0])
	}
	if hotRats[1].Title != "Willie" || hotRats[1].TrackNumber != 2 || hotRats[1].DurationSeconds != 0 {
		t.Fatalf("unexpected fallback track %+v", hotRats[1])
	}
	zolar := reports[1].Tracks[0]
	if zolar.Title != "Zolar" || zolar.TrackNumber != 1 || zolar.DurationSeconds != 60 {
		t.Fatalf("unexpected disc track %+v", zolar)
	}

	again, err := sc.Scan(context.Background(), lib, &failures)
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if again.Inserted != 0 || again.Skipped != 3 {
		t.Fatalf("expected second scan to skip known files, got %+v", again)
	}
	if prober.calls != 3 {
		t.Fatalf("expected known files not to be probed again, got %d calls", prober.calls)
	}
}

func TestScanMissingLibrary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sc := scanner.New(config.Scanner{}, store, scanner.WithProber(&fakeProber{}))
	_, err := sc.Scan(context.Background(), filepath.Join(testsupport.BaseDir(cfg), "absent"), nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestScanStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.LibraryDir, "Hot Rats", "01 Peaches.flac"), 16)
	store := testsupport.MustOpenStore(t, cfg)
	sc := scanner.New(cfg.Scanner, store, scanner.WithProber(&fakeProber{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sc.Scan(ctx, cfg.Paths.LibraryDir, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
