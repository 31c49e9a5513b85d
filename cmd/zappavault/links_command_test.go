package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"zappavault/internal/config"
	"zappavault/internal/library"
	"zappavault/internal/links"
	"zappavault/internal/services"
	"zappavault/internal/testsupport"
)

type mapIssuer map[string]string

func (m mapIssuer) GetOrCreateLink(_ context.Context, path string) (string, error) {
	if link, ok := m[path]; ok {
		return link, nil
	}
	return "", services.Wrap(services.ErrNotFound, "dropbox", "resolve path", path, nil)
}

func swapIssuer(t *testing.T, issuer links.Issuer) {
	t.Helper()
	previous := newLinkIssuer
	newLinkIssuer = func(*config.Config, *slog.Logger) links.Issuer { return issuer }
	t.Cleanup(func() { newLinkIssuer = previous })
}

func linkTestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	env := setupCLITestEnv(t,
		testsupport.WithDropboxCredentials("key", "secret", "refresh"),
		testsupport.WithoutDelays())
	snap := hotRatsLibrary()
	snap.Albums[0].CoverURL = "https://www.dropbox.com/scl/fi/abc/cover.jpg?rlkey=k&dl=0"
	writeLibrary(t, env.cfg.Paths.LibraryJSON, snap)
	return env
}

func TestLinksGenerateSavesCompletedRunWithItemFailures(t *testing.T) {
	env := linkTestEnv(t)
	swapIssuer(t, mapIssuer{
		"/Apps/ZappaVault/ZappaLibrary/Hot Rats/01 Peaches.flac": "https://www.dropbox.com/scl/fi/p/01.flac?rlkey=k&dl=1",
	})

	out, _, err := runCLI(t, env, "", "links", "generate")
	if err != nil {
		t.Fatalf("links generate: %v", err)
	}
	requireContains(t, out, "Updated "+env.cfg.Paths.LibraryJSON)
	requireContains(t, out, "02 Willie.flac")

	snap, err := library.Load(env.cfg.Paths.LibraryJSON)
	if err != nil {
		t.Fatal(err)
	}
	peaches := snap.Albums[0].Tracks[0]
	if peaches.StreamingURL == "" || peaches.DownloadURL != peaches.StreamingURL {
		t.Fatalf("expected Peaches to be linked, got %+v", peaches)
	}
	if snap.Albums[0].Tracks[1].StreamingURL != "" {
		t.Fatal("failed track must stay unlinked")
	}
	if want := "https://www.dropbox.com/scl/fi/abc/cover.jpg?raw=1&rlkey=k"; snap.Albums[0].CoverURL != want {
		t.Fatalf("cover = %q, want %q", snap.Albums[0].CoverURL, want)
	}
	if !snap.HasLinks || snap.GeneratedAt == "" {
		t.Fatalf("unexpected snapshot flags %+v", snap)
	}
}

// cancellingIssuer cancels the run after every call, so only the first
// track gets a link.
type cancellingIssuer struct {
	links  mapIssuer
	cancel context.CancelFunc
}

func (c cancellingIssuer) GetOrCreateLink(ctx context.Context, path string) (string, error) {
	defer c.cancel()
	return c.links.GetOrCreateLink(ctx, path)
}

func TestLinksGenerateCancelledRunLeavesLibraryUnchanged(t *testing.T) {
	env := linkTestEnv(t)
	before, err := os.ReadFile(env.cfg.Paths.LibraryJSON)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	swapIssuer(t, cancellingIssuer{
		links: mapIssuer{
			"/Apps/ZappaVault/ZappaLibrary/Hot Rats/01 Peaches.flac": "https://www.dropbox.com/scl/fi/p/01.flac?rlkey=k&dl=1",
			"/Apps/ZappaVault/ZappaLibrary/Hot Rats/02 Willie.flac":  "https://www.dropbox.com/scl/fi/w/02.flac?rlkey=k&dl=1",
		},
		cancel: cancel,
	})

	out, _, err := runCLIContext(t, ctx, env, "", "--json", "links", "generate")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var result struct {
		Saved bool        `json:"saved"`
		Stats links.Stats `json:"stats"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if result.Saved || result.Stats.TracksLinked != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	after, err := os.ReadFile(env.cfg.Paths.LibraryJSON)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("cancelled run must not rewrite the library")
	}
}

func TestLinksGenerateStrictFailsOnItemErrors(t *testing.T) {
	env := linkTestEnv(t)
	swapIssuer(t, mapIssuer{})

	out, _, err := runCLI(t, env, "", "--strict", "--json", "links", "generate")
	if err == nil {
		t.Fatal("expected --strict to fail when tracks could not be linked")
	}
	var result struct {
		Stats    links.Stats       `json:"stats"`
		Failures []json.RawMessage `json:"failures"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if result.Stats.TracksFailed != 2 || len(result.Failures) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestLinksGenerateRequiresCredentials(t *testing.T) {
	env := setupCLITestEnv(t)
	writeLibrary(t, env.cfg.Paths.LibraryJSON, hotRatsLibrary())
	swapIssuer(t, mapIssuer{})

	_, _, err := runCLI(t, env, "", "links", "generate")
	if err == nil {
		t.Fatal("expected missing credentials to fail")
	}
	requireContains(t, err.Error(), "DROPBOX_APP_KEY")
}
