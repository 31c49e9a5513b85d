package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"zappavault/internal/logging"
	"zappavault/internal/preflight"
	"zappavault/internal/testsupport"
)

func TestStatusReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Library directory:")
	requireContains(t, out, "[OK]")
	requireContains(t, out, "run `zappavault durations scan`")
	requireContains(t, out, "credentials missing")

	if _, _, err := runCLI(t, env, "", "--strict", "status"); err == nil {
		t.Fatal("expected --strict status to fail with missing files")
	}
}

func TestStatusJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	writeLibrary(t, env.cfg.Paths.LibraryJSON, hotRatsLibrary())

	out, _, err := runCLI(t, env, "", "--json", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var result struct {
		Checks []preflight.Result `json:"checks"`
		Failed int                `json:"failed"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if len(result.Checks) != 6 || result.Failed != 2 {
		t.Fatalf("unexpected status %+v", result)
	}
}

func TestLogsShowsFilteredLines(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteText(t, filepath.Join(env.cfg.Paths.LogDir, "zappavault-2099-01-01.log"),
		"2026-03-04 INFO durations merge: merged run_id=aaa",
		"2026-03-04 INFO links generate: linked run_id=bbb",
	)
	if matched, _ := filepath.Match(logging.LogFilePattern, filepath.Base(path)); !matched {
		t.Fatalf("fixture name does not match %s", logging.LogFilePattern)
	}

	out, _, err := runCLI(t, env, "", "logs", "--run", "bbb")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "linked run_id=bbb")
	if len(out) != len("2026-03-04 INFO links generate: linked run_id=bbb\n") {
		t.Fatalf("expected only the bbb line, got %q", out)
	}
}
