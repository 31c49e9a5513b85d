package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"zappavault/internal/reconcile"
	"zappavault/internal/testsupport"
)

const sampleListing = "Albums\n1966 – Freak Out!Bookmark\n1979 – Joe's Garage: Act I\n1981 – Tinseltown Rebellion\n"

func TestReconcileTableFromLibraryDir(t *testing.T) {
	env := setupCLITestEnv(t)
	mkdirs(t, env.cfg.Paths.LibraryDir,
		"#1 Freak Out! (February 1966)",
		"#28-29 Joe's Garage Acts I, II & III (September 1979)",
		"#33 Tinsel Town Rebellion (May 1981)",
		"Zappa",
	)
	listingPath := filepath.Join(env.baseDir, "listing.txt")
	if err := os.WriteFile(listingPath, []byte(sampleListing), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, env, "", "reconcile", listingPath, "--all")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	requireContains(t, out, "Found: 2")
	requireContains(t, out, "Missing: 1")
	requireContains(t, out, "1981 – Tinseltown Rebellion")
	requireContains(t, out, "#33 Tinsel Town Rebellion (May 1981)")
	requireContains(t, out, "#1 Freak Out! (February 1966)")
	requireContains(t, out, "Zappa")
}

func TestReconcileJSONFromStdinAndNamesFile(t *testing.T) {
	env := setupCLITestEnv(t)
	namesPath := testsupport.WriteText(t, filepath.Join(env.baseDir, "names.txt"),
		"#27 Sheik Yerbouti (March 1979)",
		"",
		"#28-29 Joe's Garage Acts I, II & III (September 1979)",
	)
	listing := "1979 – Joe's Garage: Act I\n1979 – Joe's Garage: Acts II & III\n1979 – Sheik Yerbouti\n"

	out, _, err := runCLI(t, env, listing, "--json", "reconcile", "-", "--names", namesPath)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	var report reconcile.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(report.Found, []string{"1979 – Sheik Yerbouti"}) {
		t.Fatalf("unexpected found %v", report.Found)
	}
	want := []string{"1979 – Joe's Garage: Act I", "1979 – Joe's Garage: Acts II & III"}
	if !reflect.DeepEqual(report.Ambiguous, want) {
		t.Fatalf("ambiguous = %v, want %v", report.Ambiguous, want)
	}
	if report.CatalogSize != 2 || len(report.Missing) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestReconcileMissingListingFile(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "", "reconcile", filepath.Join(env.baseDir, "absent.txt")); err == nil {
		t.Fatal("expected error for missing listing file")
	}
}
