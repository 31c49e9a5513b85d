package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile creates path, and any missing parents, holding size filler bytes.
// Audio fixtures only need to exist; the prober stub supplies durations.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()
	writeBytes(t, path, bytes.Repeat([]byte{'z'}, max(size, 1)))
}

// WriteText creates path holding the given lines, each newline terminated.
// It returns path so callers can pass it straight to a command.
func WriteText(t testing.TB, path string, lines ...string) string {
	t.Helper()
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	writeBytes(t, path, []byte(b.String()))
	return path
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
