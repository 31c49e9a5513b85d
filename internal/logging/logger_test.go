package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"zappavault/internal/config"
	"zappavault/internal/logging"
	"zappavault/internal/services"
)

func TestNewFromConfigWritesDailyFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("merge finished")

	content, err := os.ReadFile(logging.DailyLogPath(cfg.Paths.LogDir, time.Now()))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "merge finished") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "info",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "debug",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerSubjectAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithCommand(context.Background(), "reconcile")
	logger = logging.NewComponentLogger(logging.WithContext(ctx, logger), "matching")
	logger.Info("release matched", logging.String("tier", "word_overlap"), logging.String("title", "Joe's Garage"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, fragment := range []string{"INFO reconcile · matching: release matched", "tier=word_overlap", `title="Joe's Garage"`} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	if entry["msg"] != "json message" || entry["level"] != "info" || entry["k"] != "v" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

type captureHandler struct {
	attrs   []slog.Attr
	records *[]slog.Record
}

func newCaptureHandler() *captureHandler {
	return &captureHandler{records: &[]slog.Record{}}
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(h.attrs...)
	*h.records = append(*h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &captureHandler{attrs: merged, records: h.records}
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func recordAttrs(r slog.Record) map[string]string {
	out := map[string]string{}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithCommand(ctx, "links generate")
	ctx = services.WithItemKey(ctx, "/Hot Rats/01.flac")

	handler := newCaptureHandler()
	logging.WithContext(ctx, slog.New(handler)).Info("contextual log")

	if len(*handler.records) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(*handler.records))
	}
	attrs := recordAttrs((*handler.records)[0])
	if attrs[logging.FieldRunID] != "run-1" || attrs[logging.FieldCommand] != "links generate" || attrs[logging.FieldItemKey] != "/Hot Rats/01.flac" {
		t.Fatalf("unexpected attrs %v", attrs)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	handler := newCaptureHandler()
	logging.WarnWithContext(slog.New(handler), "link failed", "link_failed", logging.String(logging.FieldImpact, "track keeps no url"))

	attrs := recordAttrs((*handler.records)[0])
	if attrs[logging.FieldEventType] != "link_failed" {
		t.Fatalf("expected event type, got %v", attrs)
	}
	if attrs[logging.FieldErrorHint] == "" {
		t.Fatalf("expected default error hint, got %v", attrs)
	}
	if attrs[logging.FieldImpact] != "track keeps no url" {
		t.Fatalf("expected caller impact to be kept, got %v", attrs)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "zappavault-2020-01-01.log")
	recent := filepath.Join(dir, "zappavault-2020-02-01.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, recent, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Date(2020, 2, 10, 0, 0, 0, 0, time.UTC)
	stale := now.AddDate(0, 0, -40)
	for _, path := range []string{old, other} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(recent, now, now); err != nil {
		t.Fatal(err)
	}

	removed := logging.CleanupOldLogs(logging.NewNop(), 30, now, logging.RetentionTarget{Dir: dir, Pattern: logging.LogFilePattern})
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err %v", err)
	}
	for _, path := range []string{recent, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}
	if logging.CleanupOldLogs(nil, 0, now, logging.RetentionTarget{Dir: dir}) != 0 {
		t.Fatal("retention 0 should disable pruning")
	}
}

func TestConsoleLoggerRendersFailureSummary(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "failures.log")
	logger, err := logging.New(logging.Options{Format: "console", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	var failures services.Failures
	failures.Add("/Hot Rats/01.flac", errors.New("probe failed"))
	for _, key := range []string{"b", "c", "d", "e", "f"} {
		failures.Add(key, errors.New("boom"))
	}
	logger.Warn("items failed", logging.Failures(&failures))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, fragment := range []string{"failures.count=6", `failures.keys=["/Hot Rats/01.flac",b,c,d,e]`} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}
