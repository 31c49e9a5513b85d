package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"zappavault/internal/services"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

const statusLabelWidth = 20

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	base := fmt.Sprintf("  %-*s [%s] %s", statusLabelWidth, label+":", statusKindLabel(kind), message)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		return ansiBlue + line + ansiReset
	}
	return line
}

func colorCount(label string, n int, color string, colorize bool) string {
	text := fmt.Sprintf("%s: %d", label, n)
	if colorize && n > 0 && color != "" {
		return color + text + ansiReset
	}
	return text
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printFailures lists recorded item failures below a report.
func printFailures(out io.Writer, failures *services.Failures, colorize bool) {
	if failures.Len() == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSectionHeader("Failures", colorize))
	rows := make([][]string, 0, failures.Len())
	for _, item := range failures.Items() {
		msg := ""
		if item.Err != nil {
			msg = item.Err.Error()
		}
		rows = append(rows, []string{item.Key, services.FailureKind(item.Err), msg})
	}
	fmt.Fprintln(out, renderTable([]string{"Item", "Kind", "Error"}, rows, nil))
}
