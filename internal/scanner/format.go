package scanner

import "fmt"

// FormatSeconds renders a duration as MM:SS, or HH:MM:SS from one hour up.
// Unknown or negative durations render as "00:00".
func FormatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "00:00"
	}
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
