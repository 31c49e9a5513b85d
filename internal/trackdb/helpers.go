package trackdb

import (
	"errors"
	"time"
)

func nullableInt(value int) any {
	if value <= 0 {
		return nil
	}
	return value
}

func nullableSeconds(value float64) any {
	if value <= 0 {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
