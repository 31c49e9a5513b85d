package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/simonhull/audiometa"
)

// Probe is what a prober learned about one audio file. Zero values mean
// unknown.
type Probe struct {
	Duration    time.Duration
	Title       string
	TrackNumber int
}

// Prober reads audio metadata.
type Prober interface {
	Probe(ctx context.Context, path string) (Probe, error)
}

// AudioMetaProber reads tags and stream duration with audiometa.
type AudioMetaProber struct{}

// Probe opens path and reads its duration and tags.
func (AudioMetaProber) Probe(ctx context.Context, path string) (Probe, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return Probe{}, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	return Probe{
		Duration:    file.Audio.Duration,
		Title:       file.Tags.Title,
		TrackNumber: file.Tags.TrackNumber,
	}, nil
}
