package tasting

import (
	"context"
	"time"
)

// Delivery pacing. Each chunk is preceded by a composing indicator held for
// composingHold before the text appears; input is enabled inputSettle after
// the last chunk.
const (
	firstChunkDelay = 400 * time.Millisecond
	nextChunkDelay  = 1200 * time.Millisecond
	composingHold   = 900 * time.Millisecond
	inputSettle     = 700 * time.Millisecond
)

// Pacer introduces the delivery delays. Tests inject an instant pacer.
type Pacer interface {
	Pause(ctx context.Context, d time.Duration)
}

type sleepPacer struct{}

func (sleepPacer) Pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// NewPacer returns the real-time pacer used outside tests.
func NewPacer() Pacer { return sleepPacer{} }
