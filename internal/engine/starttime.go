package engine

import (
	"math"

	"songquiz-service/internal/domain"
)

const (
	// FallbackStartMin and FallbackStartMax bound the clip start when a track has no timing metadata.
	FallbackStartMin = 90
	FallbackStartMax = 150

	midWindowLow  = 0.4
	midWindowHigh = 0.6
)

// SelectStartTime picks the playback offset, in seconds, at which a quiz clip begins.
func SelectStartTime(track domain.Track, rnd Random) float64 {
	hint := track.StartHint()
	switch hint.Kind {
	case domain.HintMidpoint:
		return hint.Seconds
	case domain.HintDuration:
		lo := int(math.Floor(hint.Seconds * midWindowLow))
		hi := int(math.Floor(hint.Seconds * midWindowHigh))
		return float64(randomBetween(rnd, lo, hi))
	case domain.HintNone:
		return float64(randomBetween(rnd, FallbackStartMin, FallbackStartMax))
	default:
		panic("engine: unknown start hint kind")
	}
}
