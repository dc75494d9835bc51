package engine_test

import (
	"testing"

	"songquiz-service/internal/domain"
	"songquiz-service/internal/engine"
)

func ptr(v float64) *float64 { return &v }

func TestSelectStartTimeWithinMiddleWindow(t *testing.T) {
	rnd := engine.NewRandom(1)
	track := domain.Track{ID: "t1", DurationSeconds: ptr(300)}

	seenLow, seenHigh := false, false
	for i := 0; i < 1000; i++ {
		got := engine.SelectStartTime(track, rnd)
		if got < 120 || got > 180 {
			t.Fatalf("start time %v outside [120, 180]", got)
		}
		if got != float64(int(got)) {
			t.Fatalf("expected whole seconds, got %v", got)
		}
		seenLow = seenLow || got == 120
		seenHigh = seenHigh || got == 180
	}
	if !seenLow || !seenHigh {
		t.Fatalf("expected both window bounds to be reachable, low=%v high=%v", seenLow, seenHigh)
	}
}

func TestSelectStartTimeMidpointOverride(t *testing.T) {
	rnd := engine.NewRandom(2)
	track := domain.Track{ID: "t1", DurationSeconds: ptr(300), MidpointStartSeconds: ptr(77)}
	for i := 0; i < 100; i++ {
		if got := engine.SelectStartTime(track, rnd); got != 77 {
			t.Fatalf("expected midpoint 77, got %v", got)
		}
	}
}

func TestSelectStartTimeFallback(t *testing.T) {
	rnd := engine.NewRandom(3)
	tracks := []domain.Track{
		{ID: "none"},
		{ID: "zero", DurationSeconds: ptr(0)},
	}
	for _, track := range tracks {
		for i := 0; i < 1000; i++ {
			got := engine.SelectStartTime(track, rnd)
			if got < engine.FallbackStartMin || got > engine.FallbackStartMax {
				t.Fatalf("%s: start time %v outside [90, 150]", track.ID, got)
			}
		}
	}
}

func TestSelectStartTimeShortTrackStaysInside(t *testing.T) {
	rnd := engine.NewRandom(4)
	track := domain.Track{ID: "short", DurationSeconds: ptr(3)}
	for i := 0; i < 200; i++ {
		got := engine.SelectStartTime(track, rnd)
		if got < 0 || got >= 3 {
			t.Fatalf("start time %v not within [0, 3)", got)
		}
	}
}
