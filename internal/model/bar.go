package model

import (
	"fmt"
	"math"
)

// Bar represents a single OHLCV sample for a fixed time bucket.
// Bars are owned by the caller and never mutated by the engine.
type Bar struct {
	Time   int64   `json:"time"` // unix seconds, strictly increasing
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// ValidateBars checks the input contract: ascending timestamps with no
// duplicates, finite OHLCV fields, non-negative volume. A violation here
// means the upstream bar feed is broken, so it is surfaced as an error
// instead of being silently degraded.
func ValidateBars(bars []Bar) error {
	for i, b := range bars {
		if !isFinite(b.Open) || !isFinite(b.High) || !isFinite(b.Low) || !isFinite(b.Close) || !isFinite(b.Volume) {
			return fmt.Errorf("bar %d: non-finite OHLCV field", i)
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d: negative volume %f", i, b.Volume)
		}
		if i > 0 && b.Time <= bars[i-1].Time {
			return fmt.Errorf("bar %d: timestamp %d not after previous %d", i, b.Time, bars[i-1].Time)
		}
	}
	return nil
}

// Closes extracts the close series from a bar window.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// LogReturns computes log(close[i]/close[i-1]) for the bar window.
// The result has len(bars)-1 entries; zero or negative closes yield 0.
func LogReturns(bars []Bar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		cur := bars[i].Close
		if prev > 0 && cur > 0 {
			out[i-1] = math.Log(cur / prev)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
