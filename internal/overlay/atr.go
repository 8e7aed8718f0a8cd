package overlay

import (
	"math"

	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// TrueRanges computes the per-bar true range. The first bar has no previous
// close, so its true range is simply high-low.
func TrueRanges(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		tr := b.High - b.Low
		if i > 0 {
			prevClose := bars[i-1].Close
			tr = math.Max(tr, math.Max(
				math.Abs(b.High-prevClose),
				math.Abs(b.Low-prevClose),
			))
		}
		out[i] = tr
	}
	return out
}

// ATR computes the rolling average true range, aligned with the input bars.
// Warmup entries are undefined.
func ATR(bars []model.Bar, period int) []float64 {
	return series.SMA(TrueRanges(bars), period)
}

// LastATR returns the most recent defined ATR value, or 0 when the window
// is too short. The zero fallback keeps downstream ratio computations from
// dividing by an undefined sentinel.
func LastATR(bars []model.Bar, period int) float64 {
	atr := ATR(bars, period)
	for i := len(atr) - 1; i >= 0; i-- {
		if series.IsDefined(atr[i]) {
			return atr[i]
		}
	}
	return 0
}
