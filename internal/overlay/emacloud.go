package overlay

import (
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// EMACloud is the fast/slow EMA pair drawn as a cloud. It carries no
// interpretation of its own; the score aggregator derives the verdict.
type EMACloud struct {
	FastPeriod int       `json:"fast_period"`
	SlowPeriod int       `json:"slow_period"`
	Fast       []float64 `json:"fast"`
	Slow       []float64 `json:"slow"`
}

// ComputeEMACloud computes the fast/slow EMA pair over the bar window.
func ComputeEMACloud(bars []model.Bar, fast, slow int) EMACloud {
	closes := model.Closes(bars)
	return EMACloud{
		FastPeriod: fast,
		SlowPeriod: slow,
		Fast:       series.EMA(closes, fast),
		Slow:       series.EMA(closes, slow),
	}
}

// Direction returns the cloud verdict at the last bar: bullish when the
// fast EMA sits above the slow, bearish below, neutral during warmup.
func (c EMACloud) Direction() model.Direction {
	n := len(c.Fast)
	if n == 0 || !series.IsDefined(c.Fast[n-1]) || !series.IsDefined(c.Slow[n-1]) {
		return model.DirectionNeutral
	}
	switch {
	case c.Fast[n-1] > c.Slow[n-1]:
		return model.DirectionBullish
	case c.Fast[n-1] < c.Slow[n-1]:
		return model.DirectionBearish
	default:
		return model.DirectionNeutral
	}
}
