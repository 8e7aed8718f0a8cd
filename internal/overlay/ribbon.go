package overlay

import (
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// Ribbon is the 8/21/34 EMA pivot ribbon with a per-bar directional state.
type Ribbon struct {
	FastPeriod int               `json:"fast_period"`
	MidPeriod  int               `json:"mid_period"`
	SlowPeriod int               `json:"slow_period"`
	Fast       []float64         `json:"fast"`
	Mid        []float64         `json:"mid"`
	Slow       []float64         `json:"slow"`
	States     []model.Direction `json:"states"`
}

// ComputeRibbon computes the EMA trio and classifies each bar.
//
// Classification rule: a bar is bullish when the EMAs are stacked
// fast > mid > slow, the close sits above the fast EMA, and the fast EMA
// rose versus the previous bar; bearish on the full mirror; neutral
// otherwise (including warmup).
func ComputeRibbon(bars []model.Bar, fast, mid, slow int) Ribbon {
	closes := model.Closes(bars)
	r := Ribbon{
		FastPeriod: fast,
		MidPeriod:  mid,
		SlowPeriod: slow,
		Fast:       series.EMA(closes, fast),
		Mid:        series.EMA(closes, mid),
		Slow:       series.EMA(closes, slow),
	}

	r.States = make([]model.Direction, len(bars))
	for i := range bars {
		r.States[i] = r.classify(closes, i)
	}
	return r
}

// PivotNow is the ribbon direction at the most recent bar.
func (r Ribbon) PivotNow() model.Direction {
	if len(r.States) == 0 {
		return model.DirectionNeutral
	}
	return r.States[len(r.States)-1]
}

func (r Ribbon) classify(closes []float64, i int) model.Direction {
	if i == 0 ||
		!series.IsDefined(r.Fast[i]) || !series.IsDefined(r.Mid[i]) ||
		!series.IsDefined(r.Slow[i]) || !series.IsDefined(r.Fast[i-1]) {
		return model.DirectionNeutral
	}
	stackedUp := r.Fast[i] > r.Mid[i] && r.Mid[i] > r.Slow[i]
	stackedDown := r.Fast[i] < r.Mid[i] && r.Mid[i] < r.Slow[i]
	rising := r.Fast[i] > r.Fast[i-1]
	falling := r.Fast[i] < r.Fast[i-1]

	switch {
	case stackedUp && closes[i] > r.Fast[i] && rising:
		return model.DirectionBullish
	case stackedDown && closes[i] < r.Fast[i] && falling:
		return model.DirectionBearish
	default:
		return model.DirectionNeutral
	}
}
