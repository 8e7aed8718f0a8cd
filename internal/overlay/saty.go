package overlay

import (
	"math"

	"github.com/jmontanero23-design/signalengine/internal/model"
)

// SatyMultiples are the Fibonacci-style ATR multiples the level ladder is
// built from.
var SatyMultiples = [5]float64{0.236, 0.618, 1.0, 1.236, 1.618}

// SatyLevels are symmetric ATR-based levels around a reference pivot price.
// RangeUsed is the fraction of one ATR consumed by the current excursion
// from the pivot.
type SatyLevels struct {
	Pivot      float64         `json:"pivot"`
	ATR        float64         `json:"atr"`
	UpLevels   [5]float64      `json:"up_levels"`
	DownLevels [5]float64      `json:"down_levels"`
	RangeUsed  float64         `json:"range_used"`
	Direction  model.Direction `json:"direction"`
}

// ComputeSatyLevels builds the level ladder from ATR(period) and the given
// pivot. The engine anchors the pivot on the prior bar's close by default;
// callers that anchor on session open pass their own pivot.
func ComputeSatyLevels(bars []model.Bar, atrPeriod int, pivot float64) SatyLevels {
	s := SatyLevels{Pivot: pivot, Direction: model.DirectionNeutral}
	if len(bars) == 0 {
		return s
	}
	s.ATR = LastATR(bars, atrPeriod)
	for i, m := range SatyMultiples {
		s.UpLevels[i] = pivot + m*s.ATR
		s.DownLevels[i] = pivot - m*s.ATR
	}

	close := bars[len(bars)-1].Close
	if s.ATR > 0 {
		s.RangeUsed = math.Abs(close-pivot) / s.ATR
	}

	// The first level is the trigger: an excursion beyond 0.236 ATR from
	// the pivot sets the direction.
	trigger := SatyMultiples[0] * s.ATR
	switch {
	case s.ATR > 0 && close >= pivot+trigger:
		s.Direction = model.DirectionBullish
	case s.ATR > 0 && close <= pivot-trigger:
		s.Direction = model.DirectionBearish
	}
	return s
}

// DefaultSatyPivot is the prior bar's close, the engine's stated anchoring
// assumption. Falls back to the only close available on one-bar windows.
func DefaultSatyPivot(bars []model.Bar) float64 {
	switch {
	case len(bars) >= 2:
		return bars[len(bars)-2].Close
	case len(bars) == 1:
		return bars[0].Close
	default:
		return 0
	}
}
