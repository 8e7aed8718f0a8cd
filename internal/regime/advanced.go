package regime

import (
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// AdvancedOptions tune the combined statistical detector.
type AdvancedOptions struct {
	MinBars    int // overall floor; below this everything is unknown
	HMMStates  int
	HMMMaxIter int
	HMMSeed    int64
	CycleMin   int
	CycleMax   int
	CUSUM      CUSUMOptions
}

// DefaultAdvancedOptions returns the stock settings.
func DefaultAdvancedOptions() AdvancedOptions {
	return AdvancedOptions{
		MinBars:    100,
		HMMStates:  3,
		HMMMaxIter: 50,
		HMMSeed:    42,
		CycleMin:   5,
		CycleMax:   60,
	}
}

// Detection is the combined output of the statistical regime models.
type Detection struct {
	Classification model.RegimeClassification `json:"classification"`
	Hurst          *HurstResult               `json:"hurst,omitempty"`
	GARCH          *GARCHResult               `json:"garch,omitempty"`
	HMM            *HMMResult                 `json:"hmm,omitempty"`
	ChangePoints   []int                      `json:"change_points,omitempty"`
	Cycles         []CycleCandidate           `json:"cycles,omitempty"`
}

// DetectAdvanced runs the full statistical stack (Hurst persistence, GARCH
// volatility, HMM state clustering, CUSUM change points, dominant cycle)
// over the bar window and folds the pieces into one classification.
//
// Combination order: a high-volatility GARCH reading overrides persistence;
// otherwise the Hurst label decides trending (with direction from the mean
// return) versus mean-reverting versus random. A change point inside the
// last ten bars halves the confidence, since whatever regime held before
// the break may no longer apply. HMM occupancy, when available, is blended
// into the confidence.
func DetectAdvanced(bars []model.Bar, opts AdvancedOptions) Detection {
	var d Detection
	if len(bars) < opts.MinBars {
		d.Classification = model.UnknownClassification()
		return d
	}

	returns := model.LogReturns(bars)
	factors := map[string]float64{}

	if h, ok := Hurst(returns); ok {
		d.Hurst = &h
		factors["hurst"] = h.Exponent
	}
	if g, ok := FitGARCH(returns); ok {
		d.GARCH = &g
		factors["garch_alpha"] = g.Params.Alpha
		factors["garch_beta"] = g.Params.Beta
		factors["vol_percentile"] = g.VolPercentile
	}
	if h, ok := FitHMMRegime(returns, opts.HMMStates, opts.HMMMaxIter, opts.HMMSeed); ok {
		d.HMM = &h
		factors["hmm_state"] = float64(h.CurrentState)
		factors["hmm_confidence"] = h.Confidence
	}
	d.ChangePoints = CUSUM(returns, opts.CUSUM)
	if period, strength := DominantCycle(detrend(model.Closes(bars)), opts.CycleMin, opts.CycleMax); period > 0 {
		d.Cycles = append(d.Cycles, CycleCandidate{Period: period, Strength: strength})
		factors["cycle_period"] = float64(period)
		factors["cycle_strength"] = strength
	}

	d.Classification = combine(d, returns, factors)
	return d
}

func combine(d Detection, returns []float64, factors map[string]float64) model.RegimeClassification {
	c := model.RegimeClassification{Factors: factors}

	switch {
	case d.GARCH != nil && d.GARCH.Regime == model.RegimeHighVolatility:
		c.Regime = model.RegimeHighVolatility
		c.Confidence = d.GARCH.VolPercentile
		c.Recommendation = "Volatility regime elevated: cut size, widen stops, expect whipsaws"
	case d.Hurst != nil && d.Hurst.Regime == model.RegimeTrending:
		if series.Mean(returns) >= 0 {
			c.Regime = model.RegimeTrendingBull
			c.Recommendation = "Persistent uptrend: trend-following entries favored"
		} else {
			c.Regime = model.RegimeTrendingBear
			c.Recommendation = "Persistent downtrend: avoid longs, momentum shorts favored"
		}
		c.Confidence = d.Hurst.Confidence
	case d.Hurst != nil && d.Hurst.Regime == model.RegimeMeanReverting:
		c.Regime = model.RegimeMeanReverting
		c.Confidence = d.Hurst.Confidence
		c.Recommendation = "Anti-persistent series: fade extensions back toward the mean"
	case d.Hurst != nil:
		c.Regime = model.RegimeRandom
		c.Confidence = d.Hurst.Confidence
		c.Recommendation = "No exploitable persistence: stand aside or trade event-driven only"
	default:
		return model.UnknownClassification()
	}

	if d.HMM != nil {
		c.Confidence = 0.5*c.Confidence + 0.5*d.HMM.Confidence
	}

	// A fresh structural shift undermines whatever label held before it.
	if n := len(returns); len(d.ChangePoints) > 0 && n-d.ChangePoints[len(d.ChangePoints)-1] <= 10 {
		c.Confidence /= 2
		c.Factors["recent_change_point"] = 1
	}

	c.Confidence = series.Clamp(c.Confidence, 0, 100)
	return c
}
