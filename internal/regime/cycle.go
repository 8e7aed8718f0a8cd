package regime

import (
	"math"
	"sort"

	"github.com/jmontanero23-design/signalengine/internal/series"
)

// CycleCandidate is one candidate dominant period ranked by the absolute
// autocorrelation at that lag.
type CycleCandidate struct {
	Period   int     `json:"period"`
	Strength float64 `json:"strength"` // |autocorrelation| at the period lag
}

// DominantCycle scans candidate periods in [minPeriod, maxPeriod] and
// returns the one maximizing absolute autocorrelation, with its strength.
// Returns (0, 0) when the series is too short for any candidate.
func DominantCycle(values []float64, minPeriod, maxPeriod int) (int, float64) {
	candidates := rankCycles(values, minPeriod, maxPeriod)
	if len(candidates) == 0 {
		return 0, 0
	}
	return candidates[0].Period, candidates[0].Strength
}

// DominantCyclesDetrended first removes a least-squares linear trend, then
// applies the same autocorrelation ranking and returns the top three
// candidate periods. Detrending keeps a slow drift from masquerading as a
// long cycle.
func DominantCyclesDetrended(values []float64, minPeriod, maxPeriod int) []CycleCandidate {
	candidates := rankCycles(detrend(values), minPeriod, maxPeriod)
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	return candidates
}

func rankCycles(values []float64, minPeriod, maxPeriod int) []CycleCandidate {
	if minPeriod < 2 {
		minPeriod = 2
	}
	var out []CycleCandidate
	for period := minPeriod; period <= maxPeriod; period++ {
		ac := series.Autocorrelation(values, period)
		if !series.IsDefined(ac) {
			break // longer lags only get worse
		}
		out = append(out, CycleCandidate{Period: period, Strength: math.Abs(ac)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	return out
}

func detrend(values []float64) []float64 {
	n := len(values)
	if n < 2 {
		return append([]float64(nil), values...)
	}
	slope := series.Slope(values)
	mean := series.Mean(values)
	// Line through the mean at the center index.
	center := float64(n-1) / 2
	out := make([]float64, n)
	for i, v := range values {
		out[i] = v - (mean + slope*(float64(i)-center))
	}
	return out
}
