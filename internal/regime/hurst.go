package regime

import (
	"math"

	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// MinHurstBars is the minimum series length for a rescaled-range estimate.
const MinHurstBars = 64

// HurstResult is the trend-persistence estimate.
type HurstResult struct {
	Exponent   float64      `json:"exponent"` // clipped to [0,1]
	Regime     model.Regime `json:"regime"`
	Confidence float64      `json:"confidence"` // 0-100, scales with |H-0.5|
}

// Hurst estimates the Hurst exponent via rescaled-range (R/S) analysis:
// for several sub-window sizes, average R/S over the non-overlapping
// sub-windows, then regress log(R/S) on log(size). H>0.6 is trending,
// H<0.4 mean-reverting, otherwise random. Returns ok=false on short or
// zero-variance input.
func Hurst(values []float64) (HurstResult, bool) {
	n := len(values)
	if n < MinHurstBars {
		return HurstResult{}, false
	}

	var logSizes, logRS []float64
	for size := 8; size <= n/2; size *= 2 {
		rs := averageRescaledRange(values, size)
		if rs <= 0 {
			continue
		}
		logSizes = append(logSizes, math.Log(float64(size)))
		logRS = append(logRS, math.Log(rs))
	}
	if len(logSizes) < 2 {
		return HurstResult{}, false
	}

	h := regressionSlope(logSizes, logRS)
	h = series.Clamp(h, 0, 1)

	r := HurstResult{Exponent: h}
	switch {
	case h > 0.6:
		r.Regime = model.RegimeTrending
	case h < 0.4:
		r.Regime = model.RegimeMeanReverting
	default:
		r.Regime = model.RegimeRandom
	}
	r.Confidence = series.Clamp(math.Abs(h-0.5)*400, 0, 100)
	return r, true
}

// averageRescaledRange computes the mean R/S statistic over non-overlapping
// sub-windows of the given size.
func averageRescaledRange(values []float64, size int) float64 {
	var sum float64
	count := 0
	for start := 0; start+size <= len(values); start += size {
		window := values[start : start+size]
		rs := rescaledRange(window)
		if rs > 0 {
			sum += rs
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// rescaledRange is R/S for one window: the range of the mean-adjusted
// cumulative sum divided by the window's standard deviation.
func rescaledRange(window []float64) float64 {
	mean := series.Mean(window)
	std := series.Std(window)
	if !series.IsDefined(std) || std == 0 {
		return 0
	}

	var cum, minCum, maxCum float64
	for _, v := range window {
		cum += v - mean
		if cum < minCum {
			minCum = cum
		}
		if cum > maxCum {
			maxCum = cum
		}
	}
	return (maxCum - minCum) / std
}

func regressionSlope(x, y []float64) float64 {
	varX := series.Variance(x)
	if !series.IsDefined(varX) || varX == 0 {
		return 0.5
	}
	return series.Covariance(x, y) / varX
}
