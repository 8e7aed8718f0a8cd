package regime

import (
	"math"

	"github.com/jmontanero23-design/signalengine/internal/model"
)

// ADX computes the Average Directional Index with Wilder smoothing and
// returns (adx, plusDI, minusDI) for the last bar. Returns zeros when the
// window is shorter than twice the period.
func ADX(bars []model.Bar, period int) (float64, float64, float64) {
	if period <= 0 || len(bars) < period*2 {
		return 0, 0, 0
	}

	n := len(bars) - 1
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	trueRange := make([]float64, n)

	for i := 1; i < len(bars); i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low

		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}

		tr := bars[i].High - bars[i].Low
		tr = math.Max(tr, math.Abs(bars[i].High-bars[i-1].Close))
		tr = math.Max(tr, math.Abs(bars[i].Low-bars[i-1].Close))
		trueRange[i-1] = tr
	}

	var smoothedPlusDM, smoothedMinusDM, smoothedTR float64
	for i := 0; i < period; i++ {
		smoothedPlusDM += plusDM[i]
		smoothedMinusDM += minusDM[i]
		smoothedTR += trueRange[i]
	}
	if smoothedTR == 0 {
		return 0, 0, 0
	}

	plusDI := smoothedPlusDM / smoothedTR * 100
	minusDI := smoothedMinusDM / smoothedTR * 100
	adx := dx(plusDI, minusDI)

	for i := period; i < n; i++ {
		smoothedPlusDM = smoothedPlusDM - smoothedPlusDM/float64(period) + plusDM[i]
		smoothedMinusDM = smoothedMinusDM - smoothedMinusDM/float64(period) + minusDM[i]
		smoothedTR = smoothedTR - smoothedTR/float64(period) + trueRange[i]
		if smoothedTR == 0 {
			continue
		}

		plusDI = smoothedPlusDM / smoothedTR * 100
		minusDI = smoothedMinusDM / smoothedTR * 100
		adx = (float64(period-1)*adx + dx(plusDI, minusDI)) / float64(period)
	}

	return adx, plusDI, minusDI
}

func dx(plusDI, minusDI float64) float64 {
	sum := plusDI + minusDI
	if sum == 0 {
		return 0
	}
	return math.Abs(plusDI-minusDI) / sum * 100
}
