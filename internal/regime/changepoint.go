package regime

import (
	"sort"

	"github.com/jmontanero23-design/signalengine/internal/series"
)

// CUSUMOptions tune the cumulative-sum change-point detector. Drift and
// Threshold default to multiples of the series standard deviation when
// zero.
type CUSUMOptions struct {
	Drift     float64
	Threshold float64
}

// CUSUM detects mean shifts: two one-sided accumulators
// max(0, c + (x - mean ∓ drift)) grow while the series drifts away from its
// mean; whenever either exceeds the threshold a change point is emitted and
// both reset to 0. Returns the indices of detected change points in order.
func CUSUM(values []float64, opts CUSUMOptions) []int {
	if len(values) < 4 {
		return nil
	}
	mean := series.Mean(values)
	std := series.Std(values)
	if !series.IsDefined(std) || std == 0 {
		return nil
	}
	drift := opts.Drift
	if drift == 0 {
		drift = 0.5 * std
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = 5 * std
	}

	var changePoints []int
	var cPos, cNeg float64
	for i, x := range values {
		cPos = max0(cPos + (x - mean - drift))
		cNeg = max0(cNeg + (mean - x - drift))
		if cPos > threshold || cNeg > threshold {
			changePoints = append(changePoints, i)
			cPos = 0
			cNeg = 0
		}
	}
	return changePoints
}

// StructuralBreak is one candidate break point ranked by its F-statistic.
type StructuralBreak struct {
	Index int     `json:"index"`
	FStat float64 `json:"f_stat"`
}

// StructuralBreaks scans candidate split points Bai-Perron style
// (simplified): at each split the two-segment sum of squared residuals
// around the segment means is compared against the whole-series residual
// via an F-statistic heuristic. The top-K splits are returned, at least
// minSegment apart from each other and from the edges.
func StructuralBreaks(values []float64, topK, minSegment int) []StructuralBreak {
	n := len(values)
	if minSegment < 2 {
		minSegment = 2
	}
	if n < 2*minSegment || topK <= 0 {
		return nil
	}

	fullSSR := ssrAroundMean(values)
	if fullSSR == 0 {
		return nil
	}

	candidates := make([]StructuralBreak, 0, n)
	for split := minSegment; split <= n-minSegment; split++ {
		splitSSR := ssrAroundMean(values[:split]) + ssrAroundMean(values[split:])
		if splitSSR <= 0 {
			splitSSR = 1e-12
		}
		f := (fullSSR - splitSSR) / (splitSSR / float64(n-2))
		if f > 0 {
			candidates = append(candidates, StructuralBreak{Index: split, FStat: f})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].FStat > candidates[j].FStat })

	// Greedy selection with the minimum-segment spacing constraint.
	var selected []StructuralBreak
	for _, c := range candidates {
		if len(selected) == topK {
			break
		}
		tooClose := false
		for _, s := range selected {
			if abs(c.Index-s.Index) < minSegment {
				tooClose = true
				break
			}
		}
		if !tooClose {
			selected = append(selected, c)
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].Index < selected[j].Index })
	return selected
}

func ssrAroundMean(values []float64) float64 {
	mean := series.Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
