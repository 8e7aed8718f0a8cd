package regime

import (
	"math"

	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// MinGARCHBars is the minimum number of returns for a GARCH fit.
const MinGARCHBars = 50

// GARCHParams is a GARCH(1,1) parameter set. Alpha+Beta < 1 is the
// stationarity invariant; FitGARCH only ever emits parameters satisfying
// it.
type GARCHParams struct {
	Omega float64 `json:"omega"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// GARCHResult is the outcome of one volatility fit.
type GARCHResult struct {
	Params        GARCHParams  `json:"params"`
	CondVol       []float64    `json:"cond_vol"` // per-return conditional volatility
	CurrentVol    float64      `json:"current_vol"`
	VolPercentile float64      `json:"vol_percentile"` // current vol vs full fitted path
	Regime        model.Regime `json:"regime"`
	LogLikelihood float64      `json:"log_likelihood"`
}

// garch grid search lattice. Small by design: the likelihood surface is
// smooth enough that a coarse grid lands near the optimum, and the search
// stays deterministic.
var (
	garchAlphaGrid = []float64{0.02, 0.05, 0.08, 0.12, 0.16, 0.20, 0.25, 0.30}
	garchBetaGrid  = []float64{0.50, 0.60, 0.70, 0.78, 0.84, 0.88, 0.92, 0.95}
)

// FitGARCH fits GARCH(1,1) to the return series by grid search maximizing
// the Gaussian log-likelihood, subject to alpha+beta < 1. Omega is set per
// candidate so that the implied unconditional variance matches the sample
// variance (variance targeting). Returns ok=false on short or degenerate
// input. When no candidate clearly dominates, the best one found is still
// returned rather than failing.
func FitGARCH(returns []float64) (GARCHResult, bool) {
	if len(returns) < MinGARCHBars {
		return GARCHResult{}, false
	}
	sampleVar := series.Variance(returns)
	if !series.IsDefined(sampleVar) || sampleVar <= 0 {
		return GARCHResult{}, false
	}

	best := GARCHResult{LogLikelihood: math.Inf(-1)}
	for _, alpha := range garchAlphaGrid {
		for _, beta := range garchBetaGrid {
			if alpha+beta >= 1 {
				continue
			}
			omega := sampleVar * (1 - alpha - beta)
			params := GARCHParams{Omega: omega, Alpha: alpha, Beta: beta}
			ll, condVar := garchLogLikelihood(returns, params, sampleVar)
			if ll > best.LogLikelihood {
				best.Params = params
				best.LogLikelihood = ll
				best.CondVol = toVol(condVar)
			}
		}
	}
	if math.IsInf(best.LogLikelihood, -1) {
		return GARCHResult{}, false
	}

	best.CurrentVol = best.CondVol[len(best.CondVol)-1]
	best.VolPercentile = series.PercentileRank(best.CondVol, best.CurrentVol)
	best.Regime = volRegime(best.VolPercentile)
	return best, true
}

// Forecast projects the conditional variance steps ahead using the
// standard GARCH recursion; the returned slice holds variances for
// t+1..t+steps.
func (p GARCHParams) Forecast(lastVar, lastReturn float64, steps int) []float64 {
	if steps <= 0 {
		return nil
	}
	out := make([]float64, steps)
	next := p.Omega + p.Alpha*lastReturn*lastReturn + p.Beta*lastVar
	out[0] = next
	persistence := p.Alpha + p.Beta
	for i := 1; i < steps; i++ {
		next = p.Omega + persistence*next
		out[i] = next
	}
	return out
}

// garchLogLikelihood evaluates the Gaussian log-likelihood under the
// recursive variance h_t = omega + alpha*r_{t-1}^2 + beta*h_{t-1}, seeded
// with the sample variance.
func garchLogLikelihood(returns []float64, p GARCHParams, seedVar float64) (float64, []float64) {
	n := len(returns)
	condVar := make([]float64, n)
	h := seedVar

	var ll float64
	for t := 0; t < n; t++ {
		if t > 0 {
			h = p.Omega + p.Alpha*returns[t-1]*returns[t-1] + p.Beta*h
		}
		if h <= 0 {
			h = 1e-12
		}
		condVar[t] = h
		ll += -0.5 * (math.Log(2*math.Pi*h) + returns[t]*returns[t]/h)
	}
	return ll, condVar
}

func volRegime(percentile float64) model.Regime {
	switch {
	case percentile >= 75:
		return model.RegimeHighVolatility
	case percentile <= 25:
		return model.RegimeLowVolatility
	default:
		return model.RegimeModerateVol
	}
}

func toVol(condVar []float64) []float64 {
	out := make([]float64, len(condVar))
	for i, v := range condVar {
		out[i] = math.Sqrt(v)
	}
	return out
}
