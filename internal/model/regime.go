package model

// Regime is a discrete market-regime label. The rule-based classifier and
// the statistical detectors share the same label space.
type Regime string

const (
	RegimeTrendingBull   Regime = "trending_bull"
	RegimeTrendingBear   Regime = "trending_bear"
	RegimeHighVolatility Regime = "high_volatility"
	RegimeLowVolatility  Regime = "low_volatility"
	RegimeModerateVol    Regime = "moderate"
	RegimeLowLiquidity   Regime = "low_liquidity"
	RegimeRanging        Regime = "ranging"
	RegimeWeakTrend      Regime = "weak_trend"
	RegimeTrending       Regime = "trending"
	RegimeMeanReverting  Regime = "mean_reverting"
	RegimeRandom         Regime = "random"
	RegimeUnknown        Regime = "unknown"
)

// RegimeClassification is the plain output record of a regime detector.
// Confidence is on a 0-100 scale.
type RegimeClassification struct {
	Regime         Regime             `json:"regime"`
	Confidence     float64            `json:"confidence"`
	Factors        map[string]float64 `json:"factors"`
	Recommendation string             `json:"recommendation"`
}

// UnknownClassification is the graceful-degradation result used whenever a
// detector has too little data to say anything.
func UnknownClassification() RegimeClassification {
	return RegimeClassification{
		Regime:         RegimeUnknown,
		Confidence:     0,
		Factors:        map[string]float64{},
		Recommendation: "Insufficient data for regime classification",
	}
}
