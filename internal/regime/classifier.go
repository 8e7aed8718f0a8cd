// Package regime classifies market conditions two ways: a fast rule-based
// classifier built on ADX, EMA alignment, and ATR/volume percentiles, and a
// set of statistical models (HMM, GARCH, Hurst, change-point, cycle) folded
// together by the advanced detector and tracked over time by the Monitor.
package regime

import (
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/overlay"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// ClassifierSettings are the rule-based classifier's lookbacks and
// thresholds.
type ClassifierSettings struct {
	ADXPeriod      int
	ATRPeriod      int
	ATRLookback    int // bars for the ATR percentile rank
	VolumeLookback int // bars for the volume percentile rank
	MinBars        int
}

// DefaultClassifierSettings returns the stock settings.
func DefaultClassifierSettings() ClassifierSettings {
	return ClassifierSettings{
		ADXPeriod:      14,
		ATRPeriod:      14,
		ATRLookback:    100,
		VolumeLookback: 20,
		MinBars:        50,
	}
}

// Classify applies the rule-based precedence chain:
// trending_bull → trending_bear → high_volatility → low_liquidity →
// ranging → weak_trend. First match wins. Below MinBars the result is
// unknown with confidence 0.
func Classify(bars []model.Bar, s ClassifierSettings) model.RegimeClassification {
	if len(bars) < s.MinBars {
		return model.UnknownClassification()
	}

	adx, plusDI, minusDI := ADX(bars, s.ADXPeriod)
	alignment := emaAlignment(bars)
	atrPct := atrPercentile(bars, s.ATRPeriod, s.ATRLookback)
	volPct := volumePercentile(bars, s.VolumeLookback)

	factors := map[string]float64{
		"adx":               adx,
		"plus_di":           plusDI,
		"minus_di":          minusDI,
		"ema_alignment":     alignment,
		"atr_percentile":    atrPct,
		"volume_percentile": volPct,
	}

	c := model.RegimeClassification{Factors: factors}
	switch {
	case adx > 25 && alignment > 0 && volPct > 30:
		c.Regime = model.RegimeTrendingBull
		c.Confidence = series.Clamp(adx*2, 0, 100)
		c.Recommendation = "Strong uptrend: favor momentum entries, trail stops below the ribbon"
	case adx > 25 && alignment < 0 && volPct > 30:
		c.Regime = model.RegimeTrendingBear
		c.Confidence = series.Clamp(adx*2, 0, 100)
		c.Recommendation = "Strong downtrend: favor short momentum, avoid catching falling knives"
	case atrPct > 80:
		c.Regime = model.RegimeHighVolatility
		c.Confidence = atrPct
		c.Recommendation = "Elevated volatility: reduce position size and widen stops"
	case volPct < 30:
		c.Regime = model.RegimeLowLiquidity
		c.Confidence = series.Clamp(40+(30-volPct)*2, 0, 100)
		c.Recommendation = "Thin volume: expect slippage, treat breakouts with suspicion"
	case adx < 20:
		c.Regime = model.RegimeRanging
		c.Confidence = series.Clamp(50+(20-adx)*2, 0, 100)
		c.Recommendation = "Range-bound: fade extremes, mean-reversion setups preferred"
	default:
		c.Regime = model.RegimeWeakTrend
		c.Confidence = 30
		c.Recommendation = "Weak or forming trend: wait for confirmation before committing"
	}
	return c
}

// emaAlignment scores the 8/21/34/50 EMA stack against price: +1 for a full
// bullish stack with price on top, -1 for the bearish mirror, 0 otherwise.
func emaAlignment(bars []model.Bar) float64 {
	closes := model.Closes(bars)
	periods := []int{8, 21, 34, 50}
	last := make([]float64, len(periods))
	for i, p := range periods {
		ema := series.EMA(closes, p)
		v := ema[len(ema)-1]
		if !series.IsDefined(v) {
			return 0
		}
		last[i] = v
	}
	price := closes[len(closes)-1]

	bullish := price > last[0]
	bearish := price < last[0]
	for i := 1; i < len(last); i++ {
		bullish = bullish && last[i-1] > last[i]
		bearish = bearish && last[i-1] < last[i]
	}
	switch {
	case bullish:
		return 1
	case bearish:
		return -1
	default:
		return 0
	}
}

// atrPercentile ranks the current ATR against its own trailing history.
func atrPercentile(bars []model.Bar, period, lookback int) float64 {
	atr := overlay.ATR(bars, period)
	defined := make([]float64, 0, lookback)
	for i := len(atr) - 1; i >= 0 && len(defined) < lookback; i-- {
		if series.IsDefined(atr[i]) {
			defined = append(defined, atr[i])
		}
	}
	if len(defined) == 0 {
		return 50
	}
	// defined[0] is the current value.
	return series.PercentileRank(defined, defined[0])
}

// volumePercentile ranks the latest bar's volume within the trailing
// lookback. Zero-volume histories fall back to a neutral 50.
func volumePercentile(bars []model.Bar, lookback int) float64 {
	start := len(bars) - lookback
	if start < 0 {
		start = 0
	}
	vols := make([]float64, 0, lookback)
	allZero := true
	for _, b := range bars[start:] {
		vols = append(vols, b.Volume)
		if b.Volume != 0 {
			allZero = false
		}
	}
	if len(vols) == 0 || allZero {
		return 50
	}
	return series.PercentileRank(vols, vols[len(vols)-1])
}
