package overlay

import (
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// Bands holds the Bollinger/Keltner envelopes, the regression momentum
// series, and the per-bar squeeze containment flags. All arrays are aligned
// with the input bars.
type Bands struct {
	Period      int `json:"period"`
	MomentumLen int `json:"momentum_len"`

	BollUpper []float64 `json:"boll_upper"`
	BollMid   []float64 `json:"boll_mid"`
	BollLower []float64 `json:"boll_lower"`

	KeltUpper []float64 `json:"kelt_upper"`
	KeltMid   []float64 `json:"kelt_mid"`
	KeltLower []float64 `json:"kelt_lower"`

	Momentum  []float64 `json:"momentum"`
	SqueezeOn []bool    `json:"squeeze_on"`
}

// ComputeBands computes Bollinger Bands (SMA ± bbMult*stddev), the Keltner
// Channel (SMA ± kcMult*ATR), linear-regression momentum over momentumLen
// bars, and the squeeze-on flag (Bollinger fully inside Keltner) per bar.
func ComputeBands(bars []model.Bar, period int, bbMult, kcMult float64, momentumLen int) Bands {
	closes := model.Closes(bars)
	n := len(bars)

	b := Bands{
		Period:      period,
		MomentumLen: momentumLen,
		BollMid:     series.SMA(closes, period),
		KeltMid:     series.SMA(closes, period),
	}

	std := series.RollingStd(closes, period)
	atr := ATR(bars, period)

	b.BollUpper = make([]float64, n)
	b.BollLower = make([]float64, n)
	b.KeltUpper = make([]float64, n)
	b.KeltLower = make([]float64, n)
	b.Momentum = make([]float64, n)
	b.SqueezeOn = make([]bool, n)

	for i := 0; i < n; i++ {
		if series.IsDefined(b.BollMid[i]) && series.IsDefined(std[i]) {
			b.BollUpper[i] = b.BollMid[i] + bbMult*std[i]
			b.BollLower[i] = b.BollMid[i] - bbMult*std[i]
		} else {
			b.BollUpper[i] = series.Undefined()
			b.BollLower[i] = series.Undefined()
		}
		if series.IsDefined(b.KeltMid[i]) && series.IsDefined(atr[i]) {
			b.KeltUpper[i] = b.KeltMid[i] + kcMult*atr[i]
			b.KeltLower[i] = b.KeltMid[i] - kcMult*atr[i]
		} else {
			b.KeltUpper[i] = series.Undefined()
			b.KeltLower[i] = series.Undefined()
		}

		// Squeeze is on when the Bollinger band sits fully inside the
		// Keltner channel.
		b.SqueezeOn[i] = series.IsDefined(b.BollUpper[i]) && series.IsDefined(b.KeltUpper[i]) &&
			b.BollUpper[i] <= b.KeltUpper[i] && b.BollLower[i] >= b.KeltLower[i]

		if i >= momentumLen-1 {
			b.Momentum[i] = series.Slope(closes[i-momentumLen+1 : i+1])
		} else {
			b.Momentum[i] = series.Undefined()
		}
	}
	return b
}

// LastMomentum returns the most recent defined momentum value, or 0.
func (b Bands) LastMomentum() float64 {
	for i := len(b.Momentum) - 1; i >= 0; i-- {
		if series.IsDefined(b.Momentum[i]) {
			return b.Momentum[i]
		}
	}
	return 0
}
