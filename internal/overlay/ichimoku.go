package overlay

import (
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// Ichimoku holds the five Ichimoku Cloud lines. SpanA and SpanB are shifted
// forward by Shift bars, so their arrays are longer than the input window by
// Shift entries; Chikou is the close shifted backward by the same amount.
type Ichimoku struct {
	TenkanPeriod  int       `json:"tenkan_period"`
	KijunPeriod   int       `json:"kijun_period"`
	SenkouBPeriod int       `json:"senkou_b_period"`
	Shift         int       `json:"shift"`
	Tenkan        []float64 `json:"tenkan"`
	Kijun         []float64 `json:"kijun"`
	SpanA         []float64 `json:"span_a"`
	SpanB         []float64 `json:"span_b"`
	Chikou        []float64 `json:"chikou"`
}

// ComputeIchimoku computes the Ichimoku Cloud with the classic 9/26/52
// periods unless overridden.
func ComputeIchimoku(bars []model.Bar, tenkan, kijun, senkouB int) Ichimoku {
	n := len(bars)
	shift := kijun

	ich := Ichimoku{
		TenkanPeriod:  tenkan,
		KijunPeriod:   kijun,
		SenkouBPeriod: senkouB,
		Shift:         shift,
		Tenkan:        rollingMidpoint(bars, tenkan),
		Kijun:         rollingMidpoint(bars, kijun),
	}

	// Spans are plotted ahead of price: value computed at bar i lands at
	// index i+shift in the extended array.
	spanA := make([]float64, n+shift)
	spanB := make([]float64, n+shift)
	for i := range spanA {
		spanA[i] = series.Undefined()
		spanB[i] = series.Undefined()
	}
	midB := rollingMidpoint(bars, senkouB)
	for i := 0; i < n; i++ {
		if series.IsDefined(ich.Tenkan[i]) && series.IsDefined(ich.Kijun[i]) {
			spanA[i+shift] = (ich.Tenkan[i] + ich.Kijun[i]) / 2
		}
		if series.IsDefined(midB[i]) {
			spanB[i+shift] = midB[i]
		}
	}
	ich.SpanA = spanA
	ich.SpanB = spanB

	// Chikou is the close plotted behind price: chikou[i] = close[i+shift].
	chikou := make([]float64, n)
	for i := range chikou {
		if i+shift < n {
			chikou[i] = bars[i+shift].Close
		} else {
			chikou[i] = series.Undefined()
		}
	}
	ich.Chikou = chikou

	return ich
}

// Regime classifies price against the cloud at the last bar: above both
// spans is bullish, below both bearish, inside the cloud neutral.
func (ich Ichimoku) Regime(bars []model.Bar) model.Direction {
	n := len(bars)
	if n == 0 {
		return model.DirectionNeutral
	}
	// The cloud under the current bar was projected from shift bars back.
	a := ich.SpanA[n-1]
	b := ich.SpanB[n-1]
	if !series.IsDefined(a) || !series.IsDefined(b) {
		return model.DirectionNeutral
	}
	top := a
	bottom := b
	if b > a {
		top, bottom = b, a
	}
	close := bars[n-1].Close
	switch {
	case close > top:
		return model.DirectionBullish
	case close < bottom:
		return model.DirectionBearish
	default:
		return model.DirectionNeutral
	}
}

// rollingMidpoint computes (highest high + lowest low) / 2 over the
// trailing window, the building block of tenkan, kijun, and senkou B.
func rollingMidpoint(bars []model.Bar, period int) []float64 {
	out := make([]float64, len(bars))
	for i := range out {
		if i < period-1 {
			out[i] = series.Undefined()
			continue
		}
		hi := bars[i-period+1].High
		lo := bars[i-period+1].Low
		for j := i - period + 2; j <= i; j++ {
			if bars[j].High > hi {
				hi = bars[j].High
			}
			if bars[j].Low < lo {
				lo = bars[j].Low
			}
		}
		out[i] = (hi + lo) / 2
	}
	return out
}
