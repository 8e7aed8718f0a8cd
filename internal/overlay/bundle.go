// Package overlay implements the chart-overlay calculators: EMA cloud,
// Ichimoku Cloud, the pivot ribbon, SATY ATR levels, Bollinger/Keltner
// bands with regression momentum, and the squeeze state machine layered on
// top of them. Every calculator is a pure function of a bar window.
package overlay

import "github.com/jmontanero23-design/signalengine/internal/model"

// Settings carries the indicator periods for one bundle computation.
type Settings struct {
	EMACloudFast int
	EMACloudSlow int

	RibbonFast int
	RibbonMid  int
	RibbonSlow int

	IchimokuTenkan  int
	IchimokuKijun   int
	IchimokuSenkouB int

	ATRPeriod int

	BandPeriod  int
	BBMult      float64
	KCMult      float64
	MomentumLen int
}

// DefaultSettings are the classic chart defaults.
func DefaultSettings() Settings {
	return Settings{
		EMACloudFast:    8,
		EMACloudSlow:    21,
		RibbonFast:      8,
		RibbonMid:       21,
		RibbonSlow:      34,
		IchimokuTenkan:  9,
		IchimokuKijun:   26,
		IchimokuSenkouB: 52,
		ATRPeriod:       14,
		BandPeriod:      20,
		BBMult:          2.0,
		KCMult:          1.5,
		MomentumLen:     20,
	}
}

// Bundle aggregates all computed overlays for one bar window. It is
// recomputed fresh per invocation and has no identity beyond the call.
type Bundle struct {
	EMACloud EMACloud           `json:"ema_cloud"`
	Ichimoku Ichimoku           `json:"ichimoku"`
	Ribbon   Ribbon             `json:"ribbon"`
	Saty     SatyLevels         `json:"saty"`
	Bands    Bands              `json:"bands"`
	Squeeze  model.SqueezeState `json:"squeeze"`
}

// ComputeBundle runs every overlay calculator over the bar window. Short
// windows degrade to undefined entries rather than failing.
func ComputeBundle(bars []model.Bar, s Settings) Bundle {
	bands := ComputeBands(bars, s.BandPeriod, s.BBMult, s.KCMult, s.MomentumLen)
	return Bundle{
		EMACloud: ComputeEMACloud(bars, s.EMACloudFast, s.EMACloudSlow),
		Ichimoku: ComputeIchimoku(bars, s.IchimokuTenkan, s.IchimokuKijun, s.IchimokuSenkouB),
		Ribbon:   ComputeRibbon(bars, s.RibbonFast, s.RibbonMid, s.RibbonSlow),
		Saty:     ComputeSatyLevels(bars, s.ATRPeriod, DefaultSatyPivot(bars)),
		Bands:    bands,
		Squeeze:  ScanSqueeze(bands.SqueezeOn, bands.Momentum),
	}
}
