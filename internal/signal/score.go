// Package signal combines the overlay verdicts into a single 0-100
// composite score with per-indicator attribution, plus multi-timeframe
// consensus. Evaluate is a pure function of the bar window: recomputing it
// on any prefix of the same series reproduces the same score, which is what
// makes replay-based backtesting valid.
package signal

import (
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/overlay"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// Weights are the per-indicator score weights. They should sum to 100; a
// fully aligned bullish window scores 100 and a fully bearish one 0.
type Weights struct {
	EMACloud float64 `yaml:"ema_cloud"`
	Ichimoku float64 `yaml:"ichimoku"`
	Ribbon   float64 `yaml:"ribbon"`
	Saty     float64 `yaml:"saty"`
	Squeeze  float64 `yaml:"squeeze"`
	Momentum float64 `yaml:"momentum"`
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() Weights {
	return Weights{
		EMACloud: 20,
		Ichimoku: 20,
		Ribbon:   20,
		Saty:     15,
		Squeeze:  15,
		Momentum: 10,
	}
}

// Config controls one aggregator evaluation.
type Config struct {
	Overlays overlay.Settings
	Weights  Weights

	// A squeeze fire within this many bars still counts directionally.
	SqueezeFireLookback int
}

// DefaultConfig returns the stock aggregator configuration.
func DefaultConfig() Config {
	return Config{
		Overlays:            overlay.DefaultSettings(),
		Weights:             DefaultWeights(),
		SqueezeFireLookback: 5,
	}
}

// Evaluate runs every overlay calculator over the window and folds the
// verdicts into a SignalState. Each indicator contributes
// (weight/2)*verdict around the neutral midpoint of 50, and the signed
// contribution is recorded in Components for explainability.
func Evaluate(bars []model.Bar, cfg Config) model.SignalState {
	bundle := overlay.ComputeBundle(bars, cfg.Overlays)

	pivot := bundle.Ribbon.PivotNow()
	ichimoku := bundle.Ichimoku.Regime(bars)
	cloud := bundle.EMACloud.Direction()
	saty := bundle.Saty.Direction
	squeeze := squeezeVerdict(bundle.Squeeze, cfg.SqueezeFireLookback)
	momentum := momentumVerdict(bundle.Bands)

	w := cfg.Weights
	components := model.ScoreComponents{
		EMACloud: w.EMACloud / 2 * cloud.Sign(),
		Ichimoku: w.Ichimoku / 2 * ichimoku.Sign(),
		Ribbon:   w.Ribbon / 2 * pivot.Sign(),
		Saty:     w.Saty / 2 * saty.Sign(),
		Squeeze:  w.Squeeze / 2 * squeeze.Sign(),
		Momentum: w.Momentum / 2 * momentum.Sign(),
	}

	score := 50 + components.EMACloud + components.Ichimoku + components.Ribbon +
		components.Saty + components.Squeeze + components.Momentum

	return model.SignalState{
		Score:          series.Clamp(score, 0, 100),
		Components:     components,
		PivotNow:       pivot,
		SatyDirection:  saty,
		IchimokuRegime: ichimoku,
		Squeeze:        bundle.Squeeze,
	}
}

// squeezeVerdict turns the squeeze state into a directional verdict. Only a
// recent fire is directional; a building squeeze or a stale fire is neutral.
func squeezeVerdict(s model.SqueezeState, lookback int) model.Direction {
	if s.FiredBarsAgo >= 0 && s.FiredBarsAgo <= lookback {
		return s.Direction
	}
	return model.DirectionNeutral
}

func momentumVerdict(b overlay.Bands) model.Direction {
	m := b.LastMomentum()
	switch {
	case m > 0:
		return model.DirectionBullish
	case m < 0:
		return model.DirectionBearish
	default:
		return model.DirectionNeutral
	}
}
