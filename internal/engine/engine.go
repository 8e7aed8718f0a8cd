// Package engine is the facade wiring the overlay calculators, the score
// aggregator, the regime classifiers, and the regime monitor behind one
// entry point. It owns input validation: bar windows are checked once here
// and the pure packages below assume valid input.
package engine

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jmontanero23-design/signalengine/internal/config"
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/overlay"
	"github.com/jmontanero23-design/signalengine/internal/regime"
	"github.com/jmontanero23-design/signalengine/internal/signal"
)

// Engine bundles the configured analysis pipeline. The pure methods
// (Analyze, Overlays, ClassifyRegime, DetectAdvanced) are safe to call
// concurrently; the Monitor is single-writer.
type Engine struct {
	cfg       *config.Config
	signalCfg signal.Config
	logger    zerolog.Logger
	monitor   *regime.Monitor
}

// New builds an engine from configuration.
func New(cfg *config.Config) (*Engine, error) {
	signalCfg, err := cfg.SignalConfig()
	if err != nil {
		return nil, fmt.Errorf("building signal config: %w", err)
	}
	return &Engine{
		cfg:       cfg,
		signalCfg: signalCfg,
		logger:    log.With().Str("component", "engine").Logger(),
		monitor:   regime.NewMonitor(cfg.MonitorOptions()),
	}, nil
}

// SignalConfig exposes the aggregator configuration in use.
func (e *Engine) SignalConfig() signal.Config {
	return e.signalCfg
}

// Analyze computes the composite signal state for the bar window. When
// consensus is enabled and a secondary window is supplied, the alignment
// bonus is applied.
func (e *Engine) Analyze(bars []model.Bar, secondary []model.Bar) (model.SignalState, error) {
	if err := model.ValidateBars(bars); err != nil {
		return model.SignalState{}, fmt.Errorf("invalid bar input: %w", err)
	}
	state := signal.Evaluate(bars, e.signalCfg)

	if e.cfg.ConsensusEnabled && len(secondary) > 0 {
		if err := model.ValidateBars(secondary); err != nil {
			return model.SignalState{}, fmt.Errorf("invalid secondary bar input: %w", err)
		}
		state = signal.ApplyConsensus(state, secondary, e.signalCfg)
	}
	return state, nil
}

// Overlays computes the full overlay bundle for rendering.
func (e *Engine) Overlays(bars []model.Bar) (overlay.Bundle, error) {
	if err := model.ValidateBars(bars); err != nil {
		return overlay.Bundle{}, fmt.Errorf("invalid bar input: %w", err)
	}
	return overlay.ComputeBundle(bars, e.signalCfg.Overlays), nil
}

// ClassifyRegime runs the rule-based classifier.
func (e *Engine) ClassifyRegime(bars []model.Bar) (model.RegimeClassification, error) {
	if err := model.ValidateBars(bars); err != nil {
		return model.RegimeClassification{}, fmt.Errorf("invalid bar input: %w", err)
	}
	return regime.Classify(bars, regime.DefaultClassifierSettings()), nil
}

// DetectAdvanced runs the statistical regime stack without touching the
// monitor's history.
func (e *Engine) DetectAdvanced(bars []model.Bar) (regime.Detection, error) {
	if err := model.ValidateBars(bars); err != nil {
		return regime.Detection{}, fmt.Errorf("invalid bar input: %w", err)
	}
	return regime.DetectAdvanced(bars, e.cfg.MonitorOptions().Advanced), nil
}

// Monitor returns the engine's regime monitor.
func (e *Engine) Monitor() *regime.Monitor {
	return e.monitor
}
