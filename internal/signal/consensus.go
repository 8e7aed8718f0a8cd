package signal

import (
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/overlay"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// ConsensusBonus is the fixed score increment awarded when the primary and
// secondary timeframes agree on pivot direction.
const ConsensusBonus = 10

// timeframeLadder maps each timeframe to its consensus partner, the next
// slower bucket.
var timeframeLadder = map[string]string{
	"1min":  "5min",
	"5min":  "15min",
	"15min": "1h",
	"1h":    "4h",
	"4h":    "1d",
	"1d":    "1w",
}

// NextTimeframe returns the fixed secondary timeframe for a primary one,
// or "" when the primary has no slower bucket.
func NextTimeframe(primary string) string {
	return timeframeLadder[primary]
}

// ApplyConsensus evaluates the secondary-timeframe ribbon and, when both
// pivot directions are equal and non-neutral, adds exactly ConsensusBonus
// to the score. The bonus is additive; the result is re-clamped to 100 but
// never below the unmodified score.
func ApplyConsensus(state model.SignalState, secondaryBars []model.Bar, cfg Config) model.SignalState {
	o := cfg.Overlays
	ribbon := overlay.ComputeRibbon(secondaryBars, o.RibbonFast, o.RibbonMid, o.RibbonSlow)
	secondary := ribbon.PivotNow()

	state.Consensus = model.ConsensusState{
		Enabled:   true,
		Primary:   state.PivotNow,
		Secondary: secondary,
	}

	if state.PivotNow != model.DirectionNeutral && state.PivotNow == secondary {
		state.Consensus.Aligned = true
		state.Consensus.Bonus = ConsensusBonus
		state.Components.Consensus = ConsensusBonus
		state.Score = series.Clamp(state.Score+ConsensusBonus, 0, 100)
	}
	return state
}
