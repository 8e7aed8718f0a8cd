package overlay

import (
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/series"
)

// ScanSqueeze derives the current SqueezeState from the per-bar squeeze-on
// sequence and the momentum series in a single forward scan. The scan has
// no state across invocations: every call re-derives the full history, so
// replaying a growing prefix reproduces each historical state exactly.
//
// Transitions: OFF→ON when bands compress, ON→OFF marks the transition bar
// fired with direction taken from the sign of momentum at that bar,
// OFF→OFF increments the bars-since-fire counter.
func ScanSqueeze(on []bool, momentum []float64) model.SqueezeState {
	state := model.SqueezeState{
		Direction:    model.DirectionNeutral,
		FiredBarsAgo: -1,
	}
	if len(on) == 0 {
		return state
	}

	lastFired := -1
	firedDir := model.DirectionNeutral
	for i := 1; i < len(on); i++ {
		if on[i-1] && !on[i] {
			lastFired = i
			firedDir = momentumDirection(momentum, i)
		}
	}

	last := len(on) - 1
	state.On = on[last]
	if lastFired >= 0 {
		state.FiredBarsAgo = last - lastFired
		state.Direction = firedDir
		state.Fired = lastFired == last
	}
	return state
}

func momentumDirection(momentum []float64, i int) model.Direction {
	if i >= len(momentum) || !series.IsDefined(momentum[i]) {
		return model.DirectionNeutral
	}
	switch {
	case momentum[i] > 0:
		return model.DirectionBullish
	case momentum[i] < 0:
		return model.DirectionBearish
	default:
		return model.DirectionNeutral
	}
}
