package model

// Direction is a directional verdict shared by overlays and the score
// aggregator.
type Direction string

const (
	DirectionBullish Direction = "BULLISH"
	DirectionBearish Direction = "BEARISH"
	DirectionNeutral Direction = "NEUTRAL"
)

// Sign maps a direction to {-1, 0, +1} for weighted scoring.
func (d Direction) Sign() float64 {
	switch d {
	case DirectionBullish:
		return 1
	case DirectionBearish:
		return -1
	default:
		return 0
	}
}

// SqueezeState is the current volatility-squeeze reading derived from the
// Bollinger-inside-Keltner sequence. FiredBarsAgo is -1 when no fire has
// occurred inside the window.
type SqueezeState struct {
	On           bool      `json:"on"`
	Fired        bool      `json:"fired"`
	Direction    Direction `json:"direction"`
	FiredBarsAgo int       `json:"fired_bars_ago"`
}

// ScoreComponents is the fixed attribution table for the composite score.
// Each field holds that indicator's signed contribution to the score around
// the neutral midpoint of 50.
type ScoreComponents struct {
	EMACloud  float64 `json:"ema_cloud"`
	Ichimoku  float64 `json:"ichimoku"`
	Ribbon    float64 `json:"ribbon"`
	Saty      float64 `json:"saty"`
	Squeeze   float64 `json:"squeeze"`
	Momentum  float64 `json:"momentum"`
	Consensus float64 `json:"consensus"`
}

// ConsensusState reports multi-timeframe pivot agreement.
type ConsensusState struct {
	Enabled   bool      `json:"enabled"`
	Aligned   bool      `json:"aligned"`
	Primary   Direction `json:"primary"`
	Secondary Direction `json:"secondary"`
	Bonus     float64   `json:"bonus"`
}

// SignalState is the composite trade-signal output for one bar window.
// It is a pure function of the window, safe to recompute per call and to
// serialize as-is.
type SignalState struct {
	Score          float64         `json:"score"` // clamped to [0,100]
	Components     ScoreComponents `json:"components"`
	PivotNow       Direction       `json:"pivot_now"`
	SatyDirection  Direction       `json:"saty_direction"`
	IchimokuRegime Direction       `json:"ichimoku_regime"`
	Squeeze        SqueezeState    `json:"squeeze"`
	Consensus      ConsensusState  `json:"consensus"`
}
