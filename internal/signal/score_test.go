package signal

import (
	"math"
	"reflect"
	"testing"

	"github.com/jmontanero23-design/signalengine/internal/model"
)

func generateTestBars(n int, generator func(i int) model.Bar) []model.Bar {
	bars := make([]model.Bar, n)
	for i := 0; i < n; i++ {
		bars[i] = generator(i)
		bars[i].Time = int64(i + 1)
	}
	return bars
}

func trendBars(n int, step float64) []model.Bar {
	return generateTestBars(n, func(i int) model.Bar {
		close := 100 + float64(i)*step
		return model.Bar{Open: close - step/2, High: close + 1, Low: close - 1, Close: close, Volume: 1000}
	})
}

func TestEvaluateScoreBounds(t *testing.T) {
	tests := []struct {
		name string
		bars []model.Bar
	}{
		{"strong uptrend", trendBars(120, 1)},
		{"strong downtrend", trendBars(120, -0.5)},
		{"flat", trendBars(120, 0)},
		{"short window", trendBars(10, 1)},
		{"empty window", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Evaluate(tt.bars, DefaultConfig())
			if state.Score < 0 || state.Score > 100 {
				t.Errorf("Score = %v, want within [0,100]", state.Score)
			}
		})
	}
}

func TestEvaluateDirectionalScores(t *testing.T) {
	up := Evaluate(trendBars(120, 1), DefaultConfig())
	if up.Score <= 50 {
		t.Errorf("uptrend Score = %v, want > 50", up.Score)
	}
	down := Evaluate(trendBars(120, -1), DefaultConfig())
	if down.Score >= 50 {
		t.Errorf("downtrend Score = %v, want < 50", down.Score)
	}
}

func TestEvaluateAttributionSumsToScore(t *testing.T) {
	state := Evaluate(trendBars(120, 1), DefaultConfig())
	c := state.Components
	sum := 50 + c.EMACloud + c.Ichimoku + c.Ribbon + c.Saty + c.Squeeze + c.Momentum + c.Consensus
	if sum >= 0 && sum <= 100 && math.Abs(sum-state.Score) > 1e-9 {
		t.Errorf("component sum = %v, Score = %v; attribution must explain the score", sum, state.Score)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	bars := trendBars(150, 0.7)
	a := Evaluate(bars, DefaultConfig())
	b := Evaluate(bars, DefaultConfig())
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Evaluate() is not deterministic: %+v vs %+v", a, b)
	}
}

func TestEvaluateShortWindowStaysNeutral(t *testing.T) {
	state := Evaluate(trendBars(5, 1), DefaultConfig())
	if state.Score != 50 {
		t.Errorf("Score = %v, want the neutral 50 when every overlay is in warmup", state.Score)
	}
	if state.PivotNow != model.DirectionNeutral {
		t.Errorf("PivotNow = %v, want NEUTRAL", state.PivotNow)
	}
}

func TestApplyConsensus(t *testing.T) {
	cfg := DefaultConfig()
	primary := trendBars(120, 1)

	tests := []struct {
		name        string
		secondary   []model.Bar
		wantAligned bool
	}{
		{"aligned timeframes", trendBars(120, 2), true},
		{"conflicting timeframes", trendBars(120, -2), false},
		{"neutral secondary", trendBars(120, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := Evaluate(primary, cfg)
			got := ApplyConsensus(base, tt.secondary, cfg)

			if got.Consensus.Aligned != tt.wantAligned {
				t.Fatalf("Aligned = %v, want %v", got.Consensus.Aligned, tt.wantAligned)
			}
			if tt.wantAligned {
				want := math.Min(base.Score+ConsensusBonus, 100)
				if math.Abs(got.Score-want) > 1e-9 {
					t.Errorf("Score = %v, want %v (base plus the fixed bonus)", got.Score, want)
				}
				if got.Components.Consensus != ConsensusBonus {
					t.Errorf("Components.Consensus = %v, want %v", got.Components.Consensus, float64(ConsensusBonus))
				}
			} else {
				if got.Score != base.Score {
					t.Errorf("Score = %v, want unchanged %v without alignment", got.Score, base.Score)
				}
				if got.Components.Consensus != 0 {
					t.Errorf("Components.Consensus = %v, want 0", got.Components.Consensus)
				}
			}
		})
	}
}

func TestApplyConsensusClampsAtHundred(t *testing.T) {
	cfg := DefaultConfig()
	// Overweight the trend overlays so a fully aligned window saturates the
	// scale before the bonus lands.
	cfg.Weights = Weights{EMACloud: 60, Ichimoku: 60, Ribbon: 60, Saty: 10, Squeeze: 5, Momentum: 5}

	state := Evaluate(trendBars(120, 1), cfg)
	got := ApplyConsensus(state, trendBars(120, 2), cfg)
	if got.Score != 100 {
		t.Errorf("Score = %v, want 100 after clamping", got.Score)
	}
}

func TestNextTimeframe(t *testing.T) {
	tests := []struct {
		primary  string
		expected string
	}{
		{"1min", "5min"},
		{"5min", "15min"},
		{"15min", "1h"},
		{"1h", "4h"},
		{"4h", "1d"},
		{"1d", "1w"},
		{"1w", ""},
		{"bogus", ""},
	}
	for _, tt := range tests {
		if got := NextTimeframe(tt.primary); got != tt.expected {
			t.Errorf("NextTimeframe(%q) = %q, want %q", tt.primary, got, tt.expected)
		}
	}
}

func TestScorerMatchesEvaluate(t *testing.T) {
	cfg := DefaultConfig()
	scorer := NewScorer(cfg, 100)
	bars := trendBars(150, 0.5)

	var last model.SignalState
	for _, bar := range bars {
		last = scorer.Update(bar)
	}

	window := scorer.Window()
	if len(window) != 100 {
		t.Fatalf("Window() length = %d, want the 100-bar cap", len(window))
	}
	direct := Evaluate(window, cfg)
	if !reflect.DeepEqual(last, direct) {
		t.Errorf("incremental state diverges from direct evaluation:\n%+v\nvs\n%+v", last, direct)
	}
}

func TestScorerEnforcesWarmupFloor(t *testing.T) {
	cfg := DefaultConfig()
	scorer := NewScorer(cfg, 10)
	minWindow := cfg.Overlays.IchimokuSenkouB + cfg.Overlays.IchimokuKijun

	for _, bar := range trendBars(minWindow+20, 1) {
		scorer.Update(bar)
	}
	if got := len(scorer.Window()); got != minWindow {
		t.Errorf("Window() length = %d, want the warmup floor %d", got, minWindow)
	}
}
