package engine

import (
	"testing"

	"github.com/jmontanero23-design/signalengine/internal/config"
	"github.com/jmontanero23-design/signalengine/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:                "error",
		Timeframe:               "5min",
		ConsensusEnabled:        true,
		ScoreLongThreshold:      65,
		ScoreShortThreshold:     35,
		HMMStates:               3,
		HMMMaxIter:              50,
		HMMSeed:                 42,
		TransitionRiskThreshold: 0.7,
		BacktestWindow:          100,
	}
}

func trendBars(n int, step float64) []model.Bar {
	bars := make([]model.Bar, n)
	for i := 0; i < n; i++ {
		close := 100 + float64(i)*step
		bars[i] = model.Bar{
			Time: int64(i + 1), Open: close - step/2,
			High: close + 1, Low: close - 1, Close: close, Volume: 1000,
		}
	}
	return bars
}

func TestEngineAnalyze(t *testing.T) {
	eng, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	state, err := eng.Analyze(trendBars(120, 1), nil)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if state.Score <= 50 {
		t.Errorf("Score = %v, want > 50 on an uptrend", state.Score)
	}
	if state.Consensus.Enabled {
		t.Error("consensus should not engage without a secondary window")
	}
}

func TestEngineAnalyzeWithConsensus(t *testing.T) {
	eng, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	base, err := eng.Analyze(trendBars(120, 1), nil)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	boosted, err := eng.Analyze(trendBars(120, 1), trendBars(120, 2))
	if err != nil {
		t.Fatalf("Analyze() with secondary error = %v", err)
	}
	if !boosted.Consensus.Aligned {
		t.Fatal("aligned uptrends should produce consensus")
	}
	if boosted.Score <= base.Score {
		t.Errorf("consensus score %v should exceed base %v", boosted.Score, base.Score)
	}
}

func TestEngineRejectsInvalidInput(t *testing.T) {
	eng, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	bad := trendBars(60, 1)
	bad[5].Time = bad[4].Time

	if _, err := eng.Analyze(bad, nil); err == nil {
		t.Error("Analyze() should reject out-of-order bars")
	}
	if _, err := eng.Overlays(bad); err == nil {
		t.Error("Overlays() should reject out-of-order bars")
	}
	if _, err := eng.ClassifyRegime(bad); err == nil {
		t.Error("ClassifyRegime() should reject out-of-order bars")
	}
	if _, err := eng.DetectAdvanced(bad); err == nil {
		t.Error("DetectAdvanced() should reject out-of-order bars")
	}
}

func TestEngineClassifyRegime(t *testing.T) {
	eng, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	c, err := eng.ClassifyRegime(trendBars(20, 1))
	if err != nil {
		t.Fatalf("ClassifyRegime() error = %v", err)
	}
	if c.Regime != model.RegimeUnknown {
		t.Errorf("Regime = %v, want unknown on a short window", c.Regime)
	}
}
