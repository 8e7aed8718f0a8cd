package regime

import (
	"testing"

	"github.com/jmontanero23-design/signalengine/internal/model"
)

func monitorWindow(n int) []model.Bar {
	return generateTestBars(n, func(i int) model.Bar {
		return model.Bar{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	})
}

func TestMonitorHistoryCap(t *testing.T) {
	m := NewMonitor(DefaultMonitorOptions())

	// Short windows classify as unknown, which is fine: the FIFO behavior is
	// what is under test.
	window := monitorWindow(10)
	for i := 0; i < maxMonitorHistory+5; i++ {
		if _, err := m.Update(window); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}

	history := m.History()
	if len(history) != maxMonitorHistory {
		t.Errorf("history length = %d, want the cap %d", len(history), maxMonitorHistory)
	}
}

func TestMonitorStability(t *testing.T) {
	m := NewMonitor(DefaultMonitorOptions())
	window := monitorWindow(10)

	var report MonitorReport
	var err error
	for i := 0; i < 12; i++ {
		report, err = m.Update(window)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}

	// Twelve identical readings leave one distinct regime in the last ten.
	if report.Stability != 75 {
		t.Errorf("Stability = %v, want 75 for a single persistent regime", report.Stability)
	}
	if report.Detection.Classification.Regime != model.RegimeUnknown {
		t.Errorf("Regime = %v, want unknown on a short window", report.Detection.Classification.Regime)
	}
}

func TestMonitorTransitionMatrix(t *testing.T) {
	m := NewMonitor(DefaultMonitorOptions())
	window := monitorWindow(10)

	var report MonitorReport
	for i := 0; i < 5; i++ {
		report, _ = m.Update(window)
	}

	row := report.Transitions[model.RegimeUnknown]
	if row == nil {
		t.Fatal("expected a transition row for the observed regime")
	}
	if p := row[model.RegimeUnknown]; p != 1 {
		t.Errorf("self-transition probability = %v, want 1", p)
	}
	// A self-loop is not a transition risk even at full probability.
	if report.TransitionRisk {
		t.Error("TransitionRisk should stay false when the likely next regime is the current one")
	}
	if report.LikelyNext != model.RegimeUnknown || report.LikelyNextProb != 1 {
		t.Errorf("LikelyNext = %v (%v), want unknown with probability 1",
			report.LikelyNext, report.LikelyNextProb)
	}
}

func TestMonitorRejectsInvalidBars(t *testing.T) {
	m := NewMonitor(DefaultMonitorOptions())
	bad := []model.Bar{
		{Time: 2, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Time: 1, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
	}
	if _, err := m.Update(bad); err == nil {
		t.Error("Update() should reject out-of-order bars")
	}
	if len(m.History()) != 0 {
		t.Error("a rejected update must not be recorded")
	}
}

func TestDetectAdvancedInsufficientData(t *testing.T) {
	d := DetectAdvanced(monitorWindow(20), DefaultAdvancedOptions())
	if d.Classification.Regime != model.RegimeUnknown {
		t.Errorf("Regime = %v, want unknown below the data floor", d.Classification.Regime)
	}
	if d.Hurst != nil || d.GARCH != nil || d.HMM != nil {
		t.Error("no statistical model should run below the data floor")
	}
}

func TestDetectAdvancedTrendingSeries(t *testing.T) {
	bars := generateTestBars(400, func(i int) model.Bar {
		close := 100 * (1 + 0.002*float64(i))
		return model.Bar{Open: close, High: close * 1.01, Low: close * 0.99, Close: close, Volume: 1000}
	})

	d := DetectAdvanced(bars, DefaultAdvancedOptions())
	if d.Hurst == nil {
		t.Fatal("expected a Hurst estimate on 400 bars")
	}
	if d.GARCH == nil {
		t.Fatal("expected a GARCH fit on 400 bars")
	}
	if d.HMM == nil {
		t.Fatal("expected an HMM fit on 400 bars")
	}
	if d.Classification.Regime == model.RegimeUnknown {
		t.Error("combined classification should not be unknown with every model fitted")
	}
	if d.Classification.Confidence < 0 || d.Classification.Confidence > 100 {
		t.Errorf("Confidence = %v, want within [0,100]", d.Classification.Confidence)
	}
}
