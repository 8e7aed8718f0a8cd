package regime

import (
	"math"
	"reflect"
	"testing"

	"github.com/jmontanero23-design/signalengine/internal/model"
)

func TestHurst(t *testing.T) {
	persistent := make([]float64, 256)
	for i := range persistent {
		// Slowly drifting positive returns: strongly persistent.
		persistent[i] = 0.01 + 0.002*math.Sin(float64(i)/30)
	}
	antiPersistent := make([]float64, 256)
	for i := range antiPersistent {
		// Strict alternation: every move is immediately undone.
		if i%2 == 0 {
			antiPersistent[i] = 0.01
		} else {
			antiPersistent[i] = -0.01
		}
	}

	tests := []struct {
		name     string
		values   []float64
		expected model.Regime
	}{
		{"persistent series", persistent, model.RegimeTrending},
		{"anti-persistent series", antiPersistent, model.RegimeMeanReverting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Hurst(tt.values)
			if !ok {
				t.Fatal("Hurst() ok = false, want a result")
			}
			if got.Exponent < 0 || got.Exponent > 1 {
				t.Errorf("Exponent = %v, want within [0,1]", got.Exponent)
			}
			if got.Regime != tt.expected {
				t.Errorf("Regime = %v (H=%.3f), want %v", got.Regime, got.Exponent, tt.expected)
			}
			if got.Confidence < 0 || got.Confidence > 100 {
				t.Errorf("Confidence = %v, want within [0,100]", got.Confidence)
			}
		})
	}
}

func TestHurstInsufficientData(t *testing.T) {
	if _, ok := Hurst(make([]float64, MinHurstBars-1)); ok {
		t.Error("Hurst() should refuse series below the minimum length")
	}
}

func TestFitGARCH(t *testing.T) {
	returns := make([]float64, 200)
	for i := range returns {
		// Deterministic returns with time-varying magnitude.
		returns[i] = 0.01 * math.Sin(float64(i)) * (1 + 0.5*math.Sin(float64(i)/25))
	}

	got, ok := FitGARCH(returns)
	if !ok {
		t.Fatal("FitGARCH() ok = false, want a fit")
	}
	if got.Params.Alpha+got.Params.Beta >= 1 {
		t.Errorf("alpha+beta = %v, stationarity requires < 1", got.Params.Alpha+got.Params.Beta)
	}
	if got.Params.Omega <= 0 {
		t.Errorf("omega = %v, want > 0", got.Params.Omega)
	}
	if len(got.CondVol) != len(returns) {
		t.Errorf("CondVol length = %d, want %d", len(got.CondVol), len(returns))
	}
	if got.CurrentVol <= 0 {
		t.Errorf("CurrentVol = %v, want > 0", got.CurrentVol)
	}
	if got.VolPercentile < 0 || got.VolPercentile > 100 {
		t.Errorf("VolPercentile = %v, want within [0,100]", got.VolPercentile)
	}
	switch got.Regime {
	case model.RegimeHighVolatility, model.RegimeLowVolatility, model.RegimeModerateVol:
	default:
		t.Errorf("Regime = %v, want a volatility label", got.Regime)
	}
}

func TestFitGARCHDegenerateInput(t *testing.T) {
	if _, ok := FitGARCH(make([]float64, 30)); ok {
		t.Error("FitGARCH() should refuse short series")
	}
	if _, ok := FitGARCH(make([]float64, 100)); ok {
		t.Error("FitGARCH() should refuse zero-variance series")
	}
}

func TestGARCHForecastDecaysTowardUnconditional(t *testing.T) {
	p := GARCHParams{Omega: 0.0001, Alpha: 0.1, Beta: 0.8}
	forecast := p.Forecast(0.01, 0.05, 50)
	if len(forecast) != 50 {
		t.Fatalf("Forecast length = %d, want 50", len(forecast))
	}
	unconditional := p.Omega / (1 - p.Alpha - p.Beta)
	first := math.Abs(forecast[0] - unconditional)
	last := math.Abs(forecast[49] - unconditional)
	if last >= first {
		t.Errorf("forecast should converge toward the unconditional variance: |d0|=%v |d49|=%v", first, last)
	}
}

func TestFitHMMRegime(t *testing.T) {
	obs := make([]float64, 300)
	for i := range obs {
		// Two well-separated emission clusters split mid-series.
		if i < 150 {
			obs[i] = -0.02 + 0.002*math.Sin(float64(i))
		} else {
			obs[i] = 0.02 + 0.002*math.Cos(float64(i))
		}
	}

	got, ok := FitHMMRegime(obs, 2, 50, 42)
	if !ok {
		t.Fatal("FitHMMRegime() ok = false, want a fit")
	}
	if len(got.States) != len(obs) {
		t.Fatalf("decoded path length = %d, want %d", len(got.States), len(obs))
	}

	for i, row := range got.Params.Transition {
		var sum float64
		for _, v := range row {
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("transition row %d sums to %v, want 1", i, sum)
		}
	}

	// The series ends in the high-mean cluster, so the decoded current state
	// must be the one whose fitted mean is higher.
	other := 1 - got.CurrentState
	if got.Params.Means[got.CurrentState] <= got.Params.Means[other] {
		t.Errorf("current state mean %v not above other state mean %v",
			got.Params.Means[got.CurrentState], got.Params.Means[other])
	}
	if got.Confidence <= 0 || got.Confidence > 100 {
		t.Errorf("Confidence = %v, want within (0,100]", got.Confidence)
	}
}

func TestFitHMMRegimeReproducible(t *testing.T) {
	obs := make([]float64, 260)
	for i := range obs {
		obs[i] = 0.01 * math.Sin(float64(i)*0.7)
	}
	a, okA := FitHMMRegime(obs, 3, 30, 7)
	b, okB := FitHMMRegime(obs, 3, 30, 7)
	if !okA || !okB {
		t.Fatal("expected both fits to succeed")
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical seed and input should reproduce the identical fit")
	}
}

func TestFitHMMRegimeInsufficientData(t *testing.T) {
	if _, ok := FitHMMRegime(make([]float64, MinHMMBars-1), 3, 50, 42); ok {
		t.Error("FitHMMRegime() should refuse series below the minimum length")
	}
}

func TestCUSUMDetectsMeanShift(t *testing.T) {
	values := make([]float64, 100)
	for i := 50; i < 100; i++ {
		values[i] = 10
	}

	points := CUSUM(values, CUSUMOptions{})
	if len(points) == 0 {
		t.Fatal("CUSUM() found no change points across a 0 to 10 mean shift")
	}
	found := false
	for _, p := range points {
		if p >= 50 && p <= 70 {
			found = true
		}
	}
	if !found {
		t.Errorf("change points = %v, want one shortly after the shift at 50", points)
	}
}

func TestCUSUMStableSeries(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 5 + 0.01*math.Sin(float64(i))
	}
	if points := CUSUM(values, CUSUMOptions{}); len(points) != 0 {
		t.Errorf("CUSUM() on a stable series = %v, want none", points)
	}

	if points := CUSUM(make([]float64, 100), CUSUMOptions{}); points != nil {
		t.Errorf("CUSUM() on a constant series = %v, want nil", points)
	}
}

func TestStructuralBreaks(t *testing.T) {
	values := make([]float64, 100)
	for i := 50; i < 100; i++ {
		values[i] = 10
	}

	breaks := StructuralBreaks(values, 1, 10)
	if len(breaks) != 1 {
		t.Fatalf("StructuralBreaks() = %v, want exactly one", breaks)
	}
	if got := breaks[0].Index; got < 45 || got > 55 {
		t.Errorf("break index = %d, want near the true split at 50", got)
	}
	if breaks[0].FStat <= 0 {
		t.Errorf("FStat = %v, want > 0", breaks[0].FStat)
	}
}

func TestDominantCycle(t *testing.T) {
	values := make([]float64, 120)
	for i := range values {
		values[i] = math.Sin(2 * math.Pi * float64(i) / 20)
	}

	period, strength := DominantCycle(values, 15, 30)
	if period < 19 || period > 21 {
		t.Errorf("period = %d, want the generating cycle of 20", period)
	}
	if strength < 0.7 {
		t.Errorf("strength = %v, want a strong autocorrelation", strength)
	}

	if period, _ := DominantCycle(values[:5], 15, 30); period != 0 {
		t.Errorf("period on a too-short series = %d, want 0", period)
	}
}

func TestDominantCyclesDetrended(t *testing.T) {
	values := make([]float64, 150)
	for i := range values {
		// A linear drift plus a genuine cycle: detrending must expose the cycle.
		values[i] = float64(i)*0.5 + 3*math.Sin(2*math.Pi*float64(i)/25)
	}
	candidates := DominantCyclesDetrended(values, 20, 40)
	if len(candidates) == 0 {
		t.Fatal("DominantCyclesDetrended() found no candidates")
	}
	if got := candidates[0].Period; got < 23 || got > 27 {
		t.Errorf("top period = %d, want near 25", got)
	}
}
