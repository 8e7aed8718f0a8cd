package signal

import "github.com/jmontanero23-design/signalengine/internal/model"

// Scorer is the incremental-update path for performance-sensitive callers.
// A full walk-forward recompute is O(n) per index and O(n^2) overall; the
// Scorer instead keeps a bounded trailing window and re-evaluates only
// that, making each update O(window).
//
// A Scorer is owned by a single caller and must not be updated
// concurrently. Results match Evaluate over the same trailing window.
type Scorer struct {
	cfg     Config
	maxBars int
	bars    []model.Bar
}

// NewScorer creates an incremental scorer. maxBars bounds the trailing
// window; it must cover the longest warmup in use (the Ichimoku senkou B
// period plus its forward shift is the usual floor).
func NewScorer(cfg Config, maxBars int) *Scorer {
	minWindow := cfg.Overlays.IchimokuSenkouB + cfg.Overlays.IchimokuKijun
	if maxBars < minWindow {
		maxBars = minWindow
	}
	return &Scorer{
		cfg:     cfg,
		maxBars: maxBars,
		bars:    make([]model.Bar, 0, maxBars),
	}
}

// Update appends one bar and returns the signal state over the trailing
// window.
func (s *Scorer) Update(bar model.Bar) model.SignalState {
	s.bars = append(s.bars, bar)
	if len(s.bars) > s.maxBars {
		s.bars = s.bars[len(s.bars)-s.maxBars:]
	}
	return Evaluate(s.bars, s.cfg)
}

// Window returns a copy of the trailing window currently held.
func (s *Scorer) Window() []model.Bar {
	out := make([]model.Bar, len(s.bars))
	copy(out, s.bars)
	return out
}
