package regime

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jmontanero23-design/signalengine/internal/model"
)

// maxMonitorHistory caps the monitor's FIFO regime history.
const maxMonitorHistory = 100

// MonitorRecord is one observed regime reading.
type MonitorRecord struct {
	Timestamp  int64        `json:"timestamp"`
	Regime     model.Regime `json:"regime"`
	Confidence float64      `json:"confidence"`
}

// MonitorOptions tune the regime monitor.
type MonitorOptions struct {
	Advanced AdvancedOptions
	// TransitionRiskThreshold is the transition-matrix probability above
	// which a likely regime change raises an alert.
	TransitionRiskThreshold float64
}

// DefaultMonitorOptions returns the stock monitor settings.
func DefaultMonitorOptions() MonitorOptions {
	return MonitorOptions{
		Advanced:                DefaultAdvancedOptions(),
		TransitionRiskThreshold: 0.7,
	}
}

// MonitorReport is the output of one monitor update.
type MonitorReport struct {
	Detection      Detection                                 `json:"detection"`
	Stability      float64                                   `json:"stability"` // 0-100
	Transitions    map[model.Regime]map[model.Regime]float64 `json:"transitions"`
	LikelyNext     model.Regime                              `json:"likely_next"`
	LikelyNextProb float64                                   `json:"likely_next_prob"`
	TransitionRisk bool                                      `json:"transition_risk"`
}

// Monitor tracks regime readings over time: a FIFO history capped at 100
// entries, the empirical transition matrix derived from it, a stability
// score, and transition-risk alerting. A Monitor is owned by a single
// caller (typically one per symbol+timeframe) and provides no internal
// locking; concurrent callers must serialize access themselves.
type Monitor struct {
	opts    MonitorOptions
	logger  zerolog.Logger
	history []MonitorRecord
}

// NewMonitor creates a regime monitor.
func NewMonitor(opts MonitorOptions) *Monitor {
	if opts.TransitionRiskThreshold <= 0 {
		opts.TransitionRiskThreshold = 0.7
	}
	return &Monitor{
		opts:   opts,
		logger: log.With().Str("component", "regime_monitor").Logger(),
	}
}

// Update runs the combined detector over the bar window, appends the
// reading to the history (evicting oldest-first past the cap), and
// recomputes the derived state. The input window is validated; a contract
// violation is returned rather than recorded.
func (m *Monitor) Update(bars []model.Bar) (MonitorReport, error) {
	if err := model.ValidateBars(bars); err != nil {
		return MonitorReport{}, err
	}

	detection := DetectAdvanced(bars, m.opts.Advanced)

	var ts int64
	if len(bars) > 0 {
		ts = bars[len(bars)-1].Time
	}
	m.history = append(m.history, MonitorRecord{
		Timestamp:  ts,
		Regime:     detection.Classification.Regime,
		Confidence: detection.Classification.Confidence,
	})
	if len(m.history) > maxMonitorHistory {
		m.history = m.history[len(m.history)-maxMonitorHistory:]
	}

	report := MonitorReport{
		Detection:   detection,
		Stability:   m.stability(),
		Transitions: m.transitionMatrix(),
	}
	m.assessTransitionRisk(&report)

	m.logger.Debug().
		Str("regime", string(detection.Classification.Regime)).
		Float64("confidence", detection.Classification.Confidence).
		Float64("stability", report.Stability).
		Msg("Regime monitor updated")

	return report, nil
}

// History returns a copy of the current regime history, oldest first.
func (m *Monitor) History() []MonitorRecord {
	out := make([]MonitorRecord, len(m.history))
	copy(out, m.history)
	return out
}

// stability scores how settled the regime has been recently:
// 100 - 25 * (distinct regimes in the last 10 readings), floored at 0.
func (m *Monitor) stability() float64 {
	start := len(m.history) - 10
	if start < 0 {
		start = 0
	}
	distinct := map[model.Regime]struct{}{}
	for _, r := range m.history[start:] {
		distinct[r.Regime] = struct{}{}
	}
	score := 100 - 25*float64(len(distinct))
	if score < 0 {
		return 0
	}
	return score
}

// transitionMatrix derives empirical transition probabilities from the
// consecutive pairs in the regime history.
func (m *Monitor) transitionMatrix() map[model.Regime]map[model.Regime]float64 {
	counts := map[model.Regime]map[model.Regime]float64{}
	totals := map[model.Regime]float64{}
	for i := 1; i < len(m.history); i++ {
		from := m.history[i-1].Regime
		to := m.history[i].Regime
		if counts[from] == nil {
			counts[from] = map[model.Regime]float64{}
		}
		counts[from][to]++
		totals[from]++
	}
	for from, row := range counts {
		for to := range row {
			row[to] /= totals[from]
		}
	}
	return counts
}

// assessTransitionRisk looks up the most probable next regime from the
// current regime's transition row and raises an alert when a change is
// both likely and above the configured threshold.
func (m *Monitor) assessTransitionRisk(report *MonitorReport) {
	if len(m.history) == 0 {
		return
	}
	current := m.history[len(m.history)-1].Regime
	row := report.Transitions[current]
	for to, prob := range row {
		if prob > report.LikelyNextProb {
			report.LikelyNext = to
			report.LikelyNextProb = prob
		}
	}
	if report.LikelyNext != "" && report.LikelyNext != current &&
		report.LikelyNextProb > m.opts.TransitionRiskThreshold {
		report.TransitionRisk = true
		m.logger.Warn().
			Str("current", string(current)).
			Str("likely_next", string(report.LikelyNext)).
			Float64("probability", report.LikelyNextProb).
			Msg("Regime transition risk")
	}
}
