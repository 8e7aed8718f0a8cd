// Package backtest is the walk-forward driver: it re-invokes the composite
// score aggregator and the rule-based regime classifier over growing
// historical prefixes and aggregates hit-rate and return statistics. Each
// window evaluation is a fresh pure computation, which is exactly what
// makes the replay valid; the cost is O(n) per index and O(n^2) overall.
package backtest

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/regime"
	"github.com/jmontanero23-design/signalengine/internal/series"
	"github.com/jmontanero23-design/signalengine/internal/signal"
)

// Options configure one backtest run.
type Options struct {
	Signal signal.Config

	// WindowSize is the trailing window evaluated at each index.
	WindowSize int

	// Score thresholds that turn a signal state into a trade direction.
	LongThreshold  float64
	ShortThreshold float64
}

// DefaultOptions returns the stock backtest settings.
func DefaultOptions() Options {
	return Options{
		Signal:         signal.DefaultConfig(),
		WindowSize:     100,
		LongThreshold:  65,
		ShortThreshold: 35,
	}
}

// Trade is one signal evaluation with its forward outcome.
type Trade struct {
	Index         int             `json:"index"`
	Timestamp     int64           `json:"timestamp"`
	Direction     model.Direction `json:"direction"`
	Score         float64         `json:"score"`
	Regime        model.Regime    `json:"regime"`
	ForwardReturn float64         `json:"forward_return"`
	Won           bool            `json:"won"`
}

// Results aggregate a full walk-forward run.
type Results struct {
	TotalSignals  int     `json:"total_signals"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"` // percent

	AverageForwardReturn float64 `json:"average_forward_return"`
	ProfitFactor         float64 `json:"profit_factor"`
	MaxDrawdown          float64 `json:"max_drawdown"` // percent of peak equity
	SharpeRatio          float64 `json:"sharpe_ratio"`

	MaxConsecutiveWins   int `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`

	RegimeWinRate map[model.Regime]float64 `json:"regime_win_rate"`
	EquityCurve   []float64                `json:"equity_curve"`
	Trades        []Trade                  `json:"trades"`
}

// Engine drives the walk-forward replay.
type Engine struct {
	opts   Options
	logger zerolog.Logger
}

// NewEngine creates a backtest engine.
func NewEngine(opts Options) *Engine {
	if opts.WindowSize <= 0 {
		opts.WindowSize = 100
	}
	return &Engine{
		opts:   opts,
		logger: log.With().Str("component", "backtest").Logger(),
	}
}

// Run replays the bar history: at each index past the warmup window the
// composite score is recomputed on the trailing window and validated
// against the next bar's close. Non-directional readings are skipped.
func (e *Engine) Run(bars []model.Bar) (*Results, error) {
	if err := model.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("invalid bar input: %w", err)
	}
	if len(bars) < e.opts.WindowSize+2 {
		return nil, fmt.Errorf("insufficient history for backtesting, got %d bars, need %d",
			len(bars), e.opts.WindowSize+2)
	}

	results := &Results{
		RegimeWinRate: map[model.Regime]float64{},
	}
	regimeStats := map[model.Regime]*struct{ correct, total int }{}

	equity := 1.0
	results.EquityCurve = append(results.EquityCurve, equity)
	peak := equity
	var returns []float64
	var grossWin, grossLoss float64
	consecutiveWins, consecutiveLosses := 0, 0

	for i := e.opts.WindowSize; i < len(bars)-1; i++ {
		window := bars[i-e.opts.WindowSize : i]
		state := signal.Evaluate(window, e.opts.Signal)

		direction := model.DirectionNeutral
		switch {
		case state.Score >= e.opts.LongThreshold:
			direction = model.DirectionBullish
		case state.Score <= e.opts.ShortThreshold:
			direction = model.DirectionBearish
		}
		if direction == model.DirectionNeutral {
			continue
		}

		classification := regime.Classify(window, regime.DefaultClassifierSettings())

		entry := window[len(window)-1].Close
		exit := bars[i].Close
		forward := 0.0
		if entry != 0 {
			forward = (exit - entry) / entry
		}
		if direction == model.DirectionBearish {
			forward = -forward
		}

		trade := Trade{
			Index:         i,
			Timestamp:     window[len(window)-1].Time,
			Direction:     direction,
			Score:         state.Score,
			Regime:        classification.Regime,
			ForwardReturn: forward,
			Won:           forward > 0,
		}
		results.Trades = append(results.Trades, trade)
		results.TotalSignals++
		returns = append(returns, forward)

		if trade.Won {
			results.WinningTrades++
			grossWin += forward
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			results.LosingTrades++
			grossLoss += -forward
			consecutiveLosses++
			consecutiveWins = 0
		}
		if consecutiveWins > results.MaxConsecutiveWins {
			results.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > results.MaxConsecutiveLosses {
			results.MaxConsecutiveLosses = consecutiveLosses
		}

		stats := regimeStats[classification.Regime]
		if stats == nil {
			stats = &struct{ correct, total int }{}
			regimeStats[classification.Regime] = stats
		}
		stats.total++
		if trade.Won {
			stats.correct++
		}

		equity *= 1 + forward
		results.EquityCurve = append(results.EquityCurve, equity)
		if equity > peak {
			peak = equity
		} else if peak > 0 {
			dd := (peak - equity) / peak
			if dd*100 > results.MaxDrawdown {
				results.MaxDrawdown = dd * 100
			}
		}
	}

	e.finalize(results, returns, grossWin, grossLoss, regimeStats)
	e.logger.Info().
		Int("signals", results.TotalSignals).
		Float64("win_rate", results.WinRate).
		Float64("profit_factor", results.ProfitFactor).
		Msg("Backtest complete")
	return results, nil
}

func (e *Engine) finalize(
	results *Results,
	returns []float64,
	grossWin, grossLoss float64,
	regimeStats map[model.Regime]*struct{ correct, total int },
) {
	if results.TotalSignals > 0 {
		results.WinRate = float64(results.WinningTrades) / float64(results.TotalSignals) * 100
		results.AverageForwardReturn = series.Mean(returns)
	}
	if grossLoss > 0 {
		results.ProfitFactor = grossWin / grossLoss
	} else {
		results.ProfitFactor = grossWin
	}
	for r, stats := range regimeStats {
		if stats.total > 0 {
			results.RegimeWinRate[r] = float64(stats.correct) / float64(stats.total) * 100
		}
	}
	if len(returns) >= 2 {
		mean := series.Mean(returns)
		std := series.Std(returns)
		if std > 0 {
			results.SharpeRatio = mean / std * math.Sqrt(252)
		}
	}
}

// FormatResults creates a human-readable summary of backtest results.
func FormatResults(results *Results) string {
	if results == nil {
		return "No backtest results available"
	}

	output := "\n===== BACKTEST RESULTS =====\n"
	output += fmt.Sprintf("Total signals: %d\n", results.TotalSignals)
	output += fmt.Sprintf("Winning trades: %d (%.2f%%)\n", results.WinningTrades, results.WinRate)
	output += fmt.Sprintf("Average forward return: %.4f%%\n", results.AverageForwardReturn*100)
	output += fmt.Sprintf("Profit factor: %.2f\n", results.ProfitFactor)
	output += fmt.Sprintf("Maximum drawdown: %.2f%%\n", results.MaxDrawdown)
	output += fmt.Sprintf("Sharpe ratio: %.2f\n", results.SharpeRatio)
	output += fmt.Sprintf("Max consecutive wins: %d\n", results.MaxConsecutiveWins)
	output += fmt.Sprintf("Max consecutive losses: %d\n", results.MaxConsecutiveLosses)

	if len(results.RegimeWinRate) > 0 {
		output += "\nWin rate by market regime:\n"
		regimes := make([]string, 0, len(results.RegimeWinRate))
		for r := range results.RegimeWinRate {
			regimes = append(regimes, string(r))
		}
		sort.Strings(regimes)
		for _, r := range regimes {
			output += fmt.Sprintf("- %s: %.2f%%\n", r, results.RegimeWinRate[model.Regime(r)])
		}
	}
	return output
}
