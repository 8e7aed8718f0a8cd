package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jmontanero23-design/signalengine/internal/backtest"
	"github.com/jmontanero23-design/signalengine/internal/config"
	"github.com/jmontanero23-design/signalengine/internal/engine"
	"github.com/jmontanero23-design/signalengine/internal/model"
	"github.com/jmontanero23-design/signalengine/internal/overlay"
	"github.com/jmontanero23-design/signalengine/internal/regime"
)

var (
	barsPath      string
	secondaryPath string
)

func main() {
	root := &cobra.Command{
		Use:   "signalengine",
		Short: "Technical signal and market-regime analysis over OHLCV bars",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to load configuration")
			}
			setupLogging(cfg.LogLevel)
		},
	}
	root.PersistentFlags().StringVar(&barsPath, "bars", "", "path to a JSON file of OHLCV bars (required)")
	root.PersistentFlags().StringVar(&secondaryPath, "secondary", "", "path to a JSON file of higher-timeframe bars for consensus")

	root.AddCommand(analyzeCmd(), regimeCmd(), backtestCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Compute overlays and the composite 0-100 signal score",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			eng, err := engine.New(cfg)
			if err != nil {
				return fmt.Errorf("building engine: %w", err)
			}

			bars, err := loadBars(barsPath)
			if err != nil {
				return err
			}
			var secondary []model.Bar
			if secondaryPath != "" {
				if secondary, err = loadBars(secondaryPath); err != nil {
					return err
				}
			}

			state, err := eng.Analyze(bars, secondary)
			if err != nil {
				return err
			}
			bundle, err := eng.Overlays(bars)
			if err != nil {
				return err
			}

			printOverlays(bars, bundle)
			printSignal(state)
			return nil
		},
	}
}

func regimeCmd() *cobra.Command {
	var advanced bool
	var monitorStep int
	cmd := &cobra.Command{
		Use:   "regime",
		Short: "Classify the current market regime",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			eng, err := engine.New(cfg)
			if err != nil {
				return fmt.Errorf("building engine: %w", err)
			}

			bars, err := loadBars(barsPath)
			if err != nil {
				return err
			}

			classification, err := eng.ClassifyRegime(bars)
			if err != nil {
				return err
			}
			printClassification("RULE-BASED REGIME", classification)

			if advanced {
				detection, err := eng.DetectAdvanced(bars)
				if err != nil {
					return err
				}
				printDetection(detection)
			}
			if monitorStep > 0 {
				return runMonitorWalk(eng, bars, monitorStep)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&advanced, "advanced", false, "also run the statistical models (Hurst, GARCH, HMM, change points, cycles)")
	cmd.Flags().IntVar(&monitorStep, "monitor-step", 0, "walk the regime monitor over growing prefixes, updating every N bars")
	return cmd
}

// runMonitorWalk replays the bar history through the regime monitor,
// updating on each growing prefix, and prints the final stability and
// transition picture.
func runMonitorWalk(eng *engine.Engine, bars []model.Bar, step int) error {
	monitor := eng.Monitor()

	var report regime.MonitorReport
	var err error
	for end := step; end <= len(bars); end += step {
		report, err = monitor.Update(bars[:end])
		if err != nil {
			return fmt.Errorf("monitor update at bar %d: %w", end, err)
		}
	}
	if len(monitor.History()) == 0 {
		return fmt.Errorf("monitor walk produced no readings, step %d exceeds %d bars", step, len(bars))
	}

	fmt.Println("\n===== REGIME MONITOR =====")
	fmt.Printf("Readings: %d | Stability: %.0f\n", len(monitor.History()), report.Stability)
	fmt.Printf("Current regime: %s (confidence %.1f)\n",
		report.Detection.Classification.Regime, report.Detection.Classification.Confidence)
	if report.LikelyNext != "" {
		fmt.Printf("Most likely next regime: %s (probability %.2f)\n",
			report.LikelyNext, report.LikelyNextProb)
	}
	if report.TransitionRisk {
		fmt.Println("WARNING: regime transition risk above threshold")
	}
	return nil
}

func backtestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backtest",
		Short: "Walk-forward replay of the composite signal over historical bars",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			signalCfg, err := cfg.SignalConfig()
			if err != nil {
				return fmt.Errorf("building signal config: %w", err)
			}

			bars, err := loadBars(barsPath)
			if err != nil {
				return err
			}

			eng := backtest.NewEngine(backtest.Options{
				Signal:         signalCfg,
				WindowSize:     cfg.BacktestWindow,
				LongThreshold:  cfg.ScoreLongThreshold,
				ShortThreshold: cfg.ScoreShortThreshold,
			})
			results, err := eng.Run(bars)
			if err != nil {
				return err
			}
			fmt.Println(backtest.FormatResults(results))
			return nil
		},
	}
}

// loadBars reads a JSON array of OHLCV bars from disk and validates it.
func loadBars(path string) ([]model.Bar, error) {
	if path == "" {
		return nil, fmt.Errorf("no bar file given, pass --bars")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bar file: %w", err)
	}
	var bars []model.Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, fmt.Errorf("parsing bar file: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("bar file %s contains no bars", path)
	}
	if err := model.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("invalid bar file %s: %w", path, err)
	}
	return bars, nil
}

// printOverlays outputs the current overlay readings
func printOverlays(bars []model.Bar, bundle overlay.Bundle) {
	fmt.Println("\n===== OVERLAY ANALYSIS =====")

	latest := bars[len(bars)-1]
	fmt.Printf("Current Price: %.5f (O: %.5f, H: %.5f, L: %.5f, C: %.5f)\n",
		latest.Close, latest.Open, latest.High, latest.Low, latest.Close)

	fmt.Printf("\nEMA Cloud: %s | Ichimoku: %s | Ribbon: %s\n",
		bundle.EMACloud.Direction(), bundle.Ichimoku.Regime(bars), bundle.Ribbon.PivotNow())

	saty := bundle.Saty
	fmt.Printf("SATY ATR Levels (pivot %.5f, ATR %.5f, range used %.2fx):\n",
		saty.Pivot, saty.ATR, saty.RangeUsed)
	for i, mult := range overlay.SatyMultiples {
		fmt.Printf("  +%.3f: %.5f | -%.3f: %.5f\n",
			mult, saty.UpLevels[i], mult, saty.DownLevels[i])
	}

	sq := bundle.Squeeze
	fmt.Printf("\nSqueeze: on=%v fired=%v direction=%s", sq.On, sq.Fired, sq.Direction)
	if sq.FiredBarsAgo >= 0 {
		fmt.Printf(" (last fired %d bars ago)", sq.FiredBarsAgo)
	}
	fmt.Println()
}

// printSignal outputs the composite score with attribution
func printSignal(state model.SignalState) {
	fmt.Println("\n===== SIGNAL SCORE =====")
	fmt.Printf("Score: %.2f | Pivot: %s | SATY: %s | Ichimoku: %s\n",
		state.Score, state.PivotNow, state.SatyDirection, state.IchimokuRegime)

	fmt.Println("\nContributions:")
	c := state.Components
	fmt.Printf("- EMA cloud: %+.2f\n", c.EMACloud)
	fmt.Printf("- Ichimoku: %+.2f\n", c.Ichimoku)
	fmt.Printf("- Ribbon: %+.2f\n", c.Ribbon)
	fmt.Printf("- SATY levels: %+.2f\n", c.Saty)
	fmt.Printf("- Squeeze: %+.2f\n", c.Squeeze)
	fmt.Printf("- Momentum: %+.2f\n", c.Momentum)
	if state.Consensus.Aligned {
		fmt.Printf("- Timeframe consensus: %+.2f (secondary pivot %s)\n",
			c.Consensus, state.Consensus.Secondary)
	}
	fmt.Println()
}

func printClassification(title string, c model.RegimeClassification) {
	fmt.Printf("\n===== %s =====\n", title)
	fmt.Printf("Regime: %s | Confidence: %.2f\n", c.Regime, c.Confidence)
	if c.Recommendation != "" {
		fmt.Printf("Recommendation: %s\n", c.Recommendation)
	}
	if len(c.Factors) > 0 {
		keys := make([]string, 0, len(c.Factors))
		for k := range c.Factors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("Factors:")
		for _, k := range keys {
			fmt.Printf("- %s: %.4f\n", k, c.Factors[k])
		}
	}
}

func printDetection(d regime.Detection) {
	printClassification("STATISTICAL REGIME", d.Classification)

	if d.Hurst != nil {
		fmt.Printf("\nHurst exponent: %.4f (%s)\n", d.Hurst.Exponent, d.Hurst.Regime)
	}
	if d.GARCH != nil {
		fmt.Printf("GARCH(1,1): omega=%.6g alpha=%.3f beta=%.3f | current vol %.6f (pctile %.1f, %s)\n",
			d.GARCH.Params.Omega, d.GARCH.Params.Alpha, d.GARCH.Params.Beta,
			d.GARCH.CurrentVol, d.GARCH.VolPercentile, d.GARCH.Regime)
	}
	if d.HMM != nil {
		fmt.Printf("HMM: state %d of %d (confidence %.1f)\n",
			d.HMM.CurrentState, len(d.HMM.Params.Means), d.HMM.Confidence)
	}
	if len(d.ChangePoints) > 0 {
		fmt.Printf("Change points (return index): %v\n", d.ChangePoints)
	}
	for _, c := range d.Cycles {
		fmt.Printf("Dominant cycle: period %d bars (strength %.3f)\n", c.Period, c.Strength)
	}
}
