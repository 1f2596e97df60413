package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/drivesim/internal/body"
	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/export"
	"github.com/san-kum/drivesim/internal/geom"
	"github.com/san-kum/drivesim/internal/input"
	"github.com/san-kum/drivesim/internal/optim"
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/storage"
	"github.com/san-kum/drivesim/internal/telemetry"
	"github.com/san-kum/drivesim/internal/tui"
	"github.com/san-kum/drivesim/internal/vehicle"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	scriptFile string
	duration   float64
	exportPath string
	svgPath    string
	// tune
	tuneParams []string
	tuneMetric string
	maximize   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "drivesim",
		Short: "deterministic driving simulation",
		RunE:  driveInteractive,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "default", "vehicle preset")

	driveCmd := &cobra.Command{
		Use:   "drive",
		Short: "interactive driving dashboard",
		RunE:  driveInteractive,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "headless scripted run",
		RunE:  runHeadless,
	}
	runCmd.Flags().StringVar(&scriptFile, "script", "", "input script path (yaml)")
	runCmd.Flags().Float64Var(&duration, "time", 0, "override run duration, seconds")
	runCmd.Flags().StringVar(&exportPath, "export", "", "also write the full run as JSON")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "write the trajectory as SVG to this path")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list vehicle presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search tunables against a headless run",
		RunE:  tuneParameters,
	}
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "tunable grid, e.g. vehicle.max_force=4000,5200,7000 (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "avg_speed", "metric to optimize")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", true, "maximize instead of minimize")
	tuneCmd.Flags().Float64Var(&duration, "time", 10, "per-run duration, seconds")

	rootCmd.AddCommand(driveCmd, runCmd, listCmd, plotCmd, exportCmd, presetsCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func newBody(cfg *config.Config) body.Body {
	return body.NewRigidBody(cfg.Body)
}

// loadConfig resolves preset first, then an explicit config file on top.
func loadConfig() (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func driveInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	keys := input.NewKeyState(6)
	world := sim.NewWorld(cfg, newBody(cfg), keys)
	m, err := tui.NewModel(cfg, world, keys, preset)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if duration > 0 {
		cfg.Duration = duration
	}

	src, err := loadSource(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	world := sim.NewWorld(cfg, newBody(cfg), src)
	for _, m := range telemetry.Standard(cfg.Stability.TiltThreshold) {
		world.AddMetric(m)
	}

	start := time.Now()
	result, err := sim.NewRunner(world, newLogger()).Run(context.Background())
	if err != nil {
		return err
	}

	runID, err := st.Save(preset, cfg.Loop.FixedDt, cfg.Duration, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("fixed steps: %d (%d frames)\n", result.FixedSteps, result.Frames)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.4f\n", name, result.Metrics[name])
	}
	if s := result.Stats; s.TiltCorrections > 0 || s.EmergencyRecoveries > 0 {
		fmt.Printf("\nstability: %d tilt corrections, %d emergency recoveries\n",
			s.TiltCorrections, s.EmergencyRecoveries)
	}

	if exportPath != "" {
		if err := storage.ExportFile(exportPath, preset, cfg.Loop.FixedDt, cfg.Duration, result); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", exportPath)
	}
	return nil
}

// loadSource builds the run's input: the given script, or a default lap
// of full throttle with alternating turns.
func loadSource(cfg *config.Config) (input.Source, error) {
	if scriptFile != "" {
		return input.LoadScript(scriptFile, cfg.Loop.FixedDt)
	}
	return defaultScript(cfg), nil
}

func defaultScript(cfg *config.Config) *input.Script {
	d := cfg.Duration
	return input.NewScript([]input.Segment{
		{Duration: d * 0.4, Forward: true},
		{Duration: d * 0.3, Forward: true, Left: true},
		{Duration: d * 0.3, Forward: true, Right: true},
	}, cfg.Loop.FixedDt)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tSTEPS\tTOP SPEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%d\t%.1f m/s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.FixedSteps,
			run.Metrics["top_speed"],
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rows, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no samples to plot")
	}

	fmt.Printf("run: %s (preset %s, %d samples)\n\n", meta.ID, meta.Preset, len(rows))

	speed := make([]float64, len(rows))
	upDot := make([]float64, len(rows))
	for i, row := range rows {
		speed[i] = row[7]
		upDot[i] = row[8]
	}

	fmt.Println(asciigraph.Plot(speed,
		asciigraph.Height(10), asciigraph.Width(80),
		asciigraph.Caption("speed (m/s)")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(upDot,
		asciigraph.Height(8), asciigraph.Width(80),
		asciigraph.Caption("uprightness (up dot)")))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rows, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	if svgPath != "" {
		points := make([]geom.Vec3, len(rows))
		for i, row := range rows {
			points[i] = geom.Vec3{X: row[1], Y: row[2], Z: row[3]}
		}
		if err := export.TrajectoryFile(svgPath, points, 800, 800, "#4fd6be"); err != nil {
			return err
		}
		fmt.Printf("trajectory written to %s\n", svgPath)
		return nil
	}

	result := &sim.Result{
		Samples:    make([]sim.Sample, len(rows)),
		Metrics:    meta.Metrics,
		Stats:      meta.Stats,
		FixedSteps: meta.FixedSteps,
		Frames:     meta.Frames,
	}
	for i, row := range rows {
		result.Samples[i] = sim.Sample{
			Time:     row[0],
			Position: geom.Vec3{X: row[1], Y: row[2], Z: row[3]},
			Velocity: geom.Vec3{X: row[4], Y: row[5], Z: row[6]},
			Speed:    row[7],
			UpDot:    row[8],
			Controls: vehicle.Controls{EngineForce: row[9], Steering: row[10], BrakeForce: row[11]},
		}
	}
	return storage.ExportJSON(os.Stdout, meta.Preset, meta.FixedDt, meta.Duration, result)
}

func tuneParameters(cmd *cobra.Command, args []string) error {
	base, err := loadConfig()
	if err != nil {
		return err
	}
	base.Duration = duration

	names, values, err := parseParamGrids(tuneParams)
	if err != nil {
		return err
	}
	gs, err := optim.NewGridSearch(names, values)
	if err != nil {
		return err
	}

	log := newLogger().Level(zerolog.WarnLevel)
	eval := func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := *base
		if err := optim.Apply(&cfg, params); err != nil {
			return 0, err
		}
		if err := cfg.Validate(); err != nil {
			return 0, err
		}

		world := sim.NewWorld(&cfg, newBody(&cfg), defaultScript(&cfg))
		for _, m := range telemetry.Standard(cfg.Stability.TiltThreshold) {
			world.AddMetric(m)
		}
		result, err := sim.NewRunner(world, log).Run(ctx)
		if err != nil {
			return 0, err
		}
		score, ok := result.Metrics[tuneMetric]
		if !ok {
			return 0, fmt.Errorf("unknown metric %q", tuneMetric)
		}
		if maximize {
			score = -score
		}
		return score, nil
	}

	best, score, err := gs.Search(context.Background(), eval)
	if err != nil {
		return err
	}
	if maximize {
		score = -score
	}

	fmt.Printf("best %s: %.4f\n", tuneMetric, score)
	bestNames := make([]string, 0, len(best))
	for name := range best {
		bestNames = append(bestNames, name)
	}
	sort.Strings(bestNames)
	for _, name := range bestNames {
		fmt.Printf("  %s: %g\n", name, best[name])
	}
	return nil
}

// parseParamGrids turns "vehicle.max_force=4000,5200" flags into the grid
// search inputs.
func parseParamGrids(specs []string) ([]string, [][]float64, error) {
	var names []string
	var values [][]float64
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2,...", spec)
		}
		var vs []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %q: %w", spec, err)
			}
			vs = append(vs, v)
		}
		names = append(names, name)
		values = append(values, vs)
	}
	return names, values, nil
}
