package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/driftfield/internal/analysis"
	"github.com/san-kum/driftfield/internal/automation"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/export"
	"github.com/san-kum/driftfield/internal/gui"
	"github.com/san-kum/driftfield/internal/server"
	"github.com/san-kum/driftfield/internal/sim"
	"github.com/san-kum/driftfield/internal/storage"
	"github.com/san-kum/driftfield/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	dataDir    string
	configFile string
	preset     string
	label      string

	seed         int64
	ticks        int
	width        float64
	height       float64
	frameRate    int
	count        int
	gravity      float64
	polarity     float64
	perturbation float64

	pointerAt string
	holdTicks int

	metricName string
	outFile    string
	svgFile    string
	addr       string
	benchRuns  int

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "driftfield",
		Short: "pointer-driven particle field",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return viz.RunPicker(*cfg)
		},
	}

	addSimFlags(rootCmd)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".driftfield", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store its metric trace",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&label, "label", "", "run label (defaults to preset name)")
	runCmd.Flags().StringVar(&pointerAt, "pointer", "", "hold the pointer at x,y pixels")
	runCmd.Flags().IntVar(&holdTicks, "hold", 0, "ticks to keep moving the pointer (0 = whole run)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the field in the terminal, following the mouse",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the field in a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			gui.Run(*cfg, configName())
			return nil
		},
	}
	addSimFlags(guiCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames to browsers over websocket",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default $"+server.EnvAddr+" or "+server.DefaultAddr+")")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the metric traces of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write one trace column as SVG to this file")
	plotCmd.Flags().StringVar(&metricName, "metric", "kinetic_energy", "trace column for --svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and settling analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&metricName, "metric", "kinetic_energy", "trace column to analyze")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's metric trace as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "run headless and write the final frame as SVG",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	addSimFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&pointerAt, "pointer", "", "hold the pointer at x,y pixels")
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "snapshot.svg", "output file")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure ticks per second by particle count",
		Args:  cobra.NoArgs,
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&benchRuns, "runs", 4, "parallel runs in the ensemble pass")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario and store its trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addSimFlags(scenarioCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter and compare the resulting metrics",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&pointerAt, "pointer", "", "hold the pointer at x,y pixels")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "gravity", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.2, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, serveCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, presetsCmd, snapshotCmd, benchCmd, scenarioCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "ticks to simulate")
	cmd.Flags().Float64Var(&width, "width", config.DefaultWidth, "container width in pixels")
	cmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "container height in pixels")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().IntVar(&count, "count", config.DefaultParticleCount, "particle count")
	cmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "gravity in px/frame^2")
	cmd.Flags().Float64Var(&polarity, "polarity", config.DefaultPolarity, "pointer polarity (-1 attract, +1 repel)")
	cmd.Flags().Float64Var(&perturbation, "perturbation", 0, "random jitter per tick (max 0.05)")
}

// resolveConfig layers defaults, the config file, the preset and finally
// any flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		s, err := config.GetPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg.Sim = s
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if flags.Changed("width") {
		cfg.Run.Width = width
	}
	if flags.Changed("height") {
		cfg.Run.Height = height
	}
	if flags.Changed("fps") {
		cfg.Run.FPS = frameRate
	}
	if flags.Changed("count") {
		cfg.Sim.ParticleCount = count
	}
	if flags.Changed("gravity") {
		cfg.Sim.Gravity = gravity
	}
	if flags.Changed("polarity") {
		cfg.Sim.MousePolarity = polarity
	}
	if flags.Changed("perturbation") {
		cfg.Sim.Perturbation = perturbation
	}

	if err := cfg.Sim.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (clamped)\n", err)
	}
	cfg.Sim = cfg.Sim.Normalize()
	cfg.Run = cfg.Run.Normalize()
	return cfg, nil
}

func configName() string {
	if preset != "" {
		return preset
	}
	return "custom"
}

// parsePointer reads "x,y" in container pixels.
func parsePointer(s string) (r2.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return r2.Vec{}, fmt.Errorf("pointer must be x,y: %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("pointer x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("pointer y: %w", err)
	}
	return r2.Vec{X: x, Y: y}, nil
}

func headless(cfg *config.Config) (*sim.Headless, error) {
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}
	h := &sim.Headless{Config: *cfg}
	if pointerAt != "" {
		pos, err := parsePointer(pointerAt)
		if err != nil {
			return nil, err
		}
		until := holdTicks
		if until <= 0 {
			until = cfg.Run.Ticks
		}
		h.Script = sim.HoldPointer(pos, until)
	}
	return h, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	h, err := headless(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	name := label
	if name == "" {
		name = configName()
	}

	fmt.Printf("running %s: %d particles, %d ticks...\n", name, cfg.Sim.ParticleCount, cfg.Run.Ticks)
	start := time.Now()

	result, err := h.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, h.Config, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	printResult(result)
	return nil
}

func printResult(result *sim.Result) {
	fmt.Printf("ticks: %d\n", result.Ticks)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s: %.6f\n", n, result.Metrics[n])
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}

	h, err := scenario.Headless(*cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	name := scenario.Name
	if name == "" {
		name = "scenario"
	}
	fmt.Printf("running scenario %s (%d steps)...\n", name, len(scenario.Steps))
	if scenario.Description != "" {
		fmt.Printf("  %s\n", scenario.Description)
	}

	result, err := h.Run(cmd.Context())
	if err != nil {
		return err
	}
	runID, err := st.Save(name, h.Config, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	printResult(result)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	h, err := headless(cfg)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      h.Config,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}, h.Script)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN KE\tPEAK SPEED\tAT REST\tCONTACTS\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4g\t%.3f\t%.2f\t%.0f\n", r.ParamValue, r.MeanEnergy, r.PeakSpeed, r.RestFraction, r.WallContacts)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return viz.Run(*cfg, configName())
}

func serve(cmd *cobra.Command, args []string) error {
	env := server.LoadEnv()
	if configFile != "" {
		env.ConfigPath = configFile
	}
	if addr != "" {
		env.Addr = addr
	}

	cfg, err := env.Config()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if preset != "" {
		if cfg.Sim, err = config.GetPreset(preset); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(*cfg).ListenAndServe(ctx, env.Addr)
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

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tTICKS\tPARTICLES\tGRAVITY\tPOLARITY")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2f\t%+.0f\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Sim.ParticleCount,
			run.Sim.Gravity,
			run.Sim.MousePolarity,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	columns, rows, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("label: %s\n", meta.Label)
	fmt.Printf("samples: %d\n\n", len(rows))

	for _, name := range columns {
		data, err := storage.Column(columns, rows, name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(strings.ReplaceAll(name, "_", " ")),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgFile != "" {
		if err := writeSeriesSVG(svgFile, columns, rows, metricName); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%s)\n", svgFile, metricName)
	}
	return nil
}

// writeSeriesSVG draws one trace column to path.
func writeSeriesSVG(path string, columns []string, rows [][]float64, name string) error {
	data, err := storage.Column(columns, rows, name)
	if err != nil {
		return err
	}
	svg := export.SeriesToSVG(data, 800, 240, export.ActiveColor)
	if svg == "" {
		return fmt.Errorf("not enough samples in %s to draw", name)
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	columns, rows, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	data, err := storage.Column(columns, rows, metricName)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return fmt.Errorf("not enough samples to analyze: %d", len(data))
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("metric: %s\n\n", metricName)

	ps := analysis.PowerSpectrum(data)
	plotData := ps
	if len(ps) > 8 {
		plotData = ps[:len(ps)/4]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+metricName+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, power := analysis.DominantFrequency(data, float64(meta.FPS))
	fmt.Printf("dominant frequency: %.3f hz (magnitude %.3g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	if rest, err := storage.Column(columns, rows, "rest_fraction"); err == nil {
		if tick := analysis.SettleTick(rest, 0.9); tick >= 0 {
			fmt.Printf("90%% at rest from tick %d (%.2f s)\n", tick, float64(tick)/float64(meta.FPS))
		} else {
			fmt.Println("never settled to 90% at rest")
		}
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	columns, rows, err := storage.New(dataDir).LoadTrace(args[0])
	if err != nil {
		return err
	}
	return storage.WriteTraceCSV(os.Stdout, columns, rows)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNT\tGRAVITY\tFRICTION\tRADIUS\tPOLARITY\tBOUNCE")
	for _, name := range config.ListPresets() {
		p, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.0f\t%+.0f\t%.1f\n",
			name, p.ParticleCount, p.Gravity, p.Friction, p.MouseInfluenceRadius, p.MousePolarity, p.BounceStrength)
	}
	return w.Flush()
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	h, err := headless(cfg)
	if err != nil {
		return err
	}

	result, err := h.Run(cmd.Context())
	if err != nil {
		return err
	}

	svg := export.FrameToSVG(result.Final, int(cfg.Run.Width), int(cfg.Run.Height))
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (tick %d, %d particles)\n", outFile, result.Final.Tick, len(result.Final.Particles))
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	if benchRuns < 0 {
		return fmt.Errorf("--runs must be >= 0, got %d", benchRuns)
	}
	counts := []int{100, 300, 1000, 3000}
	const benchTicks = 600

	base := config.DefaultConfig()
	base.Run.Ticks = benchTicks
	base.Run.Seed = 42

	fmt.Println("benchmarking tick throughput")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tRUNS\tTICKS\tTIME\tTICKS/SEC")

	for _, n := range counts {
		cfg := *base
		cfg.Sim.ParticleCount = n
		h := sim.Headless{Config: cfg, Script: sim.HoldPointer(r2.Vec{X: cfg.Run.Width / 2, Y: cfg.Run.Height / 2}, benchTicks)}

		start := time.Now()
		result, err := h.Run(cmd.Context())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		fmt.Fprintf(w, "%d\t1\t%d\t%v\t%.0f\n", n, result.Ticks, elapsed, float64(result.Ticks)/elapsed.Seconds())

		start = time.Now()
		results, err := sim.NewEnsemble(h, benchRuns, cfg.Run.Seed).Run(cmd.Context())
		if err != nil {
			return err
		}
		elapsed = time.Since(start)
		total := 0
		for _, r := range results {
			total += r.Ticks
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n", n, benchRuns, total, elapsed, float64(total)/elapsed.Seconds())
	}

	return w.Flush()
}
