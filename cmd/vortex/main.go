package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/vortex/internal/config"
	"github.com/san-kum/vortex/internal/metrics"
	"github.com/san-kum/vortex/internal/scene"
	"github.com/san-kum/vortex/internal/sim"
	"github.com/san-kum/vortex/internal/storage"
	"github.com/san-kum/vortex/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	steps      int
	dt         float64
	re         float64
	ips        float64
	backend    string
	snapEvery  int
	record     bool
	outFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "vortex",
		Short:         "3D vortex particle and panel simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".vortex", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene and store its diagnostics",
		Args:  cobra.NoArgs,
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().IntVar(&snapEvery, "snapshot-every", 0, "write element snapshots every n steps (0: final only)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a scene with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().BoolVar(&record, "record", false, "store diagnostics while running")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [category]",
		Short: "list built-in scenes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := config.Categories()
			if len(args) > 0 {
				cats = args
			}
			for _, cat := range cats {
				names := config.ListPresets(cat)
				if len(names) == 0 {
					fmt.Printf("no presets in category: %s\n", cat)
					continue
				}
				fmt.Printf("%s:\n", cat)
				for _, name := range names {
					fmt.Printf("  %s/%s  %s\n", cat, name, config.GetPreset(cat, name).Name)
				}
			}
			return nil
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, presetsCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "built-in scene as category/name")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step")
	cmd.Flags().Float64Var(&re, "re", config.DefaultRe, "Reynolds number")
	cmd.Flags().Float64Var(&ips, "ips", 0, "particle spacing; sets Re from dt")
	cmd.Flags().StringVar(&backend, "backend", "", "compute backend: auto, cpu or serial")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadScene resolves the scene from --preset or --config, then applies any
// flags the user set explicitly.
func loadScene(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cat, name, ok := strings.Cut(preset, "/")
		p := config.GetPreset(cat, name)
		if !ok || p == nil {
			return nil, fmt.Errorf("unknown preset: %s (see 'vortex presets')", preset)
		}
		c := *p
		cfg = &c
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("steps") || cfg.Sim.Steps == 0 {
		cfg.Sim.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Sim.Dt = dt
	}
	if flags.Changed("re") {
		cfg.Sim.Re = re
	}
	if flags.Changed("ips") {
		cfg.Sim.IPS = ips
	}
	if flags.Changed("backend") {
		cfg.Sim.Backend = backend
	}
	return cfg, cfg.Validate()
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	s, err := scene.New(cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	run, err := st.Begin(cfg)
	if err != nil {
		return err
	}
	logger.Info("run started", "id", run.ID(), "scene", cfg.Name,
		"particles", s.NumParticles(), "panels", s.NumPanels(), "backend", s.Backend().Name())

	start := time.Now()
	runErr := advance(s, run, cfg.Sim.Steps)
	elapsed := time.Since(start)

	if err := run.Snapshot(s.Steps(), s.Vorticity()); err != nil && runErr == nil {
		runErr = err
	}
	if err := run.Close(s.Params().VDelta(), s.Backend().Name(), s.Metrics(), runErr); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("run %s: %w", run.ID(), runErr)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", run.ID())
	fmt.Printf("steps: %d\n", s.Steps())
	fmt.Println("\nmetrics:")
	for name, val := range s.Metrics() {
		fmt.Printf("  %s: %.6g\n", name, val)
	}
	return nil
}

func advance(s *sim.Simulation, run *storage.Run, n int) error {
	for i := 0; i < n; i++ {
		if err := s.Step(); err != nil {
			return err
		}
		if err := run.Append(s.Result()); err != nil {
			return err
		}
		if snapEvery > 0 && s.Steps()%snapEvery == 0 {
			if err := run.Snapshot(s.Steps(), s.Vorticity()); err != nil {
				return err
			}
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd)
	if err != nil {
		return err
	}
	// the terminal belongs to the view; keep logs out of it
	logger := slog.New(slog.DiscardHandler)

	build := func() (*sim.Simulation, error) {
		s, err := scene.New(cfg, sim.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		for _, m := range metrics.Defaults() {
			s.AddMetric(m)
		}
		return s, nil
	}

	opts := []tui.Option{tui.WithMaxSteps(cfg.Sim.Steps)}
	var (
		run *storage.Run
		ids []string
	)
	closeRun := func(s *sim.Simulation, runErr error) error {
		if run == nil {
			return nil
		}
		defer func() { run = nil }()
		if err := run.Close(s.Params().VDelta(), s.Backend().Name(), s.Metrics(), runErr); err != nil {
			return err
		}
		ids = append(ids, run.ID())
		return nil
	}
	if record {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		run, err = st.Begin(cfg)
		if err != nil {
			return err
		}
		// a reset restarts the step count, so each rebuild gets its own run
		opts = append(opts,
			tui.WithStepHook(func(rec metrics.Record) error {
				if run == nil {
					return nil
				}
				return run.Append(rec)
			}),
			tui.WithResetHook(func(prev *sim.Simulation) error {
				if err := closeRun(prev, nil); err != nil {
					return err
				}
				next, err := st.Begin(cfg)
				if err != nil {
					return err
				}
				run = next
				return nil
			}),
		)
	}

	m, err := tui.NewModel(cfg.Name, build, opts...)
	if err != nil {
		return err
	}
	final, liveErr := tui.Run(m)

	if record {
		if err := closeRun(final.Simulation(), liveErr); err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Printf("run id: %s\n", id)
		}
	}
	return liveErr
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tSTEPS\tDT\tRE\tPARTICLES\tPANELS\tSTATUS")
	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%.1f\t%d\t%d\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Re,
			run.Particles,
			run.Panels,
			status,
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
	recs, err := st.LoadDiagnostics(runID)
	if err != nil {
		return err
	}
	if len(recs) < 2 {
		return fmt.Errorf("not enough data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("steps: %d\n\n", len(recs))

	series := []struct {
		caption string
		value   func(metrics.Record) float64
	}{
		{"max particle speed", func(r metrics.Record) float64 { return r.MaxSpeed }},
		{"max particle strength", func(r metrics.Record) float64 { return r.MaxStrength }},
		{"impulse (z)", func(r metrics.Record) float64 { return r.ImpulseZ }},
		{"circulation (z)", func(r metrics.Record) float64 { return r.CircZ }},
	}
	for _, sr := range series {
		data := make([]float64, len(recs))
		for i, r := range recs {
			data[i] = sr.value(r)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	return storage.ExportJSON(outFile, data)
}
