package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/san-kum/featherstone/internal/config"
	"github.com/san-kum/featherstone/internal/experiment"
	"github.com/san-kum/featherstone/internal/sim"
	"github.com/san-kum/featherstone/internal/storage"
	"github.com/san-kum/featherstone/internal/viz"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	dataDir    string
	configFile string
	theme      string
	dt         float64
	duration   float64
	seed       int64
	integrator string
	controller string
	adaptive   bool
	tolerance  float64
	members    int
	workers    int
	spread     float64
	maxPlots   int
	yaw        float64
	pitch      float64
	target     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "featherstone",
		Short:         "articulated-body forward dynamics lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			viz.SetTheme(theme)
		},
	}

	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".featherstone", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "mechanism config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "minimal", fmt.Sprintf("color theme %v", viz.ThemeNames()))

	runCmd := &cobra.Command{
		Use:   "run [family/preset]",
		Short: "simulate a mechanism and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runFlags(runCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [family/preset]",
		Short: "simulate perturbed initial states in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	runFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&members, "members", 8, "number of perturbed runs")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "parallel workers")
	sweepCmd.Flags().Float64Var(&spread, "spread", 0.01, "perturbation half-width")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot joint trajectories of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&maxPlots, "max", 6, "maximum number of plotted columns")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the recorded states of a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list mechanism presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [family/preset]",
		Short: "show the joint tree and articulated quantities at the initial state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectMechanism,
	}
	inspectCmd.Flags().Float64Var(&yaw, "yaw", 0, "sketch camera yaw (rad)")
	inspectCmd.Flags().Float64Var(&pitch, "pitch", 0, "sketch camera pitch (rad)")

	convertCmd := &cobra.Command{
		Use:   "convert [family/preset]",
		Short: "express a mechanism in another unit system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  convertMechanism,
	}
	convertCmd.Flags().StringVar(&target, "to", "MKS", "target unit system")

	rootCmd.AddCommand(runCmd, sweepCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, presetsCmd, inspectCmd, convertCmd)

	err := rootCmd.Execute()
	if err != nil {
		klog.Errorf("%v", err)
	}
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func runFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().StringVar(&controller, "controller", "none", "controller")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive step size")
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive error tolerance")
}

// loadConfig resolves the mechanism from --config, a preset argument or
// the default pendulum, in that order.
func loadConfig(args []string) (*config.Config, error) {
	switch {
	case configFile != "":
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	case len(args) > 0:
		cfg := config.Lookup(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (see `featherstone presets`)", args[0])
		}
		return cfg, nil
	default:
		return config.DefaultConfig(), nil
	}
}

// runConfig applies the run flags the user set on top of the config.
func runConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(args)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if f.Changed("time") {
		cfg.Run.Duration = duration
	}
	if f.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if f.Changed("integrator") {
		cfg.Run.Integrator = integrator
	}
	if f.Changed("controller") {
		cfg.Run.Controller = controller
	}
	if f.Changed("adaptive") {
		cfg.Run.Adaptive = adaptive
	}
	if f.Changed("tol") {
		cfg.Run.Tolerance = tolerance
	}
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}
	return cfg, cfg.Validate()
}

func metadata(cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Mechanism:  cfg.Name,
		Units:      cfg.Units.String(),
		Joints:     cfg.JointNames(),
		Seed:       cfg.Run.Seed,
		Dt:         cfg.Run.Dt,
		Duration:   cfg.Run.Duration,
		Integrator: cfg.Run.Integrator,
		Controller: cfg.Run.Controller,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	trace := viz.NewTrace(min(exp.Mechanism().Dof(), 4))
	exp.Simulator().AddObserver(trace)

	p := viz.Styles()
	fmt.Println(p.Header.Render(fmt.Sprintf("running %s (%d joints)", cfg.Name, exp.Mechanism().Dof())))
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(metadata(cfg), result)
	if err != nil {
		return err
	}

	printResult(runID, elapsed, result, trace, cfg.JointNames())
	return nil
}

func printResult(runID string, elapsed time.Duration, result *sim.Result, trace *viz.Trace, joints []string) {
	p := viz.Styles()
	rows := [][2]string{
		{"run id", runID},
		{"elapsed", elapsed.Round(time.Microsecond).String()},
		{"steps", fmt.Sprint(result.StepsTaken)},
		{"samples", fmt.Sprint(len(result.States))},
	}
	for _, name := range sortedKeys(result.Metrics) {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.6g", result.Metrics[name])})
	}
	fmt.Print(viz.KeyValue(rows))

	for j := 0; j < min(len(joints), 4); j++ {
		fmt.Printf("%s %s\n", p.Label.Render(caption(joints, j)), p.Value.Render(trace.Line(j, 60)))
	}
	if err := result.Err(); err != nil {
		fmt.Println(p.Bad.Render("stopped early: " + err.Error()))
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd, args)
	if err != nil {
		return err
	}
	if members < 1 {
		return fmt.Errorf("--members must be positive, got %d", members)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := viz.Styles()
	fmt.Println(p.Header.Render(fmt.Sprintf("sweeping %s: %d members on %d workers", cfg.Name, members, workers)))
	start := time.Now()

	results, err := exp.Sweep(ctx, exp.Perturb(members, spread), workers)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	meta := metadata(cfg)
	for i, result := range results {
		m := meta
		m.Mechanism = fmt.Sprintf("%s-%02d", cfg.Name, i)
		m.Seed = cfg.Run.Seed + int64(i)
		runID, err := st.Save(m, result)
		if err != nil {
			return err
		}
		status := p.Good.Render("ok")
		if result.Err() != nil {
			status = p.Bad.Render("failed")
		}
		fmt.Printf("%3d  %s  %s  drift=%.3g\n", i, runID, status, result.Metrics["energy_drift"])
	}
	return nil
}
