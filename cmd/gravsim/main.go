package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/report"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

var (
	dataDir    string
	debug      bool
	configFile string
	dt         float64
	steps      int
	gConst     float64
	quiet      bool
	sweepDts   []float64
	outFile    string
	logFile    *os.File
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "gravsim",
		Short:         "newtonian n-body gravity simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile = setupLogging(dataDir, debug)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug log to <data>/logs")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and store its trajectories",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml), overrides preset")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step in seconds")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().Float64Var(&gConst, "g", 0, "gravitational constant (0 = SI value)")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "write to file instead of stdout")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trajectories as time,body,x,y,z",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	periodCmd := &cobra.Command{
		Use:   "period [run_id] [i] [j]",
		Short: "dominant period of the separation between two bodies",
		Args:  cobra.ExactArgs(3),
		RunE:  periodRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "compare drift across time steps over the same duration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml), overrides preset")
	sweepCmd.Flags().Float64SliceVar(&sweepDts, "dts", nil, "time steps to compare (default: dt, dt/2, dt/4, dt/8)")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark step throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, exportJSONCmd, exportCSVCmd, presetsCmd, periodCmd, sweepCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, report.ErrorText.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// loadScenario resolves the scenario from --config or a preset name.
func loadScenario(args []string) (*config.Scenario, error) {
	if configFile != "" {
		s, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		log.Printf("loaded scenario %q from %s", s.Name, configFile)
		return s, nil
	}

	name := "reference"
	if len(args) > 0 {
		name = args[0]
	}
	s := config.GetPreset(name)
	if s == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	return s, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := loadScenario(args)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("dt") {
		scenario.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		scenario.Steps = steps
	}
	if cmd.Flags().Changed("g") {
		scenario.G = gConst
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(scenario)
	if err := exp.Setup(); err != nil {
		return err
	}
	if !quiet {
		exp.Simulator().AddObserver(report.NewProgress(os.Stderr, scenario.Steps))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("run %s: %d bodies, dt=%g, steps=%d, G=%g",
		scenario.Name, len(scenario.Bodies), scenario.Dt, scenario.Steps, scenario.Constant())
	start := time.Now()

	_, runErr := exp.Run(ctx)
	elapsed := time.Since(start)
	if runErr != nil {
		log.Printf("run %s failed: %v", scenario.Name, runErr)
	}

	meta := exp.Metadata()
	runID, err := st.Save(meta, exp.System())
	if err != nil {
		return errors.Join(runErr, err)
	}
	meta.ID = runID
	log.Printf("run %s stored in %v", runID, elapsed)

	fmt.Println(report.Summary(&meta))
	fmt.Println(report.Subtle.Render(fmt.Sprintf("completed in %v", elapsed)))
	return runErr
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

	fmt.Print(report.RunTable(runs))
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(report.Summary(meta))
	return nil
}

func loadRun(runID string) (*storage.RunMetadata, []storage.Track, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	tracks, err := st.LoadTrajectories(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, tracks, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, tracks, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := export.ExportJSON(outFile, meta, tracks); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", meta.ID, outFile)
		return nil
	}
	return export.WriteJSON(os.Stdout, meta, tracks)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, tracks, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if len(tracks) == 0 {
		return fmt.Errorf("no data to export")
	}

	return storage.WriteTracksCSV(os.Stdout, tracks)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tG\tDT\tSTEPS\tDURATION")

	for _, name := range config.ListPresets() {
		s := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%d\t%g\n",
			name, len(s.Bodies), s.Constant(), s.Dt, s.Steps, s.Duration())
	}

	return w.Flush()
}

func periodRun(cmd *cobra.Command, args []string) error {
	meta, tracks, err := loadRun(args[0])
	if err != nil {
		return err
	}

	i, err := bodyIndex(args[1], len(tracks))
	if err != nil {
		return err
	}
	j, err := bodyIndex(args[2], len(tracks))
	if err != nil {
		return err
	}
	if i == j {
		return fmt.Errorf("bodies must differ, got %d twice", i)
	}

	seps := analysis.Separations(tracks[i].Positions, tracks[j].Positions)
	period, err := analysis.DominantPeriod(seps, meta.Dt)
	if err != nil {
		return err
	}

	fmt.Println(report.Title.Render(fmt.Sprintf("separation %d-%d: %s", i, j, meta.ID)))
	fmt.Printf("%s %s\n", report.MetricLabel.Render("samples"), report.MetricValue.Render(strconv.Itoa(len(seps))))
	fmt.Printf("%s %s\n", report.MetricLabel.Render("period "), report.MetricValue.Render(fmt.Sprintf("%.6g s", period)))
	return nil
}

func bodyIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid body index %q: %w", arg, err)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("body index %d out of range [0,%d)", i, n)
	}
	return i, nil
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	scenario, err := loadScenario(args)
	if err != nil {
		return err
	}
	if err := scenario.Validate(); err != nil {
		return err
	}

	dts := sweepDts
	if len(dts) == 0 {
		dts = []float64{scenario.Dt, scenario.Dt / 2, scenario.Dt / 4, scenario.Dt / 8}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(report.Title.Render(fmt.Sprintf("sweep %s over %gs", scenario.Name, scenario.Duration())))

	runs, sweepErr := sim.Sweep(ctx, scenario.BuildWithDt, metrics.Defaults, dts, scenario.Duration())
	if sweepErr != nil {
		log.Printf("sweep %s: %v", scenario.Name, sweepErr)
	}
	if runs == nil {
		return sweepErr
	}

	rows := make([]report.SweepRow, len(runs))
	for i, run := range runs {
		row := report.SweepRow{Dt: dts[i], Steps: run.Steps, Millis: float64(run.Elapsed.Microseconds()) / 1000}
		switch {
		case run.Result == nil:
			row.Err = errors.New("not run")
		case run.Result.StepsTaken < run.Steps:
			row.Err = fmt.Errorf("stopped after %d steps", run.Result.StepsTaken)
		default:
			row.EnergyDrift = run.Result.EnergyDrift
			row.MomentumDrift = run.Result.MomentumDrift
		}
		rows[i] = row
	}

	fmt.Print(report.SweepTable(rows))
	return sweepErr
}

func benchScenario(cmd *cobra.Command, args []string) error {
	scenario, err := loadScenario(args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s (%d bodies)\n\n", scenario.Name, len(scenario.Bodies))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tTIME\tSTEPS/SEC")

	for _, n := range []int{100, 1000, 10000} {
		s := scenario.Clone()
		s.Steps = n

		exp := experiment.New(s)
		if err := exp.Setup(); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%v\t%.0f\n", result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
	}

	return w.Flush()
}
