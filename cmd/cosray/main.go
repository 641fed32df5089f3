package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/cosray/internal/analysis"
	"github.com/san-kum/cosray/internal/config"
	"github.com/san-kum/cosray/internal/export"
	"github.com/san-kum/cosray/internal/loss"
	"github.com/san-kum/cosray/internal/metrics"
	"github.com/san-kum/cosray/internal/particle"
	"github.com/san-kum/cosray/internal/sim"
	"github.com/san-kum/cosray/internal/storage"
	"github.com/san-kum/cosray/internal/unit"
	"github.com/san-kum/cosray/internal/vec"
	"github.com/san-kum/cosray/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	label      string
	candidates int
	steps      int
	seed       int64
	energy     float64 // EeV
	charge     int
	mass       int
	lossTable  string
	// export-svg options
	plane     string
	numTracks int
	outFile   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cosray",
		Short: "cosmic-ray diffusion transport simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cosray", "data directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "propagate an ensemble of candidates",
		RunE:  runEnsemble,
	}
	addSourceFlags(runCmd)
	runCmd.Flags().StringVar(&label, "label", "run", "label for the saved run")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "propagate a single candidate with step diagnostics",
		RunE:  runTrace,
	}
	addSourceFlags(traceCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "propagate a single candidate with live visualization",
		RunE:  runLive,
	}
	addSourceFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot displacement and energy curves of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "fit diffusion coefficients from a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the raw trajectory CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render saved trajectories as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&plane, "plane", "xz", "projection plane (xy, xz, yz)")
	exportSVGCmd.Flags().IntVar(&numTracks, "tracks", 10, "number of trajectories to draw")
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [config.yml]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			return config.Save(args[0], cfg)
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	rootCmd.AddCommand(runCmd, traceCmd, liveCmd, listCmd, plotCmd, analyzeCmd,
		exportCmd, exportCSVCmd, exportSVGCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&candidates, "candidates", config.DefaultCandidates, "ensemble size")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per candidate")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().Float64Var(&energy, "energy", config.DefaultEnergy, "source energy (EeV)")
	cmd.Flags().IntVar(&charge, "charge", 1, "source charge number")
	cmd.Flags().IntVar(&mass, "mass", 1, "source mass number")
	cmd.Flags().StringVar(&lossTable, "loss-table", "", "pair-production rate table")
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}

// loadConfig resolves preset, config file and flag overrides, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("candidates") {
		cfg.Run.Candidates = candidates
	}
	if cmd.Flags().Changed("steps") {
		cfg.Run.Steps = steps
	}
	if cmd.Flags().Changed("seed") {
		cfg.Run.Seed = seed
	}
	if cmd.Flags().Changed("energy") {
		cfg.Source.Energy = energy
	}
	if cmd.Flags().Changed("charge") {
		cfg.Source.Charge = charge
	}
	if cmd.Flags().Changed("mass") {
		cfg.Source.Mass = mass
	}
	if cmd.Flags().Changed("loss-table") {
		cfg.Run.LossTable = lossTable
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildModules assembles the transport chain and the prototype candidate.
// The field realization draws from the run seed, so a turbulent field is
// identical across re-runs of the same config.
func buildModules(cfg *config.Config) ([]particle.Module, *particle.Candidate, error) {
	fieldRng := rand.New(rand.NewSource(cfg.Run.Seed))
	f, err := cfg.BuildField(fieldRng)
	if err != nil {
		return nil, nil, err
	}
	engine, err := cfg.BuildEngine(f)
	if err != nil {
		return nil, nil, err
	}

	modules := []particle.Module{engine}
	if cfg.Run.LossTable != "" {
		pp, err := loss.NewPairProduction(cfg.Run.LossTable)
		if err != nil {
			return nil, nil, err
		}
		modules = append(modules, pp)
	}

	proto := particle.New(cfg.Source.Charge, cfg.Source.Mass,
		cfg.Source.Energy*unit.EeV, vec.Vec3{}, vec.Vec3{Z: 1})
	return modules, proto, nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	modules, proto, err := buildModules(cfg)
	if err != nil {
		return err
	}

	pipeline := sim.NewPipeline(modules...)
	pipeline.SetLogger(log)
	ens := sim.NewEnsemble(pipeline, cfg.Run.Candidates, cfg.Run.Seed)
	ens.SetLogger(log)

	log.Info().Int("candidates", cfg.Run.Candidates).Int("steps", cfg.Run.Steps).
		Str("field", cfg.Field.Model).Msg("propagating ensemble")
	start := time.Now()

	results, err := ens.Run(context.Background(), proto, cfg.Run.Steps)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	lost := 0
	for _, r := range results {
		if r.Err != nil {
			lost++
		}
	}

	times, msd := analysis.MeanSquareDisplacement(results)
	agg := map[string]float64{"lost": float64(lost)}
	if n := len(msd); n > 0 {
		agg["final_msd"] = msd[n-1]
		agg["anisotropy"] = analysis.Anisotropy(results)
		if d := analysis.RunningDiffusion(times, msd); n > 1 {
			agg["running_diffusion"] = d[n-1] / 6 // 3D: <r²> = 6Dt
		}
	}

	runID, err := st.Save(label, cfg, results, agg)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("candidates: %d (lost: %d)\n", len(results), lost)
	fmt.Println("\nmetrics:")
	for name, val := range agg {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	if len(msd) > 1 {
		rms := make([]float64, len(msd))
		for i, v := range msd {
			rms[i] = math.Sqrt(v) / unit.Parsec
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(rms,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("rms displacement (pc)"),
		))
	}

	return nil
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger()

	modules, proto, err := buildModules(cfg)
	if err != nil {
		return err
	}

	pipeline := sim.NewPipeline(modules...)
	pipeline.SetLogger(log)
	pipeline.AddMetric(metrics.NewSquareDisplacement(proto.Position))
	pipeline.AddMetric(metrics.NewEnergyLoss())
	pipeline.AddMetric(metrics.NewMeanStep())
	pipeline.AddMetric(metrics.NewForcedSteps())

	cand := proto.Clone()
	rng := rand.New(rand.NewSource(cfg.Run.Seed))
	traj, err := pipeline.Run(context.Background(), cand, rng, cfg.Run.Steps)
	if err != nil {
		return err
	}

	fmt.Printf("steps: %d (accepted %d, rejected %d, forced %d)\n",
		traj.Steps, cand.Stats.Accepted, cand.Stats.Rejected, cand.Stats.Forced)
	fmt.Printf("path length: %.4f kpc\n", cand.PathLength/unit.KiloParsec)
	fmt.Printf("final energy: %.6g EeV\n", cand.Energy/unit.EeV)
	fmt.Println("\nmetrics:")
	for name, val := range pipeline.MetricValues() {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	if len(traj.Positions) > 1 {
		disp := make([]float64, len(traj.Positions))
		for i, p := range traj.Positions {
			disp[i] = p.Sub(traj.Positions[0]).Norm() / unit.Parsec
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(disp,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("displacement from source (pc)"),
		))
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	modules, proto, err := buildModules(cfg)
	if err != nil {
		return err
	}

	name := "candidate"
	switch {
	case preset != "":
		name = preset
	case cfg.Source.Mass > 1:
		name = fmt.Sprintf("Z=%d A=%d", cfg.Source.Charge, cfg.Source.Mass)
	case cfg.Source.Charge == 1:
		name = "proton"
	}

	model := viz.NewModel(name, modules, proto, cfg.Run.Seed)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
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
	fmt.Fprintln(w, "ID\tFIELD\tTIME\tCANDIDATES\tSTEPS\tENERGY\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3g EeV\t%d\n",
			run.ID,
			run.FieldModel,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Candidates,
			run.Steps,
			run.Energy,
			run.Seed,
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
	results, err := st.LoadTrajectories(args[0])
	if err != nil {
		return err
	}

	times, msd := analysis.MeanSquareDisplacement(results)
	if len(msd) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("field: %s\n", meta.FieldModel)
	fmt.Printf("candidates: %d, snapshots: %d\n\n", len(results), len(msd))

	rms := make([]float64, len(msd))
	for i, v := range msd {
		rms[i] = math.Sqrt(v) / unit.Parsec
	}
	fmt.Println(asciigraph.Plot(rms,
		asciigraph.Height(10), asciigraph.Width(80),
		asciigraph.Caption("rms displacement (pc)")))
	fmt.Println()

	d := analysis.RunningDiffusion(times, msd)
	for i := range d {
		d[i] /= 6
	}
	fmt.Println(asciigraph.Plot(d[1:],
		asciigraph.Height(10), asciigraph.Width(80),
		asciigraph.Caption("running diffusion coefficient (m²/s)")))
	fmt.Println()

	e0 := results[0].Trajectory.Energies
	energies := make([]float64, len(e0))
	for i, e := range e0 {
		energies[i] = e / unit.EeV
	}
	fmt.Println(asciigraph.Plot(energies,
		asciigraph.Height(10), asciigraph.Width(80),
		asciigraph.Caption("energy, first candidate (EeV)")))

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	results, err := st.LoadTrajectories(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AXIS\tD (m²/s)")
	for axis, name := range []string{"x", "y", "z"} {
		times, variance := analysis.AxisVariance(results, axis)
		// var = 2Dt along one axis
		fmt.Fprintf(w, "%s\t%.6g\n", name, analysis.FitSlope(times, variance)/2)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nanisotropy (perp/par): %.4g\n", analysis.Anisotropy(results))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	f, err := os.Open(st.TrajectoryPath(args[0]))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(os.Stdout, f)
	return err
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	results, err := st.LoadTrajectories(args[0])
	if err != nil {
		return err
	}

	tracks := make([][]vec.Vec3, 0, numTracks)
	for _, r := range results {
		if len(tracks) == numTracks {
			break
		}
		if r.Trajectory != nil {
			tracks = append(tracks, r.Trajectory.Positions)
		}
	}

	svg, err := export.TrajectoriesToSVG(tracks, plane, 800, 600)
	if err != nil {
		return err
	}

	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	return os.WriteFile(outFile, []byte(svg), 0644)
}
