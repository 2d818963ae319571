package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bombprop/internal/audio"
	"github.com/san-kum/bombprop/internal/clock"
	"github.com/san-kum/bombprop/internal/config"
	"github.com/san-kum/bombprop/internal/logx"
	"github.com/san-kum/bombprop/internal/prop"
	"github.com/san-kum/bombprop/internal/scenario"
	"github.com/san-kum/bombprop/internal/storage"
	"github.com/san-kum/bombprop/internal/trace"
	"github.com/san-kum/bombprop/internal/tui"
	"github.com/spf13/cobra"
)

const plotWidth = 80

var (
	dataDir    string
	configFile string
	debug      bool
	// sim
	withAudio bool
	soundDir  string
	logFile   string
	// scenario, trace
	save      bool
	traceTime uint32
)

// main registers the commands and runs the simulator when no subcommand is
// given. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "bombprop",
		Short:         "counter-strike bomb prop simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSim,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bombprop", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print component logs to stderr")

	simCmd := &cobra.Command{
		Use:   "sim",
		Short: "run the prop in the terminal",
		RunE:  runSim,
	}
	for _, c := range []*cobra.Command{rootCmd, simCmd} {
		c.Flags().BoolVar(&withAudio, "audio", false, "play sounds on the audio device")
		c.Flags().StringVar(&soundDir, "sounds", "", "sound directory (overrides config)")
		c.Flags().StringVar(&logFile, "log", "", "write component logs to file")
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]...",
		Short: "run scenarios headless and check their expectations",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")

	traceCmd := &cobra.Command{
		Use:   "trace [preset]",
		Short: "run an LED fade preset headless and plot it",
		Args:  cobra.ExactArgs(1),
		RunE:  tracePreset,
	}
	traceCmd.Flags().Uint32Var(&traceTime, "time", 5000, "duration in milliseconds")
	traceCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the yellow LED level of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [file]",
		Short: "export a saved run as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportRun,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage the configuration file",
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "init [file]",
			Short: "write the default configuration",
			Args:  cobra.MaximumNArgs(1),
			RunE:  initConfig,
		},
		&cobra.Command{
			Use:   "show",
			Short: "print the effective configuration",
			RunE:  showConfig,
		},
	)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list LED fade presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(simCmd, scenarioCmd, traceCmd, runsCmd, plotCmd, exportCmd, configCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file if one was given, applies environment
// overrides and validates the result.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func logWriter() io.Writer {
	if debug {
		return os.Stderr
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSim(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if soundDir != "" {
		cfg.MP3.Dir = soundDir
	}

	// The alternate screen owns the terminal, so logs only go to a file.
	var logs io.Writer
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logs = f
	}

	opts := tui.Options{Logs: logs}
	if withAudio {
		logger := logx.New(logs, logx.PrefixSound)
		out := audio.NewOutput(logger)
		if err := out.Start(); err != nil {
			return fmt.Errorf("start audio: %w", err)
		}
		defer out.Close()
		opts.MP3 = audio.NewSpeaker(out, cfg.MP3.Dir, logger)
		opts.Buzzer = audio.NewBuzzer(out, logx.New(logs, logx.PrefixBuzzer))
	}

	return tui.Run(cfg, opts)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	scs := make([]*scenario.Scenario, 0, len(args))
	for _, path := range args {
		sc, err := scenario.LoadScenario(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		scs = append(scs, sc)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if len(scs) == 1 {
		return runOneScenario(ctx, scs[0], cfg)
	}

	outcomes := scenario.RunBatch(ctx, scs, cfg, logWriter())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tSTEPS\tEVENTS\tSTATUS")
	for _, o := range outcomes {
		status := "ok"
		if o.Err != nil {
			status = "FAIL"
		}
		steps, events := 0, 0
		if o.Result != nil {
			steps, events = o.Result.Steps, len(o.Result.Events)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", o.Scenario.Name, steps, events, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("\n%s: %v\n", o.Scenario.Name, o.Err)
		}
		if save && o.Result != nil {
			id, err := saveResult(cfg, o.Result)
			if err != nil {
				return err
			}
			fmt.Printf("saved: %s\n", id)
		}
	}

	if n := scenario.Failed(outcomes); n > 0 {
		return fmt.Errorf("%d of %d scenarios failed", n, len(outcomes))
	}
	return nil
}

func runOneScenario(ctx context.Context, sc *scenario.Scenario, cfg *config.Config) error {
	res, err := scenario.Run(ctx, sc, cfg, logWriter())
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", res.Name)
	if sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	}
	fmt.Printf("steps: %d  tick: %dms  duration: %dms  events: %d\n\n",
		res.Steps, res.Tick, res.Duration, len(res.Events))
	printLCD(res.Display)
	fmt.Printf("code:   %q\n", res.Code)
	fmt.Printf("armed:  %v\n", res.Armed)
	fmt.Printf("led:    %d (red %v)\n", res.Level, res.RedLED)
	if res.Playing {
		fmt.Printf("sound:  track %d\n", res.Track)
	} else {
		fmt.Println("sound:  stopped")
	}
	printMetrics(res.Metrics)

	if save {
		id, err := saveResult(cfg, res)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved: %s\n", id)
	}

	if err := res.Check(sc.Expect); err != nil {
		return err
	}
	if sc.Expect != nil {
		fmt.Println("\nexpectations: ok")
	}
	return nil
}

func tracePreset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d := clock.Millis(traceTime)
	if d == 0 {
		return errors.New("trace duration must be positive")
	}

	clk := clock.NewManual(0)
	sim := prop.NewSim(clk, cfg)
	p, err := prop.New(clk, cfg, sim.Hardware(), logWriter())
	if err != nil {
		return err
	}
	if err := p.StartLED(args[0]); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := p.Run(ctx, d)
	if err != nil {
		return err
	}

	levels := sim.Recorder.Levels()
	caption := fmt.Sprintf("yellow LED %s (%dms)", args[0], d)
	plotLevels(levels, res.Start, res.End, caption)

	if save {
		id, err := saveRun(storage.RunMetadata{
			Name:     "trace-" + args[0],
			Seed:     cfg.Seed,
			Tick:     cfg.Loop.Tick,
			Duration: d,
			Steps:    res.Steps,
			Metrics:  levelMetrics(levels),
		}, sim.Recorder.Events())
		if err != nil {
			return err
		}
		fmt.Printf("saved: %s\n", id)
	}
	return nil
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tTICK\tSTEPS\tEVENTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%dms\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Tick,
			run.Steps,
			run.Events,
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
	levels, err := st.LoadLevels(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n\n", meta.ID, meta.Name)
	if len(levels) == 0 {
		fmt.Println("no LED activity recorded")
		return nil
	}
	plotLevels(levels, 0, meta.Duration, fmt.Sprintf("yellow LED level (%dms)", meta.Duration))
	printMetrics(meta.Metrics)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) > 1 {
		path = args[1]
	}
	st := storage.New(dataDir)
	if err := st.ExportJSON(args[0], path); err != nil {
		return err
	}
	if path != "-" {
		fmt.Printf("exported: %s\n", path)
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "bombprop.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.LogSummary(log.New(os.Stdout, "", 0))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := config.ListPresets()
	for name := range cfg.Presets {
		if config.GetPreset(name) == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMIN\tMAX\tSTEP IN/OUT\tFADE IN/OUT\tHOLD\tDELAY\tLOOP")
	for _, name := range names {
		p, _ := cfg.Preset(name)
		marker := ""
		if name == cfg.LED.Preset {
			marker = " *"
		}
		fmt.Fprintf(w, "%s%s\t%d\t%d\t%d/%d\t%d/%dms\t%dms\t%dms\t%v\n",
			name, marker,
			p.Min, p.Max,
			p.StepIn, p.StepOut,
			p.FadeIn, p.FadeOut,
			p.Hold, p.StartDelay, p.Loop,
		)
	}
	return w.Flush()
}

func saveResult(cfg *config.Config, res *scenario.Result) (string, error) {
	return saveRun(storage.RunMetadata{
		Name:     res.Name,
		Seed:     cfg.Seed,
		Tick:     res.Tick,
		Duration: res.Duration,
		Steps:    res.Steps,
		Metrics:  res.Metrics,
	}, res.Events)
}

func saveRun(meta storage.RunMetadata, events []trace.Event) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(meta, events)
}

func plotLevels(levels []trace.LevelSample, from, to clock.Millis, caption string) {
	data := trace.Series(levels, from, to, plotWidth)
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(plotWidth),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(255),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	fmt.Println()
}

func levelMetrics(levels []trace.LevelSample) map[string]float64 {
	if len(levels) == 0 {
		return nil
	}
	lo, hi := levels[0].Level, levels[0].Level
	for _, l := range levels[1:] {
		lo = min(lo, l.Level)
		hi = max(hi, l.Level)
	}
	return map[string]float64{
		"min_level":  float64(lo),
		"peak_level": float64(hi),
		"changes":    float64(len(levels)),
	}
}

func printLCD(lines []string) {
	if len(lines) == 0 {
		return
	}
	width := len(lines[0])
	border := "+" + strings.Repeat("-", width) + "+"
	fmt.Println(border)
	for _, l := range lines {
		fmt.Printf("|%s|\n", l)
	}
	fmt.Println(border)
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println()
	for _, k := range keys {
		fmt.Printf("%-12s %g\n", k+":", m[k])
	}
}
