package main

// ---------------------------------------------------------------------------
// cmd_run.go — run the evolution cycle
// ---------------------------------------------------------------------------

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redseed-project/redseed/internal/bus"
	"github.com/redseed-project/redseed/internal/core"
	"github.com/redseed-project/redseed/internal/evolve"
)

// runOverrides carries the flag-level overrides the run command applies on
// top of the loaded configuration. Flags win over the file.
type runOverrides struct {
	logLevel   string
	busEnabled bool
	noPersist  bool
	population int
}

func applyRunOverrides(cfg *core.Config, o runOverrides) {
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.busEnabled {
		cfg.Bus.Enabled = true
	}
	if o.noPersist {
		cfg.Persistence.Enabled = false
	}
	if o.population > 0 {
		cfg.Attack.PopulationSize = o.population
	}
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Config file path")
	generations := fs.Int("generations", 0, "Generations to run (0 = configured maximum)")
	resume := fs.Bool("resume", false, "Resume from the latest persisted snapshot")
	busFlag := fs.Bool("bus", false, "Publish reports and exploits to the NATS event bus")
	noPersist := fs.Bool("no-persist", false, "Disable state snapshots for this run")
	population := fs.Int("population", 0, "Attack population size override (0 = configured)")
	logLevel := fs.String("log-level", "", "Log level override: debug, info, warn, error")
	format := fs.String("format", "table", "Output format: table, json")
	quiet := fs.Bool("quiet", false, "Suppress banner")
	fs.BoolVar(quiet, "q", false, "Suppress banner")
	noColor := fs.Bool("no-color", false, "Disable color output")
	fs.Parse(args)

	*configPath = envConfig(*configPath)
	if *noColor {
		os.Setenv("NO_COLOR", "1")
	}
	if !*quiet {
		fmt.Fprint(os.Stderr, bannerText())
	}

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		errorf("loading config: %v", err)
	}
	applyRunOverrides(cfg, runOverrides{
		logLevel:   *logLevel,
		busEnabled: *busFlag,
		noPersist:  *noPersist,
		population: *population,
	})
	warnings, errs := cfg.Validate()
	for _, w := range warnings {
		warnf("%s", w)
	}
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("✗"), e)
		}
		os.Exit(1)
	}

	logger := core.NewLogger(cfg)
	seed := evolve.NewSeed(logger, cfg)

	if cfg.Bus.Enabled {
		eventBus, err := bus.NewEventBus(cfg.Bus, logger)
		if err != nil {
			errorf("starting event bus: %v", err)
		}
		defer eventBus.Close()
		seed.SetPublisher(eventBus)
	}

	if *resume {
		if seed.Resume() {
			fmt.Fprintf(os.Stderr, "%s resumed from generation %d\n", green("✓"), seed.Orchestrator.Generation())
		} else {
			warnf("no snapshot found, starting fresh")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports := seed.Run(ctx, *generations)
	printRunSummary(*format, seed, reports)
}

func printRunSummary(format string, seed *evolve.Seed, reports []*core.GenerationReport) {
	metrics := evolve.Summarize(reports)

	if parseFormat(format) == FormatJSON {
		out := map[string]interface{}{
			"metrics":  metrics,
			"defenses": seed.DefenseSnapshot(),
			"patterns": seed.PatternStatus(),
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("\n%s\n\n", bold("EVOLUTION SUMMARY"))
	t := NewTable(os.Stdout, "GEN", "FITNESS", "BLOCKED", "ISSUES", "FIXES")
	for _, r := range reports {
		t.AddRow(
			fmt.Sprintf("%d", r.Generation),
			fmt.Sprintf("%.1f", r.FitnessScore),
			fmt.Sprintf("%d/%d", r.AttacksBlocked, r.AttacksTotal),
			fmt.Sprintf("%d", len(r.Issues)),
			fmt.Sprintf("%d", r.AdaptationsApplied),
		)
	}
	t.Render()

	improvement := fmt.Sprintf("%+.1f", metrics.Improvement())
	if metrics.Improvement() >= 0 {
		improvement = green(improvement)
	} else {
		improvement = red(improvement)
	}
	fmt.Printf("\n  generations: %d   best fitness: %.1f   improvement: %s\n\n",
		metrics.Generations, metrics.BestFitness, improvement)
}
