package main

// ---------------------------------------------------------------------------
// cmd_armsrace.go — run generations until one side dominates
// ---------------------------------------------------------------------------

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redseed-project/redseed/internal/core"
	"github.com/redseed-project/redseed/internal/evolve"
)

func cmdArmsRace(args []string) {
	fs := flag.NewFlagSet("armsrace", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Config file path")
	generations := fs.Int("generations", 0, "Generation budget (0 = configured maximum)")
	logLevel := fs.String("log-level", "", "Log level override: debug, info, warn, error")
	format := fs.String("format", "table", "Output format: table, json")
	quiet := fs.Bool("quiet", false, "Suppress banner")
	fs.BoolVar(quiet, "q", false, "Suppress banner")
	fs.Parse(args)

	*configPath = envConfig(*configPath)
	if !*quiet {
		fmt.Fprint(os.Stderr, bannerText())
	}

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		errorf("loading config: %v", err)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger := core.NewLogger(cfg)
	seed := evolve.NewSeed(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := seed.RunArmsRace(ctx, *generations)

	if parseFormat(*format) == FormatJSON {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	winner := result.Winner
	switch winner {
	case "defender":
		winner = green(winner)
	case "attacker":
		winner = red(winner)
	default:
		winner = yellow(winner)
	}

	fmt.Printf("\n%s\n\n", bold("ARMS RACE RESULT"))
	fmt.Printf("  winner:           %s\n", winner)
	fmt.Printf("  generations:      %d\n", result.Generations)
	fmt.Printf("  final fitness:    %.1f\n", result.FinalFitness)
	fmt.Printf("  top success rate: %.2f\n\n", result.TopSuccessRate)
}
