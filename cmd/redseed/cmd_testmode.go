package main

// ---------------------------------------------------------------------------
// cmd_testmode.go — the "test" subcommand: quick three-generation smoke run
// ---------------------------------------------------------------------------

import (
	"context"
	"flag"
	"fmt"

	"github.com/redseed-project/redseed/internal/core"
	"github.com/redseed-project/redseed/internal/evolve"
)

const smokeGenerations = 3

func cmdTest(args []string) {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Config file path")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error")
	fs.Parse(args)

	*configPath = envConfig(*configPath)

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		errorf("loading config: %v", err)
	}
	cfg.Logging.Level = *logLevel
	// A smoke run never touches disk.
	cfg.Persistence.Enabled = false

	logger := core.NewLogger(cfg)
	seed := evolve.NewSeed(logger, cfg)

	reports := seed.Run(context.Background(), smokeGenerations)
	if len(reports) == 0 {
		errorf("smoke run produced no generations")
	}

	last := reports[len(reports)-1]
	fmt.Printf("%s smoke run complete: %d generation(s), fitness %.1f, %d/%d blocked\n",
		green("✓"), len(reports), last.FitnessScore, last.AttacksBlocked, last.AttacksTotal)
	if last.FitnessScore < 100 {
		fmt.Printf("  open issues in last generation:\n")
		for _, issue := range last.Issues {
			fmt.Printf("    %s %s\n", yellow("-"), issue.Description)
		}
	}
}
