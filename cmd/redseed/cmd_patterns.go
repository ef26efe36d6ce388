package main

// ---------------------------------------------------------------------------
// cmd_patterns.go — show the attack pattern catalog and statistics
// ---------------------------------------------------------------------------

import (
	"encoding/json"
	"flag"
	"fmt"
	"sort"

	"github.com/redseed-project/redseed/internal/attack"
	"github.com/redseed-project/redseed/internal/core"
)

func cmdPatterns(args []string) {
	fs := flag.NewFlagSet("patterns", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Config file path")
	format := fs.String("format", "table", "Output format: table, json")
	output := fs.String("output", "", "Write output to file")
	fs.Parse(args)

	*configPath = envConfig(*configPath)

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		errorf("loading config: %v", err)
	}
	cfg.Logging.Level = "error"

	logger := core.NewLogger(cfg)
	registry := attack.NewRegistry(logger, cfg.Attack.PopulationSize)

	w, closeFn := outputWriter(*output)
	defer closeFn()

	if parseFormat(*format) == FormatJSON {
		data, _ := json.MarshalIndent(registry.Status(), "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	patterns := append([]*attack.Pattern(nil), registry.Patterns()...)
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Difficulty < patterns[j].Difficulty
	})

	t := NewTable(w, "ATTACK", "CATEGORY", "DIFFICULTY", "SEVERITY")
	for _, p := range patterns {
		t.AddRow(
			p.Description,
			p.Category.String(),
			fmt.Sprintf("%d", p.Difficulty),
			core.SeverityForDifficulty(p.Difficulty).String(),
		)
	}
	t.Render()
	fmt.Fprintf(w, "\n  %d pattern(s) in population (catalog holds %d)\n\n",
		len(patterns), attack.CatalogSize())
}
