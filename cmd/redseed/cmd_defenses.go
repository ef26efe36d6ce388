package main

// ---------------------------------------------------------------------------
// cmd_defenses.go — show the defense registry state
// ---------------------------------------------------------------------------

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/redseed-project/redseed/internal/core"
	"github.com/redseed-project/redseed/internal/defense"
)

func cmdDefenses(args []string) {
	fs := flag.NewFlagSet("defenses", flag.ExitOnError)
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
	registry := defense.NewRegistry(logger)

	w, closeFn := outputWriter(*output)
	defer closeFn()

	if parseFormat(*format) == FormatJSON {
		data, _ := json.MarshalIndent(registry.Snapshot(), "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	t := NewTable(w, "CATEGORY", "ACTIVE", "STRENGTH", "TRIGGERED")
	for _, cat := range registry.Categories() {
		st := registry.State(cat)
		active := red("no")
		if st.Active {
			active = green("yes")
		}
		t.AddRow(
			cat.String(),
			active,
			fmt.Sprintf("%d/10", st.Strength),
			fmt.Sprintf("%d", st.TimesTriggered),
		)
	}
	t.Render()
	fmt.Fprintf(w, "\n  %d of %d categories active\n\n",
		registry.ActiveCount(), len(registry.Categories()))
}
