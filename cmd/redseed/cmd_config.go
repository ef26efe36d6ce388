package main

// ---------------------------------------------------------------------------
// cmd_config.go — show, validate, or initialize configuration
// ---------------------------------------------------------------------------

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/redseed-project/redseed/internal/core"
)

func cmdConfig(args []string) {
	if len(args) > 0 && args[0] == "init" {
		cmdConfigInit(args[1:])
		return
	}

	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Config file path")
	validate := fs.Bool("validate", false, "Validate config and exit")
	fs.Parse(args)

	*configPath = envConfig(*configPath)

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		if *validate {
			fmt.Fprintf(os.Stderr, "%s Config invalid: %v\n", red("✗"), err)
			os.Exit(1)
		}
		errorf("loading config: %v", err)
	}

	if *validate {
		warnings, errs := cfg.Validate()
		for _, w := range warnings {
			warnf("%s", w)
		}
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "%s %s\n", red("✗"), e)
			}
			os.Exit(1)
		}
		fmt.Printf("%s Config valid (%s)\n", green("✓"), *configPath)
		return
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		errorf("marshaling config: %v", err)
	}
	fmt.Print(string(data))
}

func cmdConfigInit(args []string) {
	fs := flag.NewFlagSet("config init", flag.ExitOnError)
	path := fs.String("output", defaultConfigPath, "Path for the generated config file")
	force := fs.Bool("force", false, "Overwrite an existing file")
	fs.Parse(args)

	if _, err := os.Stat(*path); err == nil && !*force {
		errorf("%s already exists (use --force to overwrite)", *path)
	}

	if err := core.SaveConfig(core.DefaultConfig(), *path); err != nil {
		errorf("writing config: %v", err)
	}
	fmt.Printf("%s wrote default configuration to %s\n", green("✓"), *path)
}
