package main

// ---------------------------------------------------------------------------
// banner.go — ASCII art banner and version/usage printing
// ---------------------------------------------------------------------------

import (
	"fmt"
	"io"
	goruntime "runtime"
	"runtime/debug"
)

func bannerText() string {
	banner := `
    ╔══════════════════════════════════════════════════════╗
    ║                                                      ║
    ║   ██████╗ ███████╗██████╗ ███████╗███████╗███████╗   ║
    ║   ██╔══██╗██╔════╝██╔══██╗██╔════╝██╔════╝██╔══██╗   ║
    ║   ██████╔╝█████╗  ██║  ██║███████╗█████╗  █████╔╝    ║
    ║   ██╔══██╗██╔══╝  ██║  ██║╚════██║██╔══╝  ██╔══██╗   ║
    ║   ██║  ██║███████╗██████╔╝███████║███████╗██████╔╝   ║
    ║   ╚═╝  ╚═╝╚══════╝╚═════╝ ╚══════╝╚══════╝╚═════╝    ║
    ║                                                      ║
    ║        CO-EVOLUTIONARY ATTACK/DEFENSE SANDBOX        ║
    ║                                                      ║
    ╚══════════════════════════════════════════════════════╝
`
	if !colorEnabled() {
		return banner
	}
	return "\033[36m" + banner + "\033[0m"
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "redseed v%s", version)
	if commit != "dev" {
		fmt.Fprintf(w, " (%s)", commit[:min(7, len(commit))])
	}
	if buildDate != "unknown" {
		fmt.Fprintf(w, " built %s", buildDate)
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fmt.Fprintf(w, " %s", bi.GoVersion)
	}
	fmt.Fprintf(w, " %s/%s", goruntime.GOOS, goruntime.GOARCH)
	fmt.Fprintln(w)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, bannerText())
	fmt.Fprintf(w, "  %s\n\n", dim("v"+version))
	fmt.Fprintf(w, "%s\n\n", bold("USAGE"))
	fmt.Fprintf(w, "  redseed <command> [flags]\n\n")
	fmt.Fprintf(w, "%s\n\n", bold("COMMANDS"))
	fmt.Fprintf(w, "  %-12s  %s\n", bold("run"), "Run the evolution cycle")
	fmt.Fprintf(w, "  %-12s  %s\n", bold("armsrace"), "Run generations until one side dominates")
	fmt.Fprintf(w, "  %-12s  %s\n", bold("test"), "Quick three-generation smoke run")
	fmt.Fprintf(w, "  %-12s  %s\n", bold("patterns"), "Show the attack pattern catalog and statistics")
	fmt.Fprintf(w, "  %-12s  %s\n", bold("defenses"), "Show the defense registry state")
	fmt.Fprintf(w, "  %-12s  %s\n", bold("config"), "Show, validate, or initialize configuration")
	fmt.Fprintf(w, "  %-12s  %s\n", bold("version"), "Print version and build info")
	fmt.Fprintf(w, "\n%s\n\n", bold("GLOBAL FLAGS"))
	fmt.Fprintf(w, "  %-22s  %s\n", "--config <path>", "Config file path (default: configs/default.yaml, env: REDSEED_CONFIG)")
	fmt.Fprintf(w, "  %-22s  %s\n", "--format <fmt>", "Output format: table, json (default: table)")
	fmt.Fprintf(w, "  %-22s  %s\n", "--version, -V", "Print version and exit")
	fmt.Fprintf(w, "  %-22s  %s\n", "--help, -h", "Show help")
	fmt.Fprintf(w, "\n%s\n\n", bold("EXAMPLES"))
	fmt.Fprintf(w, "  %s\n", dim("# Run ten generations with defaults"))
	fmt.Fprintf(w, "  redseed run\n\n")
	fmt.Fprintf(w, "  %s\n", dim("# Resume a persisted run with the event bus enabled"))
	fmt.Fprintf(w, "  redseed run --resume --bus\n\n")
	fmt.Fprintf(w, "  %s\n", dim("# Five generations of a small population, no snapshots"))
	fmt.Fprintf(w, "  redseed run --generations 5 --population 4 --no-persist\n\n")
	fmt.Fprintf(w, "  %s\n", dim("# Race both sides for up to 50 generations"))
	fmt.Fprintf(w, "  redseed armsrace --generations 50\n\n")
	fmt.Fprintf(w, "  %s\n", dim("# Inspect the defense registry as JSON"))
	fmt.Fprintf(w, "  redseed defenses --format json\n\n")
}
