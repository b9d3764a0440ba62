package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"wgsmaster/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "wgsmaster",
	Short: "WGS/TSA/TLS submission validator and master record builder",
	Long: `wgsmaster validates the records of a WGS, TSA or TLS submission,
stamps them with project accessions and builds the project's master record.`,
	SilenceUsage: true,
}

// main registers subcommands and persistent flags, then executes the root
// command. Any error or a failed verdict exits with status 1.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	registerPersistentFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the column count of f, or 0 when unknown.
func terminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// registerPersistentFlags adds the flags every subcommand reads from the root.
func registerPersistentFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("ui", "auto", "progress UI (auto|on|off)")

	pf.String("trace", "", "write a run trace to this file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson|chrome)")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")
	pf.Duration("trace-heartbeat", 0, "emit a liveness event at this interval (0 disables)")

	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}
