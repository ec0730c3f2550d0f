package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/termfx/rext/core"
	"github.com/termfx/rext/db"
	"github.com/termfx/rext/internal/config"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func main() {
	// Optional .env for REXT_* settings; absence is fine
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	rootCmd := &cobra.Command{
		Use:   "rext",
		Short: "Test regular expressions from the terminal",
		Long: "rext compiles a pattern with JS-style flags, runs it against a subject,\n" +
			"and shows matches, highlighted output, substitution previews and file scans.\n" +
			"Runs are recorded in a local history database.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newMatchCmd(cfg),
		newHighlightCmd(cfg),
		newReplaceCmd(cfg),
		newScanCmd(cfg),
		newHistoryCmd(cfg),
		newPatternsCmd(cfg),
		newServeCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

// readSubject resolves the subject text from --file, a positional
// argument, or stdin, in that order of preference.
func readSubject(file string, args []string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading subject file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return args[0], nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading subject from stdin: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no subject given: pass it as an argument, via --file, or on stdin")
}

// compileFromFlags parses the flag string and compiles with the
// configured budget.
func compileFromFlags(cfg *config.Config, pattern, flags string) (*core.Pattern, error) {
	f, err := core.ParseFlags(flags)
	if err != nil {
		return nil, err
	}
	return core.Compile(pattern, f,
		core.WithTimeout(cfg.MatchTimeout),
		core.WithMaxMatches(cfg.MaxMatches))
}

// openStore connects the history database and applies retention. A
// connection failure degrades to no persistence rather than aborting.
func openStore(cfg *config.Config) *db.Store {
	conn, err := db.Connect(cfg.DBPath, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s history disabled: %v\n", yellow("Warning:"), err)
		return nil
	}
	store := db.NewStore(conn)
	if err := store.PruneRuns(cfg.RetentionRuns); err != nil && cfg.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] prune failed: %v\n", err)
	}
	return store
}
