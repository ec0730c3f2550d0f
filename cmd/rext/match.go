package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/termfx/rext/core"
	"github.com/termfx/rext/internal/config"
)

func newMatchCmd(cfg *config.Config) *cobra.Command {
	var (
		pattern       string
		flags         string
		file          string
		jsonOut       bool
		noHistory     bool
		failIfNoMatch bool
	)

	cmd := &cobra.Command{
		Use:   "match [subject]",
		Short: "Run a pattern against a subject and list the matches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, err := readSubject(file, args)
			if err != nil {
				return err
			}

			compiled, err := compileFromFlags(cfg, pattern, flags)
			if err != nil {
				return err
			}

			result, err := compiled.Run(subject)
			if err != nil {
				var timeoutErr *core.TimeoutError
				if errors.As(err, &timeoutErr) {
					return fmt.Errorf("%s: %v", yellow("timed out"), err)
				}
				return err
			}

			if !noHistory {
				if store := openStore(cfg); store != nil {
					if _, err := store.SaveRun("", subject, result); err != nil && cfg.Debug {
						fmt.Fprintf(os.Stderr, "[DEBUG] save run failed: %v\n", err)
					}
				}
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(result)
			}
			printResult(result)
			if failIfNoMatch && result.Total == 0 {
				os.Exit(2)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Regular expression to run (required)")
	cmd.Flags().StringVarP(&flags, "flags", "f", "g", "Flag letters from \"gimsuy\"")
	cmd.Flags().StringVar(&file, "file", "", "Read the subject from a file")
	cmd.Flags().BoolVarP(&jsonOut, "json", "j", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording this run")
	cmd.Flags().BoolVar(&failIfNoMatch, "fail-if-no-match", false, "Exit 2 when nothing matches")
	cmd.MarkFlagRequired("pattern")

	return cmd
}

func printResult(result *core.Result) {
	if result.Total == 0 {
		fmt.Printf("%s no matches\n", yellow("∅"))
		return
	}

	noun := "matches"
	if result.Total == 1 {
		noun = "match"
	}
	fmt.Printf("%s %d %s (%dµs)\n", green("✓"), result.Total, noun, result.DurationUs)
	if result.Truncated {
		fmt.Printf("%s match cap reached, output truncated\n", yellow("!"))
	}

	for i, m := range result.Matches {
		fmt.Printf("  %s %q at %d-%d\n", bold(fmt.Sprintf("%d.", i+1)), m.Text, m.Start, m.End)
		for gi, g := range m.Groups {
			label := fmt.Sprintf("group %d", gi+1)
			if g.Name != "" {
				label = fmt.Sprintf("group %q", g.Name)
			}
			if g.Matched {
				fmt.Printf("     %s: %q\n", cyan(label), g.Text)
			} else {
				fmt.Printf("     %s: %s\n", cyan(label), "(did not participate)")
			}
		}
	}
}
