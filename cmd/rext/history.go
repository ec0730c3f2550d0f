package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/termfx/rext/internal/config"
)

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent matching runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore(cfg)
			if store == nil {
				return fmt.Errorf("history store unavailable")
			}

			runs, err := store.RecentRuns(limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Printf("%s no recorded runs\n", yellow("∅"))
				return nil
			}
			for _, run := range runs {
				status := green("✓")
				detail := fmt.Sprintf("%d matches in %dµs", run.MatchCount, run.DurationMicros)
				if run.TimedOut {
					status = red("✗")
					detail = "timed out"
				}
				flagSuffix := ""
				if run.Flags != "" {
					flagSuffix = "/" + run.Flags
				}
				fmt.Printf("%s %s  /%s%s  %s  (%s)\n",
					status,
					run.CreatedAt.Format("2006-01-02 15:04:05"),
					run.Pattern, flagSuffix,
					detail,
					run.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "How many runs to show")
	cmd.Flags().BoolVarP(&jsonOut, "json", "j", false, "Output as JSON")

	return cmd
}
