package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termfx/rext/internal/config"
)

func newPatternsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage the saved pattern library",
	}

	var (
		flags string
		notes string
	)
	saveCmd := &cobra.Command{
		Use:   "save <name> <pattern>",
		Short: "Save or update a named pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, pattern := args[0], args[1]

			// Validate before saving so the library stays usable
			if _, err := compileFromFlags(cfg, pattern, flags); err != nil {
				return err
			}

			store := openStore(cfg)
			if store == nil {
				return fmt.Errorf("history store unavailable")
			}
			saved, err := store.SavePattern(name, pattern, flags, notes)
			if err != nil {
				return err
			}
			fmt.Printf("%s saved %q as %s\n", green("✓"), saved.Pattern, bold(saved.Name))
			return nil
		},
	}
	saveCmd.Flags().StringVarP(&flags, "flags", "f", "g", "Flag letters from \"gimsuy\"")
	saveCmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore(cfg)
			if store == nil {
				return fmt.Errorf("history store unavailable")
			}
			patterns, err := store.ListPatterns()
			if err != nil {
				return err
			}
			if len(patterns) == 0 {
				fmt.Printf("%s no saved patterns\n", yellow("∅"))
				return nil
			}
			for _, p := range patterns {
				flagSuffix := ""
				if p.Flags != "" {
					flagSuffix = "/" + p.Flags
				}
				fmt.Printf("%s %s  /%s%s", cyan("•"), bold(p.Name), p.Pattern, flagSuffix)
				if p.Notes != "" {
					fmt.Printf("  — %s", p.Notes)
				}
				fmt.Println()
			}
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a saved pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore(cfg)
			if store == nil {
				return fmt.Errorf("history store unavailable")
			}
			if err := store.DeletePattern(args[0]); err != nil {
				return fmt.Errorf("deleting %q: %w", args[0], err)
			}
			fmt.Printf("%s deleted %s\n", green("✓"), bold(args[0]))
			return nil
		},
	}

	cmd.AddCommand(saveCmd, listCmd, rmCmd)
	return cmd
}
