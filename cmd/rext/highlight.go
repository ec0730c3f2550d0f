package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termfx/rext/highlight"
	"github.com/termfx/rext/internal/config"
)

func newHighlightCmd(cfg *config.Config) *cobra.Command {
	var (
		pattern string
		flags   string
		file    string
		htmlOut bool
	)

	cmd := &cobra.Command{
		Use:   "highlight [subject]",
		Short: "Render the subject with match spans marked",
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

			matches, err := compiled.FindAll(subject)
			if err != nil {
				return err
			}

			segs := highlight.Split(subject, matches)
			if htmlOut {
				fmt.Println(highlight.HTML(segs))
			} else {
				fmt.Println(highlight.ANSI(segs))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Regular expression to run (required)")
	cmd.Flags().StringVarP(&flags, "flags", "f", "g", "Flag letters from \"gimsuy\"")
	cmd.Flags().StringVar(&file, "file", "", "Read the subject from a file")
	cmd.Flags().BoolVar(&htmlOut, "html", false, "Emit escaped HTML instead of ANSI colors")
	cmd.MarkFlagRequired("pattern")

	return cmd
}
