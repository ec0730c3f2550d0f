package main

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/termfx/rext/internal/config"
)

func newReplaceCmd(cfg *config.Config) *cobra.Command {
	var (
		pattern     string
		flags       string
		file        string
		replacement string
		showDiff    bool
		diffContext int
	)

	cmd := &cobra.Command{
		Use:   "replace [subject]",
		Short: "Preview a substitution over the subject",
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

			out, err := compiled.Replace(subject, replacement)
			if err != nil {
				return err
			}

			if showDiff {
				fmt.Print(generateDiff(subject, out, diffContext))
				return nil
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Regular expression to run (required)")
	cmd.Flags().StringVarP(&flags, "flags", "f", "g", "Flag letters from \"gimsuy\"")
	cmd.Flags().StringVar(&file, "file", "", "Read the subject from a file")
	cmd.Flags().StringVarP(&replacement, "repl", "r", "", "Replacement template ($1, ${name}, $$)")
	cmd.Flags().BoolVarP(&showDiff, "diff", "D", false, "Show a unified diff instead of the result")
	cmd.Flags().IntVarP(&diffContext, "diff-context", "C", 3, "Lines of context for the diff")
	cmd.MarkFlagRequired("pattern")

	return cmd
}

// generateDiff creates a unified diff
func generateDiff(original, modified string, context int) string {
	if original == modified {
		return ""
	}

	diff := difflib.UnifiedDiff{
		A:        strings.Split(original, "\n"),
		B:        strings.Split(modified, "\n"),
		FromFile: "subject",
		ToFile:   "replaced",
		Context:  context,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("--- subject\n+++ replaced\n@@ changes @@\n%d bytes -> %d bytes\n",
			len(original), len(modified))
	}

	return text
}
