package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/termfx/rext/internal/config"
	"github.com/termfx/rext/scan"
)

func newScanCmd(cfg *config.Config) *cobra.Command {
	var (
		pattern       string
		flags         string
		includeGlobs  []string
		excludeGlobs  []string
		maxDepth      int
		maxFiles      int
		maxBytes      int64
		followLinks   bool
		failIfNoMatch bool
	)

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Run a pattern over a directory tree, grep-style",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			compiled, err := compileFromFlags(cfg, pattern, flags)
			if err != nil {
				return err
			}

			scope := scan.Scope{
				Path:           root,
				Include:        includeGlobs,
				Exclude:        excludeGlobs,
				MaxDepth:       maxDepth,
				MaxFiles:       maxFiles,
				MaxBytes:       maxBytes,
				FollowSymlinks: followLinks,
			}

			results, err := scan.New().Scan(context.Background(), compiled, scope)
			if err != nil {
				return err
			}

			totalMatches, filesWithMatches := 0, 0
			for res := range results {
				if res.Err != nil {
					fmt.Fprintf(os.Stderr, "%s %s: %v\n", red("✗"), res.Path, res.Err)
					continue
				}
				if len(res.Matches) == 0 {
					continue
				}
				filesWithMatches++
				totalMatches += len(res.Matches)
				for _, fm := range res.Matches {
					fmt.Printf("%s:%d:%d: %q\n", res.Path, fm.Line, fm.Column, fm.Match.Text)
				}
			}

			fmt.Fprintf(os.Stderr, "%s %d matches in %d files\n",
				green("✓"), totalMatches, filesWithMatches)
			if failIfNoMatch && totalMatches == 0 {
				os.Exit(2)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Regular expression to run (required)")
	cmd.Flags().StringVarP(&flags, "flags", "f", "g", "Flag letters from \"gimsuy\"")
	cmd.Flags().StringSliceVar(&includeGlobs, "include", nil, "Include file patterns (glob, ** supported)")
	cmd.Flags().StringSliceVar(&excludeGlobs, "exclude", nil, "Exclude file patterns (glob)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Max directory depth (0 = unlimited)")
	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "Max files to process (0 = unlimited)")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 5*1024*1024, "Skip files larger than this")
	cmd.Flags().BoolVar(&followLinks, "follow-symlinks", false, "Follow symbolic links")
	cmd.Flags().BoolVar(&failIfNoMatch, "fail-if-no-match", false, "Exit 2 when nothing matches")
	cmd.MarkFlagRequired("pattern")

	return cmd
}
