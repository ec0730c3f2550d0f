package main

import (
	"github.com/spf13/cobra"

	"github.com/termfx/rext/internal/config"
	"github.com/termfx/rext/rpc"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the matcher over JSON-RPC on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverCfg := rpc.DefaultConfig()
			serverCfg.MatchTimeout = cfg.MatchTimeout
			serverCfg.MaxMatches = cfg.MaxMatches
			serverCfg.Debug = cfg.Debug
			serverCfg.RecordRuns = !noHistory

			store := openStore(cfg)
			return rpc.NewStdioServer(serverCfg, store).Start()
		},
	}

	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording runs")
	return cmd
}
