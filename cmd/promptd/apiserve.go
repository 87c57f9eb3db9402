package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stellarlinkco/promptd/api"
	"github.com/stellarlinkco/promptd/internal/prompt"
	"github.com/stellarlinkco/promptd/internal/store"
)

func newAPICmd(st *cliState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Serve the prompt catalog over HTTP",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cache := prompt.NewCache(st.promptsDir)
			stats, err := cache.Reload()
			if err != nil {
				return fmt.Errorf("api: load prompts: %w", err)
			}
			logger.Info("prompts loaded",
				zap.String("dir", st.promptsDir),
				zap.Int("succeeded", stats.Succeeded),
				zap.Int("failed", stats.Failed),
			)

			activity, err := store.Open(st.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = activity.Close() }()

			srv, err := api.NewServer(st.cfg, cache, activity, logger)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = st.cfg.Server.Addr
			}
			logger.Info("listening", zap.String("addr", addr))
			return srv.Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
