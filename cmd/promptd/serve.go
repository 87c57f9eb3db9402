package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stellarlinkco/promptd/internal/mcpserver"
	"github.com/stellarlinkco/promptd/internal/prompt"
	"github.com/stellarlinkco/promptd/internal/store"
)

func newServeCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the prompt catalog over MCP on stdin/stdout",
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
				return fmt.Errorf("serve: load prompts: %w", err)
			}
			logger.Info("prompts loaded",
				zap.String("dir", st.promptsDir),
				zap.Int("total", stats.TotalFiles),
				zap.Int("succeeded", stats.Succeeded),
				zap.Int("failed", stats.Failed),
			)
			for _, e := range stats.Errors {
				logger.Warn("rejected definition", zap.String("file", e.File), zap.String("error", e.Message))
			}

			activity, err := store.Open(st.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = activity.Close() }()

			return mcpserver.New(cache, activity, version, logger).ServeStdio()
		},
	}
}
