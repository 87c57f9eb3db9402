package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stellarlinkco/promptd/internal/config"
)

const version = "0.1.0"

type cliState struct {
	configPath string
	promptsDir string
	cfg        *config.Config
}

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	root := &cobra.Command{
		Use:           "promptd",
		Short:         "Manage and serve a prompt definition catalog",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", st.configPath, "path to config file")
	root.PersistentFlags().StringVar(&st.promptsDir, "dir", "", "prompt directory (overrides config)")

	root.AddCommand(newServeCmd(st))
	root.AddCommand(newAPICmd(st))
	root.AddCommand(newListCmd(st))
	root.AddCommand(newValidateCmd(st))
	root.AddCommand(newRenderCmd(st))
	root.AddCommand(newSearchCmd(st))
	root.AddCommand(newTryCmd(st))
	return root
}

// loadState resolves config and the effective prompts directory.
func (st *cliState) load() error {
	cfg, err := config.Load(st.configPath)
	if err != nil {
		return err
	}
	st.cfg = cfg
	if st.promptsDir == "" {
		st.promptsDir = cfg.Prompts.Dir
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	// MCP stdio transport owns stdout, so logs always go to stderr.
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
