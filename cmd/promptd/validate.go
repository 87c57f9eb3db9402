package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/promptd/internal/prompt"
)

var errValidationFailed = errors.New("promptd: validation failed")

func newValidateCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate every prompt definition in the catalog",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stats, err := prompt.Load(st.promptsDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, w := range stats.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, e := range stats.Errors {
				if e.Field != "" {
					fmt.Fprintf(out, "%s: %s: %s\n", e.File, e.Field, e.Message)
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", e.File, e.Message)
			}

			fmt.Fprintf(out, "%d/%d definitions valid\n", stats.Succeeded, stats.TotalFiles)
			if stats.Failed > 0 {
				return errValidationFailed
			}
			return nil
		},
	}
}
