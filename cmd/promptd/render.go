package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/promptd/internal/prompt"
)

var errRenderFailed = errors.New("promptd: render failed")

type renderOptions struct {
	vars     []string
	varsJSON string
}

func newRenderCmd(st *cliState) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <prompt>",
		Short: "Render a prompt with the given variables",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := renderPrompt(st, args[0], &opts)
			if err != nil {
				return err
			}

			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			if !res.OK() {
				for _, e := range res.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
				}
				return errRenderFailed
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}

	addRenderFlags(cmd, &opts)
	return cmd
}

func addRenderFlags(cmd *cobra.Command, opts *renderOptions) {
	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, "variable as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.varsJSON, "json", "", "variables as a JSON object")
}

func renderPrompt(st *cliState, name string, opts *renderOptions) (*prompt.RenderResult, error) {
	cache := prompt.NewCache(st.promptsDir)
	if _, err := cache.Reload(); err != nil {
		return nil, err
	}

	def, ok := cache.Get(strings.TrimSpace(name))
	if !ok {
		return nil, fmt.Errorf("prompt %q not found in %s", name, st.promptsDir)
	}

	vars, err := parseVariables(opts)
	if err != nil {
		return nil, err
	}
	return prompt.Render(def, vars), nil
}

func parseVariables(opts *renderOptions) (map[string]any, error) {
	vars := make(map[string]any)

	if raw := strings.TrimSpace(opts.varsJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &vars); err != nil {
			return nil, fmt.Errorf("parse --json: %w", err)
		}
	}

	for _, kv := range opts.vars {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q (want key=value)", kv)
		}
		vars[key] = value
	}

	return vars, nil
}
