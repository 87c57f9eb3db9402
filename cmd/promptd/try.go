package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/promptd/internal/llm"
)

type tryOptions struct {
	render      renderOptions
	provider    string
	maxTokens   int
	temperature float64
	system      string
}

func newTryCmd(st *cliState) *cobra.Command {
	var opts tryOptions

	cmd := &cobra.Command{
		Use:   "try <prompt>",
		Short: "Render a prompt and send it to an LLM provider",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tryPrompt(cmd, st, args[0], &opts)
		},
	}

	addRenderFlags(cmd, &opts.render)
	cmd.Flags().StringVar(&opts.provider, "provider", "", "provider name (overrides config default)")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 1024, "max tokens for the completion")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", 0, "sampling temperature")
	cmd.Flags().StringVar(&opts.system, "system", "", "system prompt for the completion")
	return cmd
}

func tryPrompt(cmd *cobra.Command, st *cliState, name string, opts *tryOptions) error {
	res, err := renderPrompt(st, name, &opts.render)
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

	provider, err := resolveProvider(st, opts.provider)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	resp, err := provider.Complete(ctx, &llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: res.Text}},
		System:      opts.system,
		MaxTokens:   opts.maxTokens,
		Temperature: opts.temperature,
	})
	if err != nil {
		return err
	}

	text := llm.Text(resp)
	if text == "" {
		return errors.New("try: empty response")
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func resolveProvider(st *cliState, name string) (llm.Provider, error) {
	if name == "" {
		return llm.DefaultProviderFromConfig(st.cfg)
	}

	reg, err := llm.NewRegistryFromConfig(st.cfg)
	if err != nil {
		return nil, err
	}
	p, ok := reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("try: provider %q not configured", name)
	}
	return p, nil
}
