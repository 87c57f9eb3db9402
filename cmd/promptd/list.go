package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/promptd/internal/prompt"
)

func newListCmd(st *cliState) *cobra.Command {
	var category, tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prompts in the catalog",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := prompt.NewCache(st.promptsDir)
			if _, err := cache.Reload(); err != nil {
				return err
			}

			var defs []*prompt.Definition
			switch {
			case strings.TrimSpace(category) != "":
				defs = cache.FilterByCategory(strings.TrimSpace(category))
			case strings.TrimSpace(tag) != "":
				defs = cache.FilterByTag(strings.TrimSpace(tag))
			default:
				defs = cache.List()
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCATEGORY\tTAGS\tTITLE")
			for _, def := range defs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.Name, def.Category, strings.Join(def.Tags, ","), def.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list prompts in this category")
	cmd.Flags().StringVar(&tag, "tag", "", "only list prompts carrying this tag")
	return cmd
}

func newSearchCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search prompts by keyword",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := prompt.NewCache(st.promptsDir)
			if _, err := cache.Reload(); err != nil {
				return err
			}

			defs := cache.Search(args[0])
			if len(defs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no prompts matched")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCATEGORY\tTITLE")
			for _, def := range defs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Name, def.Category, def.Title)
			}
			return tw.Flush()
		},
	}
}
