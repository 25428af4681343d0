package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gosh/internal/history"
)

var historyLimit int

// historyCmd groups the history file subcommands. They never touch the
// terminal mode.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear the shell history file",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print history entries, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := loadHistory().Entries()
		if historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[len(entries)-historyLimit:]
		}
		out := cmd.OutOrStdout()
		for _, e := range entries {
			fmt.Fprintln(out, e)
		}
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Print entries containing query, most recent first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := loadHistory().Entries()
		out := cmd.OutOrStdout()
		for i := len(entries) - 1; i >= 0; i-- {
			if strings.Contains(entries[i], args[0]) {
				fmt.Fprintf(out, "%5d  %s\n", i+1, entries[i])
			}
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry from the history file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.HistoryPath()
		if err := history.NewStore().PersistErr(path, cfg.History.MaxEntries); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", path)
		return nil
	},
}

func loadHistory() *history.Store {
	s := history.NewStore()
	s.Load(cfg.HistoryPath())
	return s
}
