package cmd

import (
	"fmt"
	"time"

	"formatlink/pkg/errors"
	"formatlink/pkg/store"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyLimit    int
	historyFormatID string
	historyContains string
	historySince    time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear copied links",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently copied links",
	Example: `  # Last 10 copies
  formatlink history list --limit 10

  # Markdown links copied today
  formatlink history list -f Markdown --since 24h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		limit := historyLimit
		if !cmd.Flags().Changed("limit") {
			limit = a.cfg.History.Limit
		}
		f := store.HistoryFilter{
			FormatID: historyFormatID,
			Contains: historyContains,
			Limit:    limit,
		}
		if historySince > 0 {
			f.Since = time.Now().Add(-historySince)
		}

		entries, err := a.store.SearchHistory(f)
		if err != nil {
			return errors.StorageError("failed to read history", err)
		}

		output := NewOutputWriter(outputFormat)
		if output.IsStructured() {
			return output.Write(entries)
		}

		if len(entries) == 0 {
			fmt.Println("No copies recorded.")
			return nil
		}
		cyan := color.New(color.FgCyan)
		for _, e := range entries {
			_, _ = cyan.Printf("%s  %-16s", FormatTimestamp(e.CreatedAt), e.FormatID)
			fmt.Printf(" %s\n", Truncate(e.Text, 80))
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded copies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		if !IsAssumeYes() {
			ok, err := ConfirmDestructive("delete the copy history", map[string]string{
				"database": dbPath(a.cfg),
			})
			if err != nil {
				return err
			}
			if !ok {
				return errors.CancelledError("history clear")
			}
		}

		n, err := a.store.ClearHistory()
		if err != nil {
			return errors.StorageError("failed to clear history", err)
		}
		fmt.Printf("Deleted %d entries\n", n)
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "l", 50, "Maximum entries (0 for all)")
	historyListCmd.Flags().StringVarP(&historyFormatID, "format", "f", "", "Only entries of this format")
	historyListCmd.Flags().StringVar(&historyContains, "contains", "", "Only entries whose text, url or title contains this")
	historyListCmd.Flags().DurationVar(&historySince, "since", 0, "Only entries newer than this (e.g., 24h)")
}
