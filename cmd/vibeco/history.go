package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rahulvramesh/vibeco/internal/history"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent recordings and transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg.HistoryPath(), 0)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no history yet")
				return nil
			}
			for _, e := range entries {
				fmt.Println(formatEntry(e))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func formatEntry(e history.Entry) string {
	ts := e.CreatedAt.Local().Format("2006-01-02 15:04:05")
	name := filepath.Base(e.Path)
	switch e.Status {
	case history.StatusCompleted:
		text := strings.ReplaceAll(e.Text, "\n", " ")
		if r := []rune(text); len(r) > 80 {
			text = string(r[:80]) + "…"
		}
		return fmt.Sprintf("%s  %-9s %s [%s, %s] %s", ts, e.Status, name, e.Model, e.Language, text)
	case history.StatusFailed:
		return fmt.Sprintf("%s  %-9s %s: %s", ts, e.Status, name, e.Error)
	default:
		return fmt.Sprintf("%s  %-9s %s (%v)", ts, e.Status, name, e.Duration.Round(10*time.Millisecond))
	}
}
