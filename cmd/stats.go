package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wselearn/wse/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()
		stats, err := repo.ProgressStats(ctx)
		if err != nil {
			return fmt.Errorf("query progress: %w", err)
		}
		reqs, err := repo.RequestSummary(ctx)
		if err != nil {
			return fmt.Errorf("query requests: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(out, "No answers recorded yet.")
		} else {
			fmt.Fprintf(out, "%-12s  %6s  %6s  %9s  %6s\n", "Variant", "Total", "Known", "Not known", "Known%")
			fmt.Fprintln(out, strings.Repeat("─", 47))
			for _, st := range stats {
				pct := 0.0
				if st.Total() > 0 {
					pct = float64(st.Known) / float64(st.Total()) * 100
				}
				fmt.Fprintf(out, "%-12s  %6d  %6d  %9d  %5.0f%%\n", st.Variant, st.Total(), st.Known, st.NotKnown, pct)
			}
		}

		fmt.Fprintf(out, "\nAPI requests: %d (%d failed, avg %.0fms)\n", reqs.Total, reqs.Failed, reqs.AvgLatencyMs)
		return nil
	},
}
