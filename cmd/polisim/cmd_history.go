package main

import (
	"fmt"

	"github.com/nvandessel/polisim/internal/archive"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List or inspect archived runs",
		Long: `List archived runs, newest first, or show one run in full.

Runs are archived when the run command is invoked with --archive or
when archiving is enabled in the config.

Examples:
  polisim history
  polisim history --limit 10
  polisim history run-a1b2c3d4e5f6`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir, err := cfg.ArchiveDir()
			if err != nil {
				return err
			}

			a, err := archive.Open(dir)
			if err != nil {
				return fmt.Errorf("opening archive: %w", err)
			}
			defer a.Close()

			jsonOut, _ := cmd.Flags().GetBool("json")

			if len(args) == 1 {
				rec, err := a.Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("reading run: %w", err)
				}
				if rec == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				if jsonOut {
					return printJSON(cmd, rec)
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Run:       %s\n", rec.ID)
				fmt.Fprintf(w, "Created:   %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(w, "Chamber:   %s\n", rec.Chamber)
				fmt.Fprintf(w, "Proposal:  %v\n", rec.Proposal)
				fmt.Fprintf(w, "Rounds:    %d (converged: %v)\n", rec.Rounds, rec.Converged)
				fmt.Fprintf(w, "Tally:     %d yes, %d no, %d abstain\n", rec.Yes, rec.No, rec.Abstain)
				for id, v := range rec.Votes {
					fmt.Fprintf(w, "  %-16s %s\n", id, v.String())
				}
				return nil
			}

			limit, _ := cmd.Flags().GetInt("limit")
			records, err := a.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("listing runs: %w", err)
			}

			if jsonOut {
				return printJSON(cmd, map[string]any{
					"count": len(records),
					"runs":  records,
				})
			}

			w := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(w, "No archived runs.")
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(w, "%s  %s  %-20s  %d/%d/%d  rounds=%d\n",
					rec.ID,
					rec.CreatedAt.Format("2006-01-02 15:04"),
					rec.Chamber,
					rec.Yes, rec.No, rec.Abstain,
					rec.Rounds)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum runs to list (0 = all)")

	return cmd
}
