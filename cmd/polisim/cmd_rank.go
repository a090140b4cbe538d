package main

import (
	"fmt"
	"sort"

	"github.com/nvandessel/polisim/internal/loader"
	"github.com/nvandessel/polisim/internal/ranking"
	"github.com/spf13/cobra"
)

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank <chamber.yaml>",
		Short: "Rank members by influence centrality",
		Long: `Rank chamber members by influence centrality.

Centrality is computed over the influence graph with a damped power
iteration: a member is central when influential members listen to it.
Scores are normalized so the most central member has score 1.

Examples:
  polisim rank senate.yaml
  polisim rank senate.yaml --top 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loader.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading chamber: %w", err)
			}

			scores := ranking.Centrality(c, ranking.DefaultConfig())

			type ranked struct {
				ID    string  `json:"id"`
				Score float64 `json:"score"`
			}
			list := make([]ranked, 0, len(scores))
			for id, s := range scores {
				list = append(list, ranked{ID: id, Score: s})
			}
			sort.Slice(list, func(i, j int) bool {
				if list[i].Score != list[j].Score {
					return list[i].Score > list[j].Score
				}
				return list[i].ID < list[j].ID
			})

			top, _ := cmd.Flags().GetInt("top")
			if top > 0 && top < len(list) {
				list = list[:top]
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return printJSON(cmd, map[string]any{
					"chamber": args[0],
					"ranking": list,
				})
			}

			w := cmd.OutOrStdout()
			for i, r := range list {
				fmt.Fprintf(w, "%3d. %-16s %.4f\n", i+1, r.ID, r.Score)
			}
			return nil
		},
	}

	cmd.Flags().Int("top", 0, "Show only the top N members (0 = all)")

	return cmd
}
