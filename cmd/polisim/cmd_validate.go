package main

import (
	"fmt"

	"github.com/nvandessel/polisim/internal/loader"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <chamber.yaml>",
		Short: "Validate a chamber description",
		Long: `Validate a chamber description for consistency issues.

This command checks for:
  - Member ideal points that do not match the declared dimension
  - Bias or swing values outside their valid ranges
  - Edges referencing unknown members, self-loops, duplicates
  - Empty parties or parties referencing unknown members

Examples:
  polisim validate senate.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			c, err := loader.Load(args[0])
			if err != nil {
				if jsonOut {
					return printJSON(cmd, map[string]any{
						"valid": false,
						"error": err.Error(),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s is invalid:\n  %v\n", args[0], err)
				return nil
			}

			if jsonOut {
				return printJSON(cmd, map[string]any{
					"valid":     true,
					"dimension": c.Dim(),
					"members":   c.Len(),
					"edges":     len(c.Edges()),
					"parties":   c.Parties(),
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"✓ %s is valid: %d members, %d edges, %d parties, dimension %d\n",
				args[0], c.Len(), len(c.Edges()), c.Parties(), c.Dim())
			return nil
		},
	}
}
