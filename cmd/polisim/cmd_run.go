package main

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/nvandessel/polisim/internal/archive"
	"github.com/nvandessel/polisim/internal/config"
	"github.com/nvandessel/polisim/internal/loader"
	"github.com/nvandessel/polisim/internal/logging"
	"github.com/nvandessel/polisim/internal/proposal"
	"github.com/nvandessel/polisim/internal/sim"
	"github.com/nvandessel/polisim/internal/tally"
	"github.com/nvandessel/polisim/internal/vecmath"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <chamber.yaml>",
		Short: "Simulate a vote on a proposal",
		Long: `Simulate a vote on a proposal against a chamber description.

The proposal is a comma-separated vector matching the chamber's issue
dimension. Each member is scored against the proposal, peer and party
pressure propagate over bounded rounds, and the final votes are tallied
under the chosen majority rule.

With --range a random proposal is drawn uniformly from (-range, range)
per dimension instead.

Examples:
  polisim run senate.yaml --proposal 0.8,-0.2,0.1
  polisim run senate.yaml --proposal 0.8,-0.2,0.1 --rule super --seed 42
  polisim run senate.yaml --range 1.0 --seed 42
  polisim run senate.yaml --proposal 0.8,-0.2,0.1 --theta 0.25 --trace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLoggerFromConfig(cfg)

			c, err := loader.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading chamber: %w", err)
			}

			ruleStr, _ := cmd.Flags().GetString("rule")
			rule, err := tally.ParseRule(ruleStr)
			if err != nil {
				return err
			}

			simCfg, err := simConfigFromFlags(cmd, cfg)
			if err != nil {
				return err
			}

			prop, err := resolveProposal(cmd, c.Dim(), simCfg.Seed)
			if err != nil {
				return err
			}

			engine, err := sim.NewEngine(c, simCfg)
			if err != nil {
				return fmt.Errorf("building engine: %w", err)
			}

			logger.Debug("starting run",
				"chamber", args[0],
				"members", c.Len(),
				"rounds", simCfg.MaxRounds,
				"seed", simCfg.Seed)

			out, err := engine.Run(cmd.Context(), prop)
			if err != nil {
				return fmt.Errorf("running simulation: %w", err)
			}

			count := tally.CountVotes(out.Votes)
			logger.Debug("run complete",
				"rounds", out.Rounds,
				"converged", out.Converged,
				"yes", count.Yes, "no", count.No, "abstain", count.Abstain)

			writeTrace(cfg, out)

			var runID string
			archiveOn, _ := cmd.Flags().GetBool("archive")
			if archiveOn || cfg.Archive.Enabled {
				runID, err = saveRun(cmd, cfg, args[0], prop, simCfg, out)
				if err != nil {
					return err
				}
			}

			return outputRun(cmd, prop, out, count, rule, runID)
		},
	}

	cmd.Flags().String("proposal", "", "Proposal vector as comma-separated floats")
	cmd.Flags().Float64("range", 0, "Draw a random proposal from (-range, range) instead")
	cmd.Flags().Int("rounds", 0, "Propagation rounds (overrides config)")
	cmd.Flags().Float64("theta", 0, "Abstention half-width (overrides config)")
	cmd.Flags().String("metric", "", "Similarity metric: cosine or euclidean (overrides config)")
	cmd.Flags().String("order", "", "Visitation order: random or fixed (overrides config)")
	cmd.Flags().String("party-mean", "", "Party mean mode: discrete or continuous (overrides config)")
	cmd.Flags().Float64("epsilon", 0, "Convergence epsilon, 0 disables (overrides config)")
	cmd.Flags().Int64("seed", 0, "RNG seed (default: current time)")
	cmd.Flags().String("rule", "simple", "Majority rule: simple, super, abs-simple, abs-super, unanimity")
	cmd.Flags().Bool("trace", false, "Include per-round score snapshots in the outcome")
	cmd.Flags().Bool("archive", false, "Archive this run (overrides config)")

	return cmd
}

// resolveProposal reads the proposal from --proposal, or draws a random
// one seeded like the run when --range is given.
func resolveProposal(cmd *cobra.Command, dim int, seed int64) (vecmath.Vector, error) {
	propStr, _ := cmd.Flags().GetString("proposal")
	rangeBound, _ := cmd.Flags().GetFloat64("range")

	switch {
	case propStr != "" && rangeBound > 0:
		return nil, fmt.Errorf("--proposal and --range are mutually exclusive")
	case rangeBound > 0:
		rng := rand.New(rand.NewSource(seed))
		return proposal.Random(rng, dim, rangeBound)
	case propStr != "":
		prop, err := proposal.Parse(propStr)
		if err != nil {
			return nil, fmt.Errorf("parsing proposal: %w", err)
		}
		return prop, nil
	default:
		return nil, fmt.Errorf("either --proposal or --range is required")
	}
}

// simConfigFromFlags builds a sim.Config from the loaded configuration
// with any explicitly set flags taking precedence.
func simConfigFromFlags(cmd *cobra.Command, cfg *config.PolisimConfig) (sim.Config, error) {
	overlay := *cfg
	if cmd.Flags().Changed("rounds") {
		overlay.Simulation.Rounds, _ = cmd.Flags().GetInt("rounds")
	}
	if cmd.Flags().Changed("theta") {
		overlay.Simulation.Theta, _ = cmd.Flags().GetFloat64("theta")
	}
	if cmd.Flags().Changed("metric") {
		overlay.Simulation.Metric, _ = cmd.Flags().GetString("metric")
	}
	if cmd.Flags().Changed("order") {
		overlay.Simulation.Order, _ = cmd.Flags().GetString("order")
	}
	if cmd.Flags().Changed("party-mean") {
		overlay.Simulation.PartyMean, _ = cmd.Flags().GetString("party-mean")
	}
	if cmd.Flags().Changed("epsilon") {
		overlay.Simulation.Epsilon, _ = cmd.Flags().GetFloat64("epsilon")
	}

	seed := time.Now().UnixNano()
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetInt64("seed")
	}

	simCfg, err := overlay.SimConfig(seed)
	if err != nil {
		return sim.Config{}, err
	}

	if traceFlag, _ := cmd.Flags().GetBool("trace"); traceFlag {
		simCfg.Trace = true
	}
	// Trace logging needs the snapshots regardless of the flag.
	if logging.ParseLevel(cfg.Logging.Level) < logging.ParseLevel("info") {
		simCfg.Trace = true
	}
	return simCfg, nil
}

// writeTrace appends per-round snapshots to the trace log when enabled.
func writeTrace(cfg *config.PolisimConfig, out *sim.Outcome) {
	dir, err := cfg.ArchiveDir()
	if err != nil {
		return
	}
	tl := logging.NewTraceLogger(dir, cfg.Logging.Level)
	if tl == nil {
		return
	}
	defer tl.Close()

	for _, round := range out.Trace {
		tl.Log(map[string]any{
			"round":  round.Round,
			"scores": round.Scores,
		})
	}
	tl.Log(map[string]any{
		"rounds":    out.Rounds,
		"converged": out.Converged,
	})
}

// saveRun archives the outcome and returns the run ID.
func saveRun(cmd *cobra.Command, cfg *config.PolisimConfig, chamberLabel string, prop vecmath.Vector, simCfg sim.Config, out *sim.Outcome) (string, error) {
	dir, err := cfg.ArchiveDir()
	if err != nil {
		return "", err
	}
	a, err := archive.Open(dir)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer a.Close()

	rec, err := a.Save(cmd.Context(), chamberLabel, prop, simCfg, out)
	if err != nil {
		return "", fmt.Errorf("archiving run: %w", err)
	}
	return rec.ID, nil
}

func outputRun(cmd *cobra.Command, prop vecmath.Vector, out *sim.Outcome, count tally.Count, rule tally.Rule, runID string) error {
	passed := count.Passes(rule)

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		result := map[string]any{
			"proposal":  prop,
			"votes":     out.Votes,
			"scores":    out.Scores,
			"pressures": out.Pressures,
			"rounds":    out.Rounds,
			"converged": out.Converged,
			"tally": map[string]any{
				"yes":     count.Yes,
				"no":      count.No,
				"abstain": count.Abstain,
				"rule":    string(rule),
				"passed":  passed,
			},
		}
		if len(out.Trace) > 0 {
			result["trace"] = out.Trace
		}
		if runID != "" {
			result["run_id"] = runID
		}
		return printJSON(cmd, result)
	}

	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Proposal: %v\n\n", prop)

	ids := make([]string, 0, len(out.Votes))
	for id := range out.Votes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Fprintf(w, "%-16s %-8s %+.4f\n", id, out.Votes[id].String(), out.Scores[id])
	}

	fmt.Fprintf(w, "\nTally: %d yes, %d no, %d abstain (%d members)\n",
		count.Yes, count.No, count.Abstain, count.Total())
	if passed {
		fmt.Fprintf(w, "✓ Proposal PASSES under %s majority\n", rule)
	} else {
		fmt.Fprintf(w, "✗ Proposal FAILS under %s majority\n", rule)
	}
	fmt.Fprintf(w, "Rounds: %d", out.Rounds)
	if out.Converged {
		fmt.Fprint(w, " (converged early)")
	}
	fmt.Fprintln(w)

	if runID != "" {
		fmt.Fprintf(w, "Archived as %s\n", runID)
	}
	return nil
}
