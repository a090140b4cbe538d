// Package sim runs influence-propagation simulations over a frozen
// chamber. A run scores every member against the proposal, iterates a
// bounded number of in-place opinion-propagation rounds combining peer and
// party pressure, then thresholds the final scores into discrete votes.
//
// The engine is stateless: all mutable run state lives in slices allocated
// per Run call, so a single engine may execute concurrent runs against the
// same shared topology.
package sim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/nvandessel/polisim/internal/chamber"
	"github.com/nvandessel/polisim/internal/vecmath"
)

// Pressure is the social-pressure decomposition for one member, computed
// from the final scores for explainability.
type Pressure struct {
	Peer  float64 `json:"peer"`
	Party float64 `json:"party"`
}

// Round is a per-round score snapshot.
type Round struct {
	Round  int                `json:"round"`
	Scores map[string]float64 `json:"scores"`
}

// Outcome is the result of a single run.
type Outcome struct {
	// Votes maps member ID to the final vote.
	Votes map[string]chamber.Vote `json:"votes"`

	// Scores maps member ID to the final continuous score.
	Scores map[string]float64 `json:"scores"`

	// Rounds is the number of propagation rounds actually executed.
	Rounds int `json:"rounds"`

	// Converged is true when the run stopped early because the maximum
	// per-round score change fell below the configured epsilon.
	Converged bool `json:"converged"`

	// Pressures decomposes the final peer and party pressure per member.
	Pressures map[string]Pressure `json:"pressures"`

	// Trace holds per-round score snapshots when tracing is enabled.
	Trace []Round `json:"trace,omitempty"`
}

// Engine executes simulation runs against one frozen chamber.
type Engine struct {
	chamber *chamber.Chamber
	config  Config
}

// NewEngine validates the configuration and freezes the chamber if the
// host has not already done so. From this point topology mutation fails
// with chamber.ErrFrozen.
func NewEngine(c *chamber.Chamber, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := c.Freeze(); err != nil {
		return nil, fmt.Errorf("freezing chamber: %w", err)
	}
	return &Engine{chamber: c, config: config}, nil
}

// Run executes one simulation for the given proposal and returns the
// outcome. The proposal must match the chamber's issue-space dimension.
// The context is checked between rounds only; there is no mid-round
// cancellation.
func (e *Engine) Run(ctx context.Context, proposal vecmath.Vector) (*Outcome, error) {
	c := e.chamber
	if len(proposal) != c.Dim() {
		return nil, fmt.Errorf("proposal has %d dimensions, chamber has %d: %w",
			len(proposal), c.Dim(), vecmath.ErrDimensionMismatch)
	}

	n := c.Len()
	scores := make([]float64, n)

	// Initial scoring: alignment with the proposal plus personal bias.
	// Runs exactly once, before round 1.
	for i := 0; i < n; i++ {
		m := c.Member(i)
		alignment, err := vecmath.Similarity(e.config.Metric, m.Ideal, proposal)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", m.ID, err)
		}
		scores[i] = alignment + m.Bias
	}

	var rng *rand.Rand
	if e.config.Order == OrderRandom {
		rng = rand.New(rand.NewSource(e.config.Seed))
	}

	out := &Outcome{}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	rounds := 0
	for round := 1; round <= e.config.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled before round %d: %w", round, err)
		}

		if rng != nil {
			order = rng.Perm(n)
		}

		// In-place Gauss-Seidel sweep: updates made earlier in the round
		// are visible to members visited later.
		maxDelta := 0.0
		for _, i := range order {
			m := c.Member(i)

			peer := e.peerPressure(scores, i)
			party := e.partyPressure(scores, i)

			updated := (1-m.Swing)*scores[i] + m.Swing*(peer+party)
			delta := updated - scores[i]
			if delta < 0 {
				delta = -delta
			}
			if delta > maxDelta {
				maxDelta = delta
			}
			scores[i] = updated
		}
		rounds = round

		if e.config.Trace {
			out.Trace = append(out.Trace, Round{Round: round, Scores: e.snapshot(scores)})
		}

		if e.config.ConvergenceEpsilon > 0 && maxDelta < e.config.ConvergenceEpsilon {
			out.Converged = true
			break
		}
	}

	// Finalization: the single point where continuous scores become
	// discrete votes.
	out.Rounds = rounds
	out.Votes = make(map[string]chamber.Vote, n)
	out.Scores = make(map[string]float64, n)
	out.Pressures = make(map[string]Pressure, n)
	for i := 0; i < n; i++ {
		m := c.Member(i)
		out.Votes[m.ID] = e.finalize(scores[i])
		out.Scores[m.ID] = scores[i]
		out.Pressures[m.ID] = Pressure{
			Peer:  e.peerPressure(scores, i),
			Party: e.partyPressure(scores, i),
		}
	}

	return out, nil
}

// peerPressure averages the clamped scores of members with edges into i,
// weighted by edge weight. A member with no incoming influence (or only
// zero-weight edges) feels no peer pressure.
func (e *Engine) peerPressure(scores []float64, i int) float64 {
	var sum, totalWeight float64
	e.chamber.Incoming(i, func(edge chamber.Edge) {
		sum += edge.Weight * clamp(scores[edge.From])
		totalWeight += edge.Weight
	})
	if totalWeight == 0 {
		return 0
	}
	return sum / totalWeight
}

// partyPressure is the party discipline factor times the mean opinion of
// the party's members, recomputed fresh from current scores. The empty
// party guard mirrors construction-time validation: it degrades to 0.
func (e *Engine) partyPressure(scores []float64, i int) float64 {
	party := e.chamber.Party(e.chamber.PartyOf(i))
	members := party.Members()
	if len(members) == 0 {
		return 0
	}

	var sum float64
	for _, mi := range members {
		if e.config.PartyMean == PartyMeanContinuous {
			sum += clamp(scores[mi])
		} else {
			sum += float64(e.opinion(scores[mi]))
		}
	}
	return party.Discipline() * sum / float64(len(members))
}

// opinion maps a clamped score to a per-round discrete position using the
// same theta band as finalization, so the discrete party mean and the
// final votes agree in spirit.
func (e *Engine) opinion(score float64) chamber.Vote {
	return e.band(clamp(score))
}

// finalize maps a raw final score to a vote using the theta band.
func (e *Engine) finalize(score float64) chamber.Vote {
	return e.band(score)
}

func (e *Engine) band(s float64) chamber.Vote {
	switch {
	case s > e.config.Theta:
		return chamber.VoteYes
	case s < -e.config.Theta:
		return chamber.VoteNo
	default:
		return chamber.VoteAbstain
	}
}

// snapshot copies current scores into an ID-keyed map for tracing.
func (e *Engine) snapshot(scores []float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for i, s := range scores {
		out[e.chamber.Member(i).ID] = s
	}
	return out
}

// clamp bounds a score to [-1, 1] for use as an opinion signal.
func clamp(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
