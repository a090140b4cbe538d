// Package ranking computes influence centrality for chamber members.
// Centrality is a diagnostic: it explains which members anchor the
// influence graph, independent of any particular proposal.
package ranking

import (
	"math"

	"github.com/nvandessel/polisim/internal/chamber"
)

// Config holds configuration for the centrality computation.
type Config struct {
	// DampingFactor (d) is the probability of following an influence
	// edge vs. teleporting. Standard value: 0.85.
	DampingFactor float64

	// MaxIterations bounds the power iteration. Default: 100.
	MaxIterations int

	// Tolerance is the convergence threshold. Default: 1e-6.
	Tolerance float64
}

// DefaultConfig returns the default centrality configuration.
func DefaultConfig() Config {
	return Config{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

// Centrality computes PageRank over the directed influence graph and
// returns a map of member ID to centrality in [0, 1], normalized by the
// maximum score. Edge direction is respected: rank flows from the edge
// source to its target, matching the direction opinion propagates.
//
// Algorithm: standard power iteration.
//  1. Initialize all members with score 1/N.
//  2. PR(v) = (1-d)/N + d * sum(PR(u)/outDegree(u)) over edges u->v.
//  3. Stop when the max change drops below Tolerance.
//  4. Normalize to [0, 1].
//
// The chamber must be frozen (incoming lists exist only after Freeze).
func Centrality(c *chamber.Chamber, config Config) map[string]float64 {
	n := c.Len()
	if n == 0 {
		return map[string]float64{}
	}

	d := config.DampingFactor
	nf := float64(n)

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / nf
	}

	newScores := make([]float64, n)
	for iter := 0; iter < config.MaxIterations; iter++ {
		maxDelta := 0.0

		for v := 0; v < n; v++ {
			sum := 0.0
			c.Incoming(v, func(e chamber.Edge) {
				if deg := c.OutDegree(e.From); deg > 0 {
					sum += scores[e.From] / float64(deg)
				}
			})

			newScores[v] = (1.0-d)/nf + d*sum
			delta := math.Abs(newScores[v] - scores[v])
			if delta > maxDelta {
				maxDelta = delta
			}
		}

		scores, newScores = newScores, scores

		if maxDelta < config.Tolerance {
			break
		}
	}

	// Normalize to [0, 1] by the max score.
	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}

	out := make(map[string]float64, n)
	for i, s := range scores {
		if maxScore > 0 {
			s /= maxScore
		}
		out[c.Member(i).ID] = s
	}
	return out
}
