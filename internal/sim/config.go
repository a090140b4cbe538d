package sim

import (
	"errors"
	"fmt"

	"github.com/nvandessel/polisim/internal/vecmath"
)

// ErrInvalidConfig is returned when a simulation configuration fails
// validation.
var ErrInvalidConfig = errors.New("invalid simulation config")

// OrderStrategy selects the visitation order within a round.
type OrderStrategy string

const (
	// OrderRandom draws a fresh uniform permutation from the seeded RNG
	// each round. This is the default: the in-place update is order
	// sensitive, and random order breaks systematic bias toward members
	// visited first.
	OrderRandom OrderStrategy = "random"

	// OrderFixed visits members in insertion order every round.
	OrderFixed OrderStrategy = "fixed"
)

// PartyMeanMode selects the signal aggregated into the party mean.
type PartyMeanMode string

const (
	// PartyMeanDiscrete averages each member's per-round discrete
	// opinion: the theta-banded sign of the clamped score. Default.
	PartyMeanDiscrete PartyMeanMode = "discrete"

	// PartyMeanContinuous averages each member's clamped score directly.
	PartyMeanContinuous PartyMeanMode = "continuous"
)

// Config holds tunable parameters for a simulation run.
type Config struct {
	// MaxRounds is the number of opinion-propagation rounds. Must be
	// positive. Default: 5.
	MaxRounds int `json:"max_rounds"`

	// Theta is the abstention half-width: final scores in [-Theta, Theta]
	// map to abstain. Must be non-negative. Default: 0.1.
	Theta float64 `json:"theta"`

	// Metric selects the similarity function used for initial scoring.
	Metric vecmath.Metric `json:"metric"`

	// Order selects fixed or randomized per-round visitation order.
	Order OrderStrategy `json:"order"`

	// Seed seeds the run-owned RNG used for randomized order. The same
	// seed, topology, and proposal always yield the same outcome.
	Seed int64 `json:"seed"`

	// ConvergenceEpsilon enables early termination when the maximum
	// absolute per-round score change falls below it. Zero disables.
	ConvergenceEpsilon float64 `json:"convergence_epsilon,omitempty"`

	// PartyMean selects the discrete or continuous party-mean signal.
	PartyMean PartyMeanMode `json:"party_mean"`

	// Trace records a per-round score snapshot on the outcome.
	Trace bool `json:"trace,omitempty"`
}

// DefaultConfig returns the default simulation configuration.
func DefaultConfig() Config {
	return Config{
		MaxRounds: 5,
		Theta:     0.1,
		Metric:    vecmath.MetricCosine,
		Order:     OrderRandom,
		PartyMean: PartyMeanDiscrete,
	}
}

// Validate checks that the configuration is well-formed.
func (c Config) Validate() error {
	if c.MaxRounds <= 0 {
		return fmt.Errorf("max rounds must be positive, got %d: %w", c.MaxRounds, ErrInvalidConfig)
	}
	if c.Theta < 0 {
		return fmt.Errorf("theta must be non-negative, got %v: %w", c.Theta, ErrInvalidConfig)
	}
	if c.ConvergenceEpsilon < 0 {
		return fmt.Errorf("convergence epsilon must be non-negative, got %v: %w", c.ConvergenceEpsilon, ErrInvalidConfig)
	}
	switch c.Metric {
	case vecmath.MetricCosine, vecmath.MetricEuclidean:
	default:
		return fmt.Errorf("unknown metric %q: %w", c.Metric, ErrInvalidConfig)
	}
	switch c.Order {
	case OrderRandom, OrderFixed:
	default:
		return fmt.Errorf("unknown order strategy %q: %w", c.Order, ErrInvalidConfig)
	}
	switch c.PartyMean {
	case PartyMeanDiscrete, PartyMeanContinuous:
	default:
		return fmt.Errorf("unknown party mean mode %q: %w", c.PartyMean, ErrInvalidConfig)
	}
	return nil
}
