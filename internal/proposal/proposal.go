// Package proposal generates proposal vectors for simulations and sweeps.
// Real hosts supply proposal vectors from an upstream embedding pipeline;
// random proposals exist for testing and statistical sampling.
package proposal

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/nvandessel/polisim/internal/vecmath"
)

// Random draws a proposal with each component uniform in (-bound, bound).
// The RNG is caller-owned so sweeps stay reproducible and independent.
func Random(rng *rand.Rand, dim int, bound float64) (vecmath.Vector, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("proposal dimension must be positive, got %d", dim)
	}
	if bound <= 0 {
		return nil, fmt.Errorf("proposal bound must be positive, got %v", bound)
	}

	v := make(vecmath.Vector, dim)
	for i := range v {
		v[i] = (rng.Float64()*2 - 1) * bound
	}
	return v, nil
}

// Parse reads a comma-separated list of components, e.g. "0.9,-0.2,0.1".
func Parse(s string) (vecmath.Vector, error) {
	parts := strings.Split(s, ",")
	v := make(vecmath.Vector, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing proposal component %q: %w", p, err)
		}
		v = append(v, f)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("empty proposal")
	}
	return v, nil
}
