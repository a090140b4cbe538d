// Package loader builds chambers from YAML descriptions. A description
// declares the issue-space dimension, the members with their ideal points,
// the parties, and an optional list of directed influence edges.
package loader

import (
	"fmt"
	"os"

	"github.com/nvandessel/polisim/internal/chamber"
	"github.com/nvandessel/polisim/internal/vecmath"
	"gopkg.in/yaml.v3"
)

// Description is the top-level YAML structure.
type Description struct {
	// Dimension is the issue-space dimension every ideal vector must match.
	Dimension int `yaml:"dimension"`

	Members []MemberDesc `yaml:"members"`
	Parties []PartyDesc  `yaml:"parties"`
	Edges   []EdgeDesc   `yaml:"edges,omitempty"`
}

// MemberDesc declares one member.
type MemberDesc struct {
	ID    string    `yaml:"id"`
	Ideal []float64 `yaml:"ideal"`
	Bias  float64   `yaml:"bias"`
	Swing float64   `yaml:"swing"`
}

// PartyDesc declares one party and its membership.
type PartyDesc struct {
	ID         string   `yaml:"id"`
	Discipline float64  `yaml:"discipline"`
	Members    []string `yaml:"members"`
}

// EdgeDesc declares one directed influence edge.
type EdgeDesc struct {
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	Weight float64 `yaml:"weight"`
}

// Load reads a YAML chamber description from path and builds a frozen
// chamber from it.
func Load(path string) (*chamber.Chamber, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chamber file: %w", err)
	}
	return Parse(data)
}

// Parse builds a frozen chamber from YAML bytes. All construction errors
// (dimension mismatches, unknown references, duplicate edges, range
// violations, empty parties) surface the chamber package sentinels.
func Parse(data []byte) (*chamber.Chamber, error) {
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parsing chamber file: %w", err)
	}
	return Build(desc)
}

// Build assembles and freezes a chamber from a description.
func Build(desc Description) (*chamber.Chamber, error) {
	if desc.Dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", desc.Dimension)
	}
	if len(desc.Members) == 0 {
		return nil, fmt.Errorf("chamber description has no members")
	}

	c := chamber.New()
	for _, m := range desc.Members {
		if len(m.Ideal) != desc.Dimension {
			return nil, fmt.Errorf("member %q: ideal has %d dimensions, declared %d: %w",
				m.ID, len(m.Ideal), desc.Dimension, vecmath.ErrDimensionMismatch)
		}
		err := c.AddMember(chamber.Member{ID: m.ID, Ideal: m.Ideal, Bias: m.Bias, Swing: m.Swing})
		if err != nil {
			return nil, err
		}
	}

	for _, e := range desc.Edges {
		if err := c.AddEdge(e.From, e.To, e.Weight); err != nil {
			return nil, err
		}
	}

	for _, p := range desc.Parties {
		if err := c.AddParty(p.ID, p.Discipline, p.Members); err != nil {
			return nil, err
		}
	}

	if err := c.Freeze(); err != nil {
		return nil, err
	}
	return c, nil
}
