package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/polisim/internal/chamber"
	"github.com/nvandessel/polisim/internal/vecmath"
)

const validChamber = `
dimension: 3
members:
  - id: A1
    ideal: [1.0, -0.5, 0.0]
    bias: 0.2
    swing: 0.7
  - id: A2
    ideal: [0.8, -0.2, 0.1]
    bias: -0.1
    swing: 0.4
  - id: B1
    ideal: [-1.0, 0.5, 0.3]
    swing: 0.6
parties:
  - id: Party A
    discipline: 0.8
    members: [A1, A2]
  - id: Party B
    discipline: 0.5
    members: [B1]
edges:
  - {from: A1, to: A2, weight: 0.5}
  - {from: B1, to: A1, weight: 0.3}
  - {from: A1, to: B1, weight: 0.3}
`

func TestParse_Valid(t *testing.T) {
	c, err := Parse([]byte(validChamber))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !c.Frozen() {
		t.Error("expected chamber to be frozen")
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if c.Dim() != 3 {
		t.Errorf("Dim() = %d, want 3", c.Dim())
	}
	if c.Parties() != 2 {
		t.Errorf("Parties() = %d, want 2", c.Parties())
	}

	i, ok := c.MemberIndex("A1")
	if !ok {
		t.Fatal("member A1 not found")
	}
	m := c.Member(i)
	if m.Bias != 0.2 || m.Swing != 0.7 {
		t.Errorf("A1 = %+v, want bias 0.2 swing 0.7", m)
	}
	if c.Party(c.PartyOf(i)).ID() != "Party A" {
		t.Errorf("A1 party = %q, want %q", c.Party(c.PartyOf(i)).ID(), "Party A")
	}

	var incoming int
	c.Incoming(i, func(chamber.Edge) { incoming++ })
	if incoming != 1 {
		t.Errorf("A1 has %d incoming edges, want 1", incoming)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "dimension mismatch",
			yaml: `
dimension: 3
members:
  - {id: A, ideal: [1.0, 0.0], swing: 0.5}
parties:
  - {id: P, discipline: 0.5, members: [A]}
`,
			wantErr: vecmath.ErrDimensionMismatch,
		},
		{
			name: "unknown edge member",
			yaml: `
dimension: 2
members:
  - {id: A, ideal: [1.0, 0.0], swing: 0.5}
parties:
  - {id: P, discipline: 0.5, members: [A]}
edges:
  - {from: A, to: X, weight: 0.5}
`,
			wantErr: chamber.ErrUnknownMember,
		},
		{
			name: "unknown party member",
			yaml: `
dimension: 2
members:
  - {id: A, ideal: [1.0, 0.0], swing: 0.5}
parties:
  - {id: P, discipline: 0.5, members: [A, X]}
`,
			wantErr: chamber.ErrUnknownMember,
		},
		{
			name: "duplicate edge",
			yaml: `
dimension: 2
members:
  - {id: A, ideal: [1.0, 0.0], swing: 0.5}
  - {id: B, ideal: [0.0, 1.0], swing: 0.5}
parties:
  - {id: P, discipline: 0.5, members: [A, B]}
edges:
  - {from: A, to: B, weight: 0.5}
  - {from: A, to: B, weight: 0.7}
`,
			wantErr: chamber.ErrDuplicateEdge,
		},
		{
			name: "weight out of range",
			yaml: `
dimension: 2
members:
  - {id: A, ideal: [1.0, 0.0], swing: 0.5}
  - {id: B, ideal: [0.0, 1.0], swing: 0.5}
parties:
  - {id: P, discipline: 0.5, members: [A, B]}
edges:
  - {from: A, to: B, weight: 1.5}
`,
			wantErr: chamber.ErrInvalidRange,
		},
		{
			name: "empty party",
			yaml: `
dimension: 2
members:
  - {id: A, ideal: [1.0, 0.0], swing: 0.5}
parties:
  - {id: P, discipline: 0.5, members: [A]}
  - {id: Q, discipline: 0.5, members: []}
`,
			wantErr: chamber.ErrEmptyParty,
		},
		{
			name: "member without party",
			yaml: `
dimension: 2
members:
  - {id: A, ideal: [1.0, 0.0], swing: 0.5}
  - {id: B, ideal: [0.0, 1.0], swing: 0.5}
parties:
  - {id: P, discipline: 0.5, members: [A]}
`,
			wantErr: chamber.ErrNoParty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_BadYAMLAndShape(t *testing.T) {
	cases := map[string]string{
		"malformed yaml": "dimension: [not a number",
		"zero dimension": "dimension: 0\nmembers:\n  - {id: A, ideal: [], swing: 0}",
		"no members":     "dimension: 2",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chamber.yaml")
	if err := os.WriteFile(path, []byte(validChamber), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
