// Package chamber models the deliberative body: members with fixed ideal
// points, directed weighted influence edges between them, and parties with
// a collective discipline factor.
//
// A chamber is built once (AddMember/AddEdge/AddParty), then frozen.
// Topology is immutable after Freeze, so a single chamber can back many
// concurrent simulation runs; per-run state (scores, votes) lives with the
// run, never on the chamber.
package chamber

import (
	"fmt"

	"github.com/nvandessel/polisim/internal/vecmath"
)

// Vote is a member's final discrete position on a proposal.
type Vote int8

const (
	VoteNo      Vote = -1
	VoteAbstain Vote = 0
	VoteYes     Vote = 1
)

// String returns the conventional roll-call label for the vote.
func (v Vote) String() string {
	switch v {
	case VoteYes:
		return "YES"
	case VoteNo:
		return "NO"
	default:
		return "ABSTAIN"
	}
}

// Member is one agent in the chamber.
type Member struct {
	// ID uniquely identifies the member.
	ID string

	// Ideal is the member's fixed position in issue space.
	Ideal vecmath.Vector

	// Bias is the personal modifier added to proposal alignment:
	// positive means enthusiasm, negative reluctance.
	Bias float64

	// Swing in [0, 1] is the fraction of the member's score replaced by
	// social pressure each round. 0 never updates; 1 is fully replaced.
	Swing float64
}

// Edge is a directed influence relationship: From's opinion weighs on To.
type Edge struct {
	From   int
	To     int
	Weight float64 // in [0, 1]
}

// Party groups members under a shared discipline factor.
type Party struct {
	id         string
	discipline float64
	members    []int
}

// ID returns the party identifier.
func (p *Party) ID() string { return p.id }

// Discipline returns the party's discipline factor in [0, 1].
func (p *Party) Discipline() float64 { return p.discipline }

// Members returns the member indices belonging to the party. The returned
// slice is owned by the chamber and must not be mutated.
func (p *Party) Members() []int { return p.members }

// Chamber is the influence graph plus the party registry. Members are
// stored in a dense array addressed by index; edges reference members by
// index; per-member incoming edge lists are built at freeze time so that
// incoming retrieval costs O(in-degree).
type Chamber struct {
	members     []Member
	index       map[string]int
	edges       []Edge
	edgeSet     map[[2]int]struct{}
	incoming    [][]int // edge indices into edges, per target member
	outDegree   []int
	parties     []Party
	memberParty []int // party index per member, -1 until assigned
	dim         int   // issue-space dimension, fixed by the first member
	frozen      bool
}

// New creates an empty chamber.
func New() *Chamber {
	return &Chamber{
		index:   make(map[string]int),
		edgeSet: make(map[[2]int]struct{}),
	}
}

// AddMember adds a member to the chamber. The first member fixes the
// issue-space dimension; later members must match it.
func (c *Chamber) AddMember(m Member) error {
	if c.frozen {
		return fmt.Errorf("add member %q: %w", m.ID, ErrFrozen)
	}
	if m.ID == "" {
		return fmt.Errorf("add member: ID is required")
	}
	if _, exists := c.index[m.ID]; exists {
		return fmt.Errorf("add member %q: %w", m.ID, ErrDuplicateMember)
	}
	if len(m.Ideal) == 0 {
		return fmt.Errorf("add member %q: empty ideal vector: %w", m.ID, vecmath.ErrDimensionMismatch)
	}
	if len(c.members) == 0 {
		c.dim = len(m.Ideal)
	} else if len(m.Ideal) != c.dim {
		return fmt.Errorf("add member %q: ideal has %d dimensions, chamber has %d: %w",
			m.ID, len(m.Ideal), c.dim, vecmath.ErrDimensionMismatch)
	}
	if m.Swing < 0 || m.Swing > 1 {
		return fmt.Errorf("add member %q: swing %v outside [0, 1]: %w", m.ID, m.Swing, ErrInvalidRange)
	}

	m.Ideal = m.Ideal.Clone()
	c.index[m.ID] = len(c.members)
	c.members = append(c.members, m)
	c.memberParty = append(c.memberParty, -1)
	return nil
}

// AddEdge adds a directed influence edge from one member to another.
// Duplicate ordered pairs are rejected rather than merged; self-loops are
// allowed and carry no special handling.
func (c *Chamber) AddEdge(from, to string, weight float64) error {
	if c.frozen {
		return fmt.Errorf("add edge %s->%s: %w", from, to, ErrFrozen)
	}
	fi, ok := c.index[from]
	if !ok {
		return fmt.Errorf("add edge: from %q: %w", from, ErrUnknownMember)
	}
	ti, ok := c.index[to]
	if !ok {
		return fmt.Errorf("add edge: to %q: %w", to, ErrUnknownMember)
	}
	if weight < 0 || weight > 1 {
		return fmt.Errorf("add edge %s->%s: weight %v outside [0, 1]: %w", from, to, weight, ErrInvalidRange)
	}
	key := [2]int{fi, ti}
	if _, exists := c.edgeSet[key]; exists {
		return fmt.Errorf("add edge %s->%s: %w", from, to, ErrDuplicateEdge)
	}

	c.edgeSet[key] = struct{}{}
	c.edges = append(c.edges, Edge{From: fi, To: ti, Weight: weight})
	return nil
}

// AddParty registers a party with its discipline factor and members.
// Every listed member must exist and must not already belong to a party.
func (c *Chamber) AddParty(id string, discipline float64, memberIDs []string) error {
	if c.frozen {
		return fmt.Errorf("add party %q: %w", id, ErrFrozen)
	}
	if id == "" {
		return fmt.Errorf("add party: ID is required")
	}
	if discipline < 0 || discipline > 1 {
		return fmt.Errorf("add party %q: discipline %v outside [0, 1]: %w", id, discipline, ErrInvalidRange)
	}
	if len(memberIDs) == 0 {
		return fmt.Errorf("add party %q: %w", id, ErrEmptyParty)
	}
	for _, p := range c.parties {
		if p.id == id {
			return fmt.Errorf("add party %q: party already exists", id)
		}
	}

	idx := make([]int, 0, len(memberIDs))
	for _, mid := range memberIDs {
		mi, ok := c.index[mid]
		if !ok {
			return fmt.Errorf("add party %q: member %q: %w", id, mid, ErrUnknownMember)
		}
		if c.memberParty[mi] != -1 {
			return fmt.Errorf("add party %q: member %q already belongs to %q",
				id, mid, c.parties[c.memberParty[mi]].id)
		}
		idx = append(idx, mi)
	}

	pi := len(c.parties)
	for _, mi := range idx {
		c.memberParty[mi] = pi
	}
	c.parties = append(c.parties, Party{id: id, discipline: discipline, members: idx})
	return nil
}

// Freeze validates the assembled topology and builds the per-member
// incoming edge index. After Freeze, AddMember/AddEdge/AddParty fail with
// ErrFrozen. Freeze is idempotent.
func (c *Chamber) Freeze() error {
	if c.frozen {
		return nil
	}
	if len(c.members) == 0 {
		return fmt.Errorf("freeze: chamber has no members")
	}
	for i, pi := range c.memberParty {
		if pi == -1 {
			return fmt.Errorf("freeze: member %q: %w", c.members[i].ID, ErrNoParty)
		}
	}

	c.incoming = make([][]int, len(c.members))
	c.outDegree = make([]int, len(c.members))
	for ei, e := range c.edges {
		c.incoming[e.To] = append(c.incoming[e.To], ei)
		c.outDegree[e.From]++
	}

	c.frozen = true
	return nil
}

// Frozen reports whether the topology has been frozen.
func (c *Chamber) Frozen() bool { return c.frozen }

// Len returns the number of members.
func (c *Chamber) Len() int { return len(c.members) }

// Dim returns the issue-space dimension, or 0 for an empty chamber.
func (c *Chamber) Dim() int { return c.dim }

// Member returns the member at index i.
func (c *Chamber) Member(i int) Member { return c.members[i] }

// MemberIndex returns the dense index for a member ID.
func (c *Chamber) MemberIndex(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Edges returns all edges. The returned slice is owned by the chamber.
func (c *Chamber) Edges() []Edge { return c.edges }

// Incoming calls fn for every edge pointing at member i. Only valid on a
// frozen chamber.
func (c *Chamber) Incoming(i int, fn func(Edge)) {
	for _, ei := range c.incoming[i] {
		fn(c.edges[ei])
	}
}

// OutDegree returns the number of outgoing edges for member i. Only valid
// on a frozen chamber.
func (c *Chamber) OutDegree(i int) int { return c.outDegree[i] }

// PartyOf returns the party index for member i.
func (c *Chamber) PartyOf(i int) int { return c.memberParty[i] }

// Party returns the party at index p.
func (c *Chamber) Party(p int) *Party { return &c.parties[p] }

// Parties returns the number of registered parties.
func (c *Chamber) Parties() int { return len(c.parties) }
