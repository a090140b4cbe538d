// Package tally counts final votes and decides whether a proposal passes
// under a configurable majority rule.
package tally

import (
	"errors"
	"fmt"

	"github.com/nvandessel/polisim/internal/chamber"
)

// ErrUnknownRule is returned when a rule name does not parse.
var ErrUnknownRule = errors.New("unknown majority rule")

// Rule is a passing-threshold policy.
type Rule string

const (
	// RuleSimple passes when yes > 50% of cast votes; abstentions do not count.
	RuleSimple Rule = "simple"

	// RuleSuper passes when yes > 2/3 of cast votes; abstentions do not count.
	RuleSuper Rule = "super"

	// RuleAbsSimple passes when yes > 50% of all members; abstentions count against.
	RuleAbsSimple Rule = "abs-simple"

	// RuleAbsSuper passes when yes > 2/3 of all members; abstentions count against.
	RuleAbsSuper Rule = "abs-super"

	// RuleUnanimity requires every member to vote yes; an abstention blocks.
	RuleUnanimity Rule = "unanimity"
)

// ParseRule maps a string to a Rule. An empty string defaults to simple
// majority.
func ParseRule(s string) (Rule, error) {
	switch Rule(s) {
	case "", RuleSimple:
		return RuleSimple, nil
	case RuleSuper, RuleAbsSimple, RuleAbsSuper, RuleUnanimity:
		return Rule(s), nil
	default:
		return "", fmt.Errorf("%q (valid: simple, super, abs-simple, abs-super, unanimity): %w", s, ErrUnknownRule)
	}
}

// Count is a vote tally.
type Count struct {
	Yes     int `json:"yes"`
	No      int `json:"no"`
	Abstain int `json:"abstain"`
}

// CountVotes tallies a vote map.
func CountVotes(votes map[string]chamber.Vote) Count {
	var c Count
	for _, v := range votes {
		switch v {
		case chamber.VoteYes:
			c.Yes++
		case chamber.VoteNo:
			c.No++
		default:
			c.Abstain++
		}
	}
	return c
}

// Total returns the number of members counted, including abstentions.
func (c Count) Total() int { return c.Yes + c.No + c.Abstain }

// Cast returns the number of definite votes, excluding abstentions.
func (c Count) Cast() int { return c.Yes + c.No }

// Passes reports whether the tally clears the rule's threshold. Empty
// tallies (and, for cast-vote rules, all-abstain tallies) never pass.
func (c Count) Passes(rule Rule) bool {
	switch rule {
	case RuleSimple:
		return c.Cast() > 0 && float64(c.Yes)/float64(c.Cast()) > 0.5
	case RuleSuper:
		return c.Cast() > 0 && float64(c.Yes)/float64(c.Cast()) > 2.0/3.0
	case RuleAbsSimple:
		return c.Total() > 0 && float64(c.Yes)/float64(c.Total()) > 0.5
	case RuleAbsSuper:
		return c.Total() > 0 && float64(c.Yes)/float64(c.Total()) > 2.0/3.0
	case RuleUnanimity:
		return c.Total() > 0 && c.Yes == c.Total()
	default:
		return false
	}
}
