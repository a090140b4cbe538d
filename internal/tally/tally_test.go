package tally

import (
	"errors"
	"testing"

	"github.com/nvandessel/polisim/internal/chamber"
)

func TestCountVotes(t *testing.T) {
	votes := map[string]chamber.Vote{
		"A": chamber.VoteYes,
		"B": chamber.VoteYes,
		"C": chamber.VoteNo,
		"D": chamber.VoteAbstain,
	}
	got := CountVotes(votes)
	want := Count{Yes: 2, No: 1, Abstain: 1}
	if got != want {
		t.Fatalf("CountVotes() = %+v, want %+v", got, want)
	}
	if got.Cast() != 3 {
		t.Errorf("Cast() = %d, want 3", got.Cast())
	}
	if got.Total() != 4 {
		t.Errorf("Total() = %d, want 4", got.Total())
	}
}

func TestPasses(t *testing.T) {
	tests := []struct {
		name  string
		count Count
		rule  Rule
		want  bool
	}{
		{name: "simple majority passes", count: Count{Yes: 3, No: 2}, rule: RuleSimple, want: true},
		{name: "simple tie fails", count: Count{Yes: 2, No: 2}, rule: RuleSimple, want: false},
		{name: "simple ignores abstentions", count: Count{Yes: 2, No: 1, Abstain: 10}, rule: RuleSimple, want: true},
		{name: "simple all abstain fails", count: Count{Abstain: 5}, rule: RuleSimple, want: false},
		{name: "super passes above two thirds", count: Count{Yes: 7, No: 3}, rule: RuleSuper, want: true},
		{name: "super exact two thirds fails", count: Count{Yes: 2, No: 1}, rule: RuleSuper, want: false},
		{name: "abs-simple counts abstentions against", count: Count{Yes: 2, No: 1, Abstain: 2}, rule: RuleAbsSimple, want: false},
		{name: "abs-simple passes", count: Count{Yes: 3, No: 1, Abstain: 1}, rule: RuleAbsSimple, want: true},
		{name: "abs-super passes", count: Count{Yes: 9, No: 1, Abstain: 2}, rule: RuleAbsSuper, want: true},
		{name: "abs-super fails on abstentions", count: Count{Yes: 7, No: 0, Abstain: 4}, rule: RuleAbsSuper, want: false},
		{name: "unanimity passes", count: Count{Yes: 4}, rule: RuleUnanimity, want: true},
		{name: "unanimity blocked by abstention", count: Count{Yes: 4, Abstain: 1}, rule: RuleUnanimity, want: false},
		{name: "unanimity empty fails", count: Count{}, rule: RuleUnanimity, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.count.Passes(tt.rule); got != tt.want {
				t.Errorf("Passes(%s) = %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		in      string
		want    Rule
		wantErr bool
	}{
		{in: "", want: RuleSimple},
		{in: "simple", want: RuleSimple},
		{in: "super", want: RuleSuper},
		{in: "abs-simple", want: RuleAbsSimple},
		{in: "abs-super", want: RuleAbsSuper},
		{in: "unanimity", want: RuleUnanimity},
		{in: "plurality", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRule(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownRule) {
					t.Fatalf("ParseRule(%q) error = %v, want ErrUnknownRule", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRule(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRule(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
