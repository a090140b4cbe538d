package chamber

import "errors"

// Construction and usage errors. All are reported synchronously at the
// point of violation and wrapped with context by the caller-facing
// methods, so errors.Is works on the returned values.
var (
	// ErrUnknownMember means an edge or party referenced a member ID
	// that was never added.
	ErrUnknownMember = errors.New("unknown member")

	// ErrDuplicateMember means a member ID was added twice.
	ErrDuplicateMember = errors.New("duplicate member")

	// ErrDuplicateEdge means a second edge was added between the same
	// ordered member pair. Weights are never merged implicitly.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrInvalidRange means a weight, discipline factor, or swing value
	// fell outside [0, 1].
	ErrInvalidRange = errors.New("value outside [0, 1]")

	// ErrEmptyParty means a party was declared with zero members.
	ErrEmptyParty = errors.New("party has no members")

	// ErrNoParty means a member was left without a party at freeze time.
	ErrNoParty = errors.New("member has no party")

	// ErrFrozen means topology mutation was attempted after Freeze.
	ErrFrozen = errors.New("chamber is frozen")
)
