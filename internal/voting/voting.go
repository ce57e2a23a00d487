// Package voting reconciles directional votes against content scores.
//
// A vote is a toggle: casting the same direction twice cancels the first
// vote, casting the opposite direction flips it in a single call. The
// reconciler owns the target's score field and the voter's vote rows; the
// two are always mutated together.
package voting

import (
	"context"
	"errors"
)

var (
	// ErrInvalidDirection rejects anything other than upvote/downvote
	// before any store call is made.
	ErrInvalidDirection = errors.New("voting: invalid vote direction")

	// ErrNotFound means the target or the voter does not exist. No
	// mutation has been applied when it is returned.
	ErrNotFound = errors.New("voting: target not found")

	// ErrConflict is reserved for lost-update detection on the vote row.
	// Nothing raises it yet.
	ErrConflict = errors.New("voting: conflicting vote update")
)

// Direction is a directional vote. The zero value means "no vote".
type Direction int

const (
	None Direction = 0
	Up   Direction = 1
	Down Direction = -1
)

// ParseDirection maps the wire values to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "upvote":
		return Up, nil
	case "downvote":
		return Down, nil
	default:
		return None, ErrInvalidDirection
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "upvote"
	case Down:
		return "downvote"
	default:
		return "none"
	}
}

// TargetKind selects which content table a vote applies to. The
// reconciliation algorithm is identical for both kinds.
type TargetKind string

const (
	Posts    TargetKind = "posts"
	Comments TargetKind = "comments"
)

// Target identifies a votable content item.
type Target struct {
	Kind TargetKind
	ID   int
}

// Outcome reports what a completed vote did. Delta is the relative score
// change; Previous and Current describe the voter's membership before and
// after.
type Outcome struct {
	Delta    int       `json:"delta"`
	Previous Direction `json:"previous"`
	Current  Direction `json:"current"`
}

// Store is the persistence surface the reconciler needs. Score changes go
// through ApplyScoreDelta as relative increments, never absolute writes,
// so concurrent voters on the same target cannot lose updates.
type Store interface {
	TargetExists(ctx context.Context, target Target) (bool, error)
	VoterExists(ctx context.Context, voterID int) (bool, error)

	// CurrentVote returns None when the voter has no vote on the target.
	CurrentVote(ctx context.Context, voterID int, target Target) (Direction, error)

	ApplyScoreDelta(ctx context.Context, target Target, delta int) error
	SaveVote(ctx context.Context, voterID int, target Target, dir Direction) error
	ClearVote(ctx context.Context, voterID int, target Target) error

	// Update runs fn inside a transaction when the store supports one;
	// otherwise fn runs directly and the score write comes first, so a
	// failed membership write can be retried against the membership check.
	Update(ctx context.Context, fn func(Store) error) error
}
