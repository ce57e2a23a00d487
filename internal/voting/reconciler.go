package voting

import (
	"context"
	"fmt"
)

// Reconciler applies directional votes with toggle semantics.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Apply casts dir on target for voterID and returns what changed.
//
// Same direction as the existing vote removes it (delta -1/+1), the
// opposite direction flips it (delta +2/-2), no existing vote creates one
// (delta +1/-1). Target and voter existence are checked before anything
// is written; on error nothing has been mutated.
func (r *Reconciler) Apply(ctx context.Context, voterID int, target Target, dir Direction) (Outcome, error) {
	if dir != Up && dir != Down {
		return Outcome{}, ErrInvalidDirection
	}

	exists, err := r.store.TargetExists(ctx, target)
	if err != nil {
		return Outcome{}, fmt.Errorf("checking target: %w", err)
	}
	if !exists {
		return Outcome{}, ErrNotFound
	}

	exists, err = r.store.VoterExists(ctx, voterID)
	if err != nil {
		return Outcome{}, fmt.Errorf("checking voter: %w", err)
	}
	if !exists {
		return Outcome{}, ErrNotFound
	}

	prev, err := r.store.CurrentVote(ctx, voterID, target)
	if err != nil {
		return Outcome{}, fmt.Errorf("reading current vote: %w", err)
	}

	outcome := Outcome{Previous: prev}
	switch prev {
	case dir: // toggle off
		outcome.Delta = -int(dir)
		outcome.Current = None
	case None: // first vote
		outcome.Delta = int(dir)
		outcome.Current = dir
	default: // flip
		outcome.Delta = 2 * int(dir)
		outcome.Current = dir
	}

	err = r.store.Update(ctx, func(s Store) error {
		if err := s.ApplyScoreDelta(ctx, target, outcome.Delta); err != nil {
			return fmt.Errorf("applying score delta: %w", err)
		}
		if outcome.Current == None {
			if err := s.ClearVote(ctx, voterID, target); err != nil {
				return fmt.Errorf("clearing vote: %w", err)
			}
			return nil
		}
		if err := s.SaveVote(ctx, voterID, target, outcome.Current); err != nil {
			return fmt.Errorf("saving vote: %w", err)
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}
