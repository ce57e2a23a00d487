package voting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voteKey struct {
	voterID int
	target  Target
}

// fakeStore keeps scores and vote membership in memory and records the
// order of writes.
type fakeStore struct {
	scores map[Target]int
	voters map[int]bool
	votes  map[voteKey]Direction
	writes []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		scores: make(map[Target]int),
		voters: make(map[int]bool),
		votes:  make(map[voteKey]Direction),
	}
}

func (f *fakeStore) TargetExists(_ context.Context, target Target) (bool, error) {
	_, ok := f.scores[target]
	return ok, nil
}

func (f *fakeStore) VoterExists(_ context.Context, voterID int) (bool, error) {
	return f.voters[voterID], nil
}

func (f *fakeStore) CurrentVote(_ context.Context, voterID int, target Target) (Direction, error) {
	return f.votes[voteKey{voterID, target}], nil
}

func (f *fakeStore) ApplyScoreDelta(_ context.Context, target Target, delta int) error {
	if _, ok := f.scores[target]; !ok {
		return ErrNotFound
	}
	f.scores[target] += delta
	f.writes = append(f.writes, "score")
	return nil
}

func (f *fakeStore) SaveVote(_ context.Context, voterID int, target Target, dir Direction) error {
	f.votes[voteKey{voterID, target}] = dir
	f.writes = append(f.writes, "save")
	return nil
}

func (f *fakeStore) ClearVote(_ context.Context, voterID int, target Target) error {
	delete(f.votes, voteKey{voterID, target})
	f.writes = append(f.writes, "clear")
	return nil
}

func (f *fakeStore) Update(_ context.Context, fn func(Store) error) error {
	return fn(f)
}

const voter = 7

func setup(t *testing.T) (*Reconciler, *fakeStore, Target) {
	t.Helper()
	store := newFakeStore()
	store.voters[voter] = true
	target := Target{Kind: Posts, ID: 1}
	store.scores[target] = 0
	return NewReconciler(store), store, target
}

func TestParseDirection(t *testing.T) {
	dir, err := ParseDirection("upvote")
	require.NoError(t, err)
	assert.Equal(t, Up, dir)

	dir, err = ParseDirection("downvote")
	require.NoError(t, err)
	assert.Equal(t, Down, dir)

	for _, bad := range []string{"", "up", "UPVOTE", "sideways"} {
		_, err := ParseDirection(bad)
		assert.ErrorIs(t, err, ErrInvalidDirection, "input %q", bad)
	}
}

func TestApply_InvalidDirection(t *testing.T) {
	r, store, target := setup(t)

	_, err := r.Apply(context.Background(), voter, target, None)
	assert.ErrorIs(t, err, ErrInvalidDirection)
	assert.Empty(t, store.writes, "invalid input must not touch the store")
}

func TestApply_TargetNotFound(t *testing.T) {
	r, store, _ := setup(t)

	_, err := r.Apply(context.Background(), voter, Target{Kind: Posts, ID: 999}, Up)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.writes, "missing target must not cause any mutation")
}

func TestApply_VoterNotFound(t *testing.T) {
	r, store, target := setup(t)

	_, err := r.Apply(context.Background(), 999, target, Up)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.writes)
}

func TestApply_FirstUpvote(t *testing.T) {
	r, store, target := setup(t)

	outcome, err := r.Apply(context.Background(), voter, target, Up)
	require.NoError(t, err)

	assert.Equal(t, Outcome{Delta: 1, Previous: None, Current: Up}, outcome)
	assert.Equal(t, 1, store.scores[target])
	assert.Equal(t, Up, store.votes[voteKey{voter, target}])
}

func TestApply_FirstDownvote(t *testing.T) {
	r, store, target := setup(t)

	outcome, err := r.Apply(context.Background(), voter, target, Down)
	require.NoError(t, err)

	assert.Equal(t, Outcome{Delta: -1, Previous: None, Current: Down}, outcome)
	assert.Equal(t, -1, store.scores[target])
}

func TestApply_ToggleIdempotence(t *testing.T) {
	r, store, target := setup(t)
	ctx := context.Background()

	_, err := r.Apply(ctx, voter, target, Up)
	require.NoError(t, err)

	outcome, err := r.Apply(ctx, voter, target, Up)
	require.NoError(t, err)

	assert.Equal(t, Outcome{Delta: -1, Previous: Up, Current: None}, outcome)
	assert.Equal(t, 0, store.scores[target], "up then up again must net to zero")
	assert.NotContains(t, store.votes, voteKey{voter, target}, "membership must be empty after toggle off")
}

func TestApply_FlipUpToDown(t *testing.T) {
	r, store, target := setup(t)
	ctx := context.Background()

	_, err := r.Apply(ctx, voter, target, Up)
	require.NoError(t, err)

	outcome, err := r.Apply(ctx, voter, target, Down)
	require.NoError(t, err)

	assert.Equal(t, Outcome{Delta: -2, Previous: Up, Current: Down}, outcome)
	assert.Equal(t, -1, store.scores[target])
	assert.Equal(t, Down, store.votes[voteKey{voter, target}])
}

func TestApply_FlipDownToUp(t *testing.T) {
	r, store, target := setup(t)
	ctx := context.Background()

	_, err := r.Apply(ctx, voter, target, Down)
	require.NoError(t, err)

	outcome, err := r.Apply(ctx, voter, target, Up)
	require.NoError(t, err)

	assert.Equal(t, Outcome{Delta: 2, Previous: Down, Current: Up}, outcome)
	assert.Equal(t, 1, store.scores[target])
	assert.Equal(t, Up, store.votes[voteKey{voter, target}])
}

// The membership map holds one direction per (voter, target), so "in
// both sets" is unrepresentable; this pins that the stored direction
// always matches the reported outcome across a long toggle/flip run.
func TestApply_MembershipMatchesOutcome(t *testing.T) {
	r, store, target := setup(t)
	ctx := context.Background()

	sequence := []Direction{Up, Up, Down, Down, Up, Down, Up, Up, Down}
	for i, dir := range sequence {
		outcome, err := r.Apply(ctx, voter, target, dir)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, outcome.Current, store.votes[voteKey{voter, target}], "step %d", i)
	}
}

// Scenario: up (0→1), up (1→0), down (0→-1), up (-1→+1).
func TestApply_ToggleAndFlipScenario(t *testing.T) {
	r, store, target := setup(t)
	ctx := context.Background()

	steps := []struct {
		dir     Direction
		score   int
		current Direction
	}{
		{Up, 1, Up},
		{Up, 0, None},
		{Down, -1, Down},
		{Up, 1, Up},
	}

	for i, step := range steps {
		outcome, err := r.Apply(ctx, voter, target, step.dir)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.score, store.scores[target], "score after step %d", i)
		assert.Equal(t, step.current, outcome.Current, "membership after step %d", i)
	}
}

func TestApply_CommentsUseSameAlgorithm(t *testing.T) {
	r, store, _ := setup(t)
	ctx := context.Background()
	target := Target{Kind: Comments, ID: 42}
	store.scores[target] = 0

	_, err := r.Apply(ctx, voter, target, Down)
	require.NoError(t, err)
	outcome, err := r.Apply(ctx, voter, target, Up)
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Delta)
	assert.Equal(t, 1, store.scores[target])
}

func TestApply_ScoreWriteComesFirst(t *testing.T) {
	r, store, target := setup(t)

	_, err := r.Apply(context.Background(), voter, target, Up)
	require.NoError(t, err)

	require.Len(t, store.writes, 2)
	assert.Equal(t, []string{"score", "save"}, store.writes)
}

func TestApply_IndependentVotersAccumulate(t *testing.T) {
	r, store, target := setup(t)
	ctx := context.Background()
	store.voters[8] = true
	store.voters[9] = true

	for _, id := range []int{voter, 8, 9} {
		_, err := r.Apply(ctx, id, target, Up)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, store.scores[target])
}
