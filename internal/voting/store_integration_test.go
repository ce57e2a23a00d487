package voting

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nvalette/threaddit/internal/database"
	"github.com/nvalette/threaddit/internal/models"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	flag.Parse()

	// Skip container setup if running in short mode
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	postgresContainer, err := tcpostgres.Run(ctx,
		"postgres:18-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to terminate postgres container: %v\n", err)
		}
	}()

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
		os.Exit(1)
	}

	testDB, err = gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to test database: %v\n", err)
		os.Exit(1)
	}

	if err := database.Migrate(testDB); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to migrate test database: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupStore truncates the tables the tests touch and seeds a voter and
// a post to vote on.
func setupStore(t *testing.T) (*Reconciler, *models.User, *models.Post) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	require.NoError(t, testDB.Exec("TRUNCATE users, posts, comments, votes CASCADE").Error)

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "hashed"}
	require.NoError(t, testDB.Create(user).Error)

	post := &models.Post{Title: "first", Author: "alice", AuthorID: user.ID, UserPost: true}
	require.NoError(t, testDB.Create(post).Error)

	return NewReconciler(NewGormStore(testDB)), user, post
}

func postScore(t *testing.T, id int) int {
	t.Helper()
	var p models.Post
	require.NoError(t, testDB.First(&p, id).Error)
	return p.Score
}

func voteRows(t *testing.T, userID, postID int) []models.Vote {
	t.Helper()
	var votes []models.Vote
	require.NoError(t, testDB.Where("user_id = ? AND post_id = ?", userID, postID).Find(&votes).Error)
	return votes
}

func TestGormStore_FirstUpvotePersists(t *testing.T) {
	r, user, post := setupStore(t)
	ctx := context.Background()
	target := Target{Kind: Posts, ID: post.ID}

	outcome, err := r.Apply(ctx, user.ID, target, Up)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Delta: 1, Previous: None, Current: Up}, outcome)

	assert.Equal(t, 1, postScore(t, post.ID))

	votes := voteRows(t, user.ID, post.ID)
	require.Len(t, votes, 1)
	assert.Equal(t, int(Up), votes[0].VoteType)
}

func TestGormStore_ToggleRemovesRow(t *testing.T) {
	r, user, post := setupStore(t)
	ctx := context.Background()
	target := Target{Kind: Posts, ID: post.ID}

	_, err := r.Apply(ctx, user.ID, target, Up)
	require.NoError(t, err)

	outcome, err := r.Apply(ctx, user.ID, target, Up)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Delta: -1, Previous: Up, Current: None}, outcome)

	assert.Equal(t, 0, postScore(t, post.ID))
	assert.Empty(t, voteRows(t, user.ID, post.ID))
}

func TestGormStore_FlipUpdatesRowInPlace(t *testing.T) {
	r, user, post := setupStore(t)
	ctx := context.Background()
	target := Target{Kind: Posts, ID: post.ID}

	_, err := r.Apply(ctx, user.ID, target, Down)
	require.NoError(t, err)

	outcome, err := r.Apply(ctx, user.ID, target, Up)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Delta)

	assert.Equal(t, 1, postScore(t, post.ID))

	votes := voteRows(t, user.ID, post.ID)
	require.Len(t, votes, 1, "flip must replace the row, never add a second")
	assert.Equal(t, int(Up), votes[0].VoteType)
}

func TestGormStore_ScoreIncrementIsRelative(t *testing.T) {
	r, user, post := setupStore(t)
	ctx := context.Background()
	target := Target{Kind: Posts, ID: post.ID}

	// Another writer bumps the score between reads; the increment must
	// land on top of it rather than overwrite it.
	bob := &models.User{Username: "bob", Email: "bob@example.com", Password: "hashed"}
	require.NoError(t, testDB.Create(bob).Error)
	_, err := r.Apply(ctx, bob.ID, target, Up)
	require.NoError(t, err)

	_, err = r.Apply(ctx, user.ID, target, Up)
	require.NoError(t, err)

	assert.Equal(t, 2, postScore(t, post.ID))
}

func TestGormStore_CommentVotes(t *testing.T) {
	r, user, post := setupStore(t)
	ctx := context.Background()

	comment := &models.Comment{Content: "nice", Author: "alice", AuthorID: user.ID, PostID: post.ID}
	require.NoError(t, testDB.Create(comment).Error)
	target := Target{Kind: Comments, ID: comment.ID}

	_, err := r.Apply(ctx, user.ID, target, Down)
	require.NoError(t, err)

	var got models.Comment
	require.NoError(t, testDB.First(&got, comment.ID).Error)
	assert.Equal(t, -1, got.Score)

	var votes []models.Vote
	require.NoError(t, testDB.Where("user_id = ? AND comment_id = ?", user.ID, comment.ID).Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Nil(t, votes[0].PostID, "comment votes must not reference a post")
}

func TestGormStore_MissingTarget(t *testing.T) {
	r, user, _ := setupStore(t)

	_, err := r.Apply(context.Background(), user.ID, Target{Kind: Posts, ID: 999999}, Up)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_DeletedVoterRejected(t *testing.T) {
	r, user, post := setupStore(t)

	require.NoError(t, testDB.Model(user).Update("deleted", true).Error)

	_, err := r.Apply(context.Background(), user.ID, Target{Kind: Posts, ID: post.ID}, Up)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, postScore(t, post.ID))
}
