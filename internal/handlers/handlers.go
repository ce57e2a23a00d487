package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/nvalette/threaddit/internal/feed"
	"github.com/nvalette/threaddit/internal/models"
	"github.com/nvalette/threaddit/internal/voting"
)

// Handler combines all handler types
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Subreddit *SubredditHandler
	Post      *PostHandler
	Comment   *CommentHandler
	Feed      *FeedHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, clock clockwork.Clock) *Handler {
	votes := voting.NewReconciler(voting.NewGormStore(db))
	ranker := feed.NewRanker(clock)

	return &Handler{
		Auth:      NewAuthHandler(db),
		User:      NewUserHandler(db),
		Subreddit: NewSubredditHandler(db),
		Post:      NewPostHandler(db, votes),
		Comment:   NewCommentHandler(db, votes),
		Feed:      NewFeedHandler(db, ranker),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func isAdmin(c *gin.Context) bool {
	raw, exists := c.Get("is_admin")
	if !exists {
		return false
	}
	admin, ok := raw.(bool)
	return ok && admin
}

func isModerator(db *gorm.DB, subredditID, userID int) bool {
	var count int64
	db.Model(&models.SubredditModerator{}).
		Where("subreddit_id = ? AND user_id = ?", subredditID, userID).
		Count(&count)
	return count > 0
}

func isBannedFrom(db *gorm.DB, subredditID, userID int) bool {
	var count int64
	db.Model(&models.SubredditBan{}).
		Where("subreddit_id = ? AND user_id = ?", subredditID, userID).
		Count(&count)
	return count > 0
}
