package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nvalette/threaddit/internal/models"
	"github.com/nvalette/threaddit/internal/voting"
)

// Moderation tombstones. The author field is always replaced with a
// distinct string, never cleared, so removed content stays attributable
// as removed.
const (
	tombstoneAuthor = "[Deleted]"
	deletedByUser   = "[Deleted by user]"
	removedByMods   = "[Removed by mods]"
	removedByAdmins = "[Removed by admins]"
)

type PostHandler struct {
	db    *gorm.DB
	votes *voting.Reconciler
}

func NewPostHandler(db *gorm.DB, votes *voting.Reconciler) *PostHandler {
	return &PostHandler{db: db, votes: votes}
}

// CreateSubredditPost creates a post inside a subreddit. Banned
// subreddits and sub-banned users are rejected.
func (h *PostHandler) CreateSubredditPost(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	username := c.GetString("username")

	var input struct {
		Title   string `json:"title" binding:"required,max=300"`
		Content string `json:"content" binding:"max=10000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var subreddit models.Subreddit
	if err := h.db.Where("name = ?", c.Param("name")).First(&subreddit).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subreddit not found"})
		return
	}
	if subreddit.Banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Subreddit is banned"})
		return
	}
	if isBannedFrom(h.db, subreddit.ID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are banned from this subreddit"})
		return
	}

	post := models.Post{
		Title:       input.Title,
		Content:     input.Content,
		AuthorID:    userID,
		Author:      username,
		SubredditID: &subreddit.ID,
		Subreddit:   subreddit.Name,
	}
	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post_id": post.ID})
}

// GetPost returns a single post with its comments.
func (h *PostHandler) GetPost(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.SubredditID != nil {
		var subreddit models.Subreddit
		if err := h.db.First(&subreddit, *post.SubredditID).Error; err == nil && subreddit.Banned {
			c.JSON(http.StatusOK, gin.H{
				"info": gin.H{"banned": true, "date_banned": subreddit.DateBanned},
			})
			return
		}
	}

	var comments []models.Comment
	h.db.Where("post_id = ?", post.ID).Order("created_at desc").Find(&comments)
	if comments == nil {
		comments = []models.Comment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"post":     post,
		"comments": comments,
	})
}

// UpdatePost edits a post's content (author or admin).
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Content string `json:"content" binding:"required,max=10000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.AuthorID != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own posts"})
		return
	}

	if err := h.db.Model(&post).Update("content", input.Content).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post updated"})
}

// DeletePost tombstones a post instead of removing the row, so existing
// votes and comments keep their target. The score is left untouched.
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var text string
	switch {
	case post.AuthorID == userID:
		text = deletedByUser
	case post.SubredditID != nil && isModerator(h.db, *post.SubredditID, userID):
		text = removedByMods
	case isAdmin(c):
		text = removedByAdmins
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	err := h.db.Model(&post).Updates(map[string]interface{}{
		"title":   text,
		"content": text,
		"author":  tombstoneAuthor,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// VotePost casts, flips, or removes the caller's vote on a post. Voting
// on posts in banned subreddits is blocked regardless of direction.
func (h *PostHandler) VotePost(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Vote string `json:"vote" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote must be upvote or downvote"})
		return
	}

	dir, err := voting.ParseDirection(input.Vote)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote must be upvote or downvote"})
		return
	}

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.SubredditID != nil {
		var subreddit models.Subreddit
		if err := h.db.First(&subreddit, *post.SubredditID).Error; err == nil && subreddit.Banned {
			c.JSON(http.StatusForbidden, gin.H{"error": "Subreddit is banned"})
			return
		}
	}

	outcome, err := h.votes.Apply(c.Request.Context(), userID, voting.Target{Kind: voting.Posts, ID: postID}, dir)
	if err != nil {
		respondVoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, voteResponse(outcome))
}

func respondVoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, voting.ErrInvalidDirection):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote must be upvote or downvote"})
	case errors.Is(err, voting.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, voting.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Vote conflict, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to vote"})
	}
}

func voteResponse(outcome voting.Outcome) gin.H {
	message := "Vote recorded"
	switch {
	case outcome.Current == voting.None:
		message = "Vote removed"
	case outcome.Previous != voting.None:
		message = "Vote updated"
	}
	return gin.H{
		"message":     message,
		"score_delta": outcome.Delta,
		"vote":        outcome.Current.String(),
	}
}
