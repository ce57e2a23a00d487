package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nvalette/threaddit/internal/models"
	"github.com/nvalette/threaddit/internal/voting"
)

type CommentHandler struct {
	db    *gorm.DB
	votes *voting.Reconciler
}

func NewCommentHandler(db *gorm.DB, votes *voting.Reconciler) *CommentHandler {
	return &CommentHandler{db: db, votes: votes}
}

// subredditOf resolves the subreddit a post belongs to, nil for profile
// posts.
func (h *CommentHandler) subredditOf(post *models.Post) *models.Subreddit {
	if post.SubredditID == nil {
		return nil
	}
	var subreddit models.Subreddit
	if err := h.db.First(&subreddit, *post.SubredditID).Error; err != nil {
		return nil
	}
	return &subreddit
}

// GetComments returns all comments for a post, newest first.
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var comments []models.Comment
	if err := h.db.Where("post_id = ?", post.ID).Order("created_at desc").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment creates a top-level comment on a post.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	h.createComment(c, nil)
}

// CreateReply creates a child comment under an existing comment.
func (h *CommentHandler) CreateReply(c *gin.Context) {
	var parent models.Comment
	if err := h.db.First(&parent, c.Param("commentId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	h.createComment(c, &parent)
}

func (h *CommentHandler) createComment(c *gin.Context, parent *models.Comment) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	username := c.GetString("username")

	var input struct {
		Content string `json:"content" binding:"required,max=10000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var postID int
	if parent != nil {
		postID = parent.PostID
	} else {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		postID = id
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if subreddit := h.subredditOf(&post); subreddit != nil {
		if subreddit.Banned {
			c.JSON(http.StatusForbidden, gin.H{"error": "Subreddit is banned"})
			return
		}
		if isBannedFrom(h.db, subreddit.ID, userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are banned from this subreddit"})
			return
		}
	}

	comment := models.Comment{
		Content:  input.Content,
		AuthorID: userID,
		Author:   username,
		PostID:   post.ID,
	}
	if parent != nil {
		comment.ParentCommentID = &parent.ID
	}

	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment_id": comment.ID})
}

// UpdateComment edits a comment's content (author or admin).
func (h *CommentHandler) UpdateComment(c *gin.Context) {
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

	var comment models.Comment
	if err := h.db.First(&comment, c.Param("commentId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.AuthorID != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own comments"})
		return
	}

	if err := h.db.Model(&comment).Update("content", input.Content).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment updated"})
}

// DeleteComment tombstones a comment. Votes on it keep their target and
// the score stays as it was.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, c.Param("commentId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, comment.PostID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var text string
	switch {
	case comment.AuthorID == userID:
		text = deletedByUser
	case post.SubredditID != nil && isModerator(h.db, *post.SubredditID, userID):
		text = removedByMods
	case isAdmin(c):
		text = removedByAdmins
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	err := h.db.Model(&comment).Updates(map[string]interface{}{
		"content": text,
		"author":  tombstoneAuthor,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// VoteComment casts, flips, or removes the caller's vote on a comment.
func (h *CommentHandler) VoteComment(c *gin.Context) {
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

	commentID, err := strconv.Atoi(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	var post models.Post
	if err := h.db.First(&post, comment.PostID).Error; err == nil {
		if subreddit := h.subredditOf(&post); subreddit != nil && subreddit.Banned {
			c.JSON(http.StatusForbidden, gin.H{"error": "Subreddit is banned"})
			return
		}
	}

	outcome, err := h.votes.Apply(c.Request.Context(), userID, voting.Target{Kind: voting.Comments, ID: commentID}, dir)
	if err != nil {
		respondVoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, voteResponse(outcome))
}
