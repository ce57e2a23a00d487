package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nvalette/threaddit/internal/models"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetUserProfile returns a user's public profile with their posts and
// comments.
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	var user models.User
	if err := h.db.Where("username = ? AND deleted = ?", c.Param("username"), false).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var posts []models.Post
	h.db.Where("author_id = ?", user.ID).Order("created_at desc").Find(&posts)
	if posts == nil {
		posts = []models.Post{}
	}

	var comments []models.Comment
	h.db.Where("author_id = ?", user.ID).Order("created_at desc").Find(&comments)
	if comments == nil {
		comments = []models.Comment{}
	}

	var followerCount, followingCount int64
	h.db.Model(&models.Follow{}).Where("following_id = ?", user.ID).Count(&followerCount)
	h.db.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&followingCount)

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"post_score":    user.PostScore,
			"comment_score": user.CommentScore,
			"admin":         user.Admin,
			"date_joined":   user.CreatedAt,
		},
		"posts":           posts,
		"comments":        comments,
		"follower_count":  followerCount,
		"following_count": followingCount,
	})
}

// CreateUserPost creates a profile post. Profile posts carry no
// subreddit and surface in feeds only through follow relationships.
func (h *UserHandler) CreateUserPost(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	username := c.GetString("username")

	if username != c.Param("username") {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only post to your own profile"})
		return
	}

	var input struct {
		Title   string `json:"title" binding:"required,max=300"`
		Content string `json:"content" binding:"max=10000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		Title:    input.Title,
		Content:  input.Content,
		AuthorID: userID,
		Author:   username,
		UserPost: true,
	}
	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post_id": post.ID})
}

// FollowUser follows a user
func (h *UserHandler) FollowUser(c *gin.Context) {
	followerID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var target models.User
	if err := h.db.Where("username = ? AND deleted = ?", c.Param("username"), false).First(&target).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if target.ID == followerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
		return
	}

	var existing models.Follow
	if err := h.db.Where("follower_id = ? AND following_id = ?", followerID, target.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already following this user"})
		return
	}

	follow := models.Follow{FollowerID: followerID, FollowingID: target.ID}
	if err := h.db.Create(&follow).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully followed user"})
}

// UnfollowUser unfollows a user
func (h *UserHandler) UnfollowUser(c *gin.Context) {
	followerID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var target models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&target).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.db.Where("follower_id = ? AND following_id = ?", followerID, target.ID).Delete(&models.Follow{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully unfollowed user"})
}

// GetUpvoted lists the caller's upvoted posts and comments. Self only.
func (h *UserHandler) GetUpvoted(c *gin.Context) {
	h.getVoted(c, 1)
}

// GetDownvoted lists the caller's downvoted posts and comments. Self only.
func (h *UserHandler) GetDownvoted(c *gin.Context) {
	h.getVoted(c, -1)
}

func (h *UserHandler) getVoted(c *gin.Context, voteType int) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	if c.GetString("username") != c.Param("username") {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own votes"})
		return
	}

	var posts []models.Post
	h.db.Joins("JOIN votes ON votes.post_id = posts.id").
		Where("votes.user_id = ? AND votes.vote_type = ?", userID, voteType).
		Order("posts.created_at desc").
		Find(&posts)
	if posts == nil {
		posts = []models.Post{}
	}

	var comments []models.Comment
	h.db.Joins("JOIN votes ON votes.comment_id = comments.id").
		Where("votes.user_id = ? AND votes.vote_type = ?", userID, voteType).
		Order("comments.created_at desc").
		Find(&comments)
	if comments == nil {
		comments = []models.Comment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":    posts,
		"comments": comments,
	})
}

// DeleteUser soft-deletes an account (self or admin): credentials are
// cleared, authored content is tombstoned, follows and subscriptions are
// removed. Scores on content the user voted on are left as they are.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.ID != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own account"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("author_id = ?", user.ID).
			Update("author", tombstoneAuthor).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("author_id = ?", user.ID).
			Update("author", tombstoneAuthor).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR following_id = ?", user.ID, user.ID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.SubredditModerator{}).Error; err != nil {
			return err
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"deleted":  true,
			"password": "",
			"email":    "",
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
