package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nvalette/threaddit/internal/models"
)

type SubredditHandler struct {
	db *gorm.DB
}

func NewSubredditHandler(db *gorm.DB) *SubredditHandler {
	return &SubredditHandler{db: db}
}

// CreateSubreddit creates a subreddit; the creator becomes its first
// moderator.
func (h *SubredditHandler) CreateSubreddit(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Name        string `json:"name" binding:"required,max=20"`
		Description string `json:"description" binding:"max=10000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Subreddit
	if err := h.db.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subreddit name is already in use"})
		return
	}

	subreddit := models.Subreddit{
		Name:        input.Name,
		Description: input.Description,
		CreatorID:   userID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subreddit).Error; err != nil {
			return err
		}
		return tx.Create(&models.SubredditModerator{SubredditID: subreddit.ID, UserID: userID}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subreddit"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": subreddit.ID, "name": subreddit.Name})
}

// GetSubreddit returns a subreddit's info and posts. A banned subreddit
// exposes only its banned state and ban date.
func (h *SubredditHandler) GetSubreddit(c *gin.Context) {
	var subreddit models.Subreddit
	if err := h.db.Where("name = ?", c.Param("name")).First(&subreddit).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subreddit not found"})
		return
	}

	if subreddit.Banned {
		c.JSON(http.StatusOK, gin.H{
			"info": gin.H{
				"banned":      true,
				"date_banned": subreddit.DateBanned,
			},
		})
		return
	}

	var subscriberCount int64
	h.db.Model(&models.Subscription{}).Where("subreddit_id = ?", subreddit.ID).Count(&subscriberCount)

	var moderators []models.SubredditModerator
	h.db.Where("subreddit_id = ?", subreddit.ID).Preload("User").Find(&moderators)
	modNames := []string{}
	for _, mod := range moderators {
		modNames = append(modNames, mod.User.Username)
	}

	var posts []models.Post
	h.db.Where("subreddit_id = ?", subreddit.ID).Order("created_at desc").Find(&posts)
	if posts == nil {
		posts = []models.Post{}
	}

	c.JSON(http.StatusOK, gin.H{
		"info": gin.H{
			"banned":       false,
			"description":  subreddit.Description,
			"creator_id":   subreddit.CreatorID,
			"date_created": subreddit.CreatedAt,
			"subscribers":  subscriberCount,
			"moderators":   modNames,
		},
		"posts": posts,
	})
}

// UpdateSubreddit updates description and moderators (moderators or
// admins) and the banned flag (admins only).
func (h *SubredditHandler) UpdateSubreddit(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Description     *string `json:"description"`
		AddModerator    string  `json:"add_moderator"`
		RemoveModerator string  `json:"remove_moderator"`
		Ban             *bool   `json:"ban"`
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

	admin := isAdmin(c)
	if !admin && !isModerator(h.db, subreddit.ID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Moderator access required"})
		return
	}
	if input.Ban != nil && !admin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can ban subreddits"})
		return
	}

	if input.Description != nil {
		h.db.Model(&subreddit).Update("description", *input.Description)
	}

	if input.AddModerator != "" {
		var user models.User
		if err := h.db.Where("username = ? AND deleted = ?", input.AddModerator, false).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.db.Create(&models.SubredditModerator{SubredditID: subreddit.ID, UserID: user.ID})
	}

	if input.RemoveModerator != "" {
		var user models.User
		if err := h.db.Where("username = ?", input.RemoveModerator).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.db.Where("subreddit_id = ? AND user_id = ?", subreddit.ID, user.ID).
			Delete(&models.SubredditModerator{})
	}

	if input.Ban != nil {
		updates := map[string]interface{}{"banned": *input.Ban}
		if *input.Ban {
			now := time.Now()
			updates["date_banned"] = &now
		} else {
			updates["date_banned"] = nil
		}
		h.db.Model(&subreddit).Updates(updates)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subreddit updated"})
}

// Subscribe toggles the caller's subscription to a subreddit.
func (h *SubredditHandler) Subscribe(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var subreddit models.Subreddit
	if err := h.db.Where("name = ? AND banned = ?", c.Param("name"), false).First(&subreddit).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subreddit not found"})
		return
	}

	var existing models.Subscription
	err := h.db.Where("subreddit_id = ? AND user_id = ?", subreddit.ID, userID).First(&existing).Error
	if err == nil {
		h.db.Delete(&existing)
		c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
		return
	}

	sub := models.Subscription{SubredditID: subreddit.ID, UserID: userID}
	if err := h.db.Create(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscribed"})
}

// BanUser bans a user from posting in a subreddit (moderators or admins).
func (h *SubredditHandler) BanUser(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Username string `json:"username" binding:"required"`
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

	if !isAdmin(c) && !isModerator(h.db, subreddit.ID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Moderator access required"})
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", input.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var existing models.SubredditBan
	err := h.db.Where("subreddit_id = ? AND user_id = ?", subreddit.ID, user.ID).First(&existing).Error
	if err == nil {
		h.db.Delete(&existing)
		c.JSON(http.StatusOK, gin.H{"message": "User unbanned"})
		return
	}

	h.db.Create(&models.SubredditBan{SubredditID: subreddit.ID, UserID: user.ID})
	c.JSON(http.StatusOK, gin.H{"message": "User banned"})
}
