package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nvalette/threaddit/internal/feed"
	"github.com/nvalette/threaddit/internal/models"
)

type FeedHandler struct {
	db     *gorm.DB
	ranker *feed.Ranker
}

func NewFeedHandler(db *gorm.DB, ranker *feed.Ranker) *FeedHandler {
	return &FeedHandler{db: db, ranker: ranker}
}

func feedParams(c *gin.Context) (feed.Mode, feed.Window, int) {
	mode := feed.ParseMode(c.Query("sort"))
	window := feed.ParseWindow(c.Query("t"))
	start, err := strconv.Atoi(c.DefaultQuery("start", "0"))
	if err != nil || start < 0 {
		start = 0
	}
	return mode, window, start
}

// GetFrontPage returns the global feed: all subreddit posts, profile
// posts excluded, from subreddits that are not banned.
func (h *FeedHandler) GetFrontPage(c *gin.Context) {
	mode, window, start := feedParams(c)

	var candidates []models.Post
	err := h.db.
		Joins("JOIN subreddits ON subreddits.id = posts.subreddit_id").
		Where("posts.user_post = ? AND subreddits.banned = ?", false, false).
		Find(&candidates).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	posts := feed.Page(h.ranker.Rank(candidates, mode, window), start)

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"sort":  string(mode),
		"start": start,
	})
}

// GetHomeFeed returns the personalized feed: profile posts of followed
// users plus posts from subscribed subreddits. Profile posts are only
// ever reachable through a follow, never globally.
func (h *FeedHandler) GetHomeFeed(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	mode, window, start := feedParams(c)

	var followedIDs []int
	h.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &followedIDs)

	var subredditIDs []int
	h.db.Model(&models.Subscription{}).Where("user_id = ?", userID).Pluck("subreddit_id", &subredditIDs)

	var candidates []models.Post
	q := h.db
	switch {
	case len(followedIDs) > 0 && len(subredditIDs) > 0:
		q = q.Where("(user_post = ? AND author_id IN ?) OR subreddit_id IN ?", true, followedIDs, subredditIDs)
	case len(followedIDs) > 0:
		q = q.Where("user_post = ? AND author_id IN ?", true, followedIDs)
	case len(subredditIDs) > 0:
		q = q.Where("subreddit_id IN ?", subredditIDs)
	default:
		c.JSON(http.StatusOK, gin.H{"posts": []models.Post{}, "sort": string(mode), "start": start})
		return
	}
	if err := q.Find(&candidates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	posts := feed.Page(h.ranker.Rank(candidates, mode, window), start)

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"sort":  string(mode),
		"start": start,
	})
}
