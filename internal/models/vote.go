package models

import "time"

// Vote is one user's vote on a single target. Exactly one of PostID or
// CommentID is set. A single row per (user, target) replaces parallel
// upvoted/downvoted lists: a target sitting in "both sets" at once is
// unrepresentable, the unique indexes enforce it.
type Vote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"uniqueIndex:idx_vote_post;uniqueIndex:idx_vote_comment" json:"user_id"`
	PostID    *int      `gorm:"uniqueIndex:idx_vote_post" json:"post_id,omitempty"`
	CommentID *int      `gorm:"uniqueIndex:idx_vote_comment" json:"comment_id,omitempty"`
	VoteType  int       `json:"vote_type"` // +1 or -1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
