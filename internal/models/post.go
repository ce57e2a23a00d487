package models

import "time"

// Post is either a subreddit post (SubredditID set) or a profile post
// (UserPost true). Exactly one of the two holds for any row.
type Post struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Content     string `json:"content"`
	AuthorID    int    `json:"author_id"`
	Author      string `gorm:"not null" json:"author"` // display name, tombstoned on delete
	User        User   `gorm:"foreignKey:AuthorID" json:"user"`
	UserPost    bool   `gorm:"default:false" json:"user_post"`
	SubredditID *int   `json:"subreddit_id,omitempty"`
	Subreddit   string `json:"subreddit,omitempty"`

	// Score is only ever written through the vote reconciler's relative
	// increments. Nothing else may overwrite it.
	Score int `gorm:"default:0" json:"score"`

	CreatedAt time.Time `json:"date_posted"`
	UpdatedAt time.Time `json:"date_edited"`
}

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
