package models

import "time"

type Comment struct {
	ID              int    `gorm:"primaryKey" json:"id"`
	Content         string `gorm:"not null" json:"content"`
	AuthorID        int    `json:"author_id"`
	Author          string `gorm:"not null" json:"author"` // display name, tombstoned on delete
	User            User   `gorm:"foreignKey:AuthorID" json:"user"`
	PostID          int    `json:"post_id"`
	ParentCommentID *int   `json:"parent_comment_id,omitempty"`

	// Score is only ever written through the vote reconciler.
	Score int `gorm:"default:0" json:"score"`

	CreatedAt time.Time `json:"date_posted"`
	UpdatedAt time.Time `json:"date_edited"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}
