package models

import "time"

type Subreddit struct {
	ID          int        `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"unique;not null" json:"name"`
	Description string     `json:"description"`
	CreatorID   int        `json:"creator_id"`
	Creator     User       `gorm:"foreignKey:CreatorID" json:"creator"`
	Banned      bool       `gorm:"default:false" json:"banned"`
	DateBanned  *time.Time `json:"date_banned,omitempty"`
	CreatedAt   time.Time  `json:"date_created"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SubredditModerator links a user to a subreddit they moderate.
type SubredditModerator struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	SubredditID int       `gorm:"uniqueIndex:idx_sub_mod" json:"subreddit_id"`
	UserID      int       `gorm:"uniqueIndex:idx_sub_mod" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubredditBan marks a user as banned from posting in a subreddit.
type SubredditBan struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	SubredditID int       `gorm:"uniqueIndex:idx_sub_ban" json:"subreddit_id"`
	UserID      int       `gorm:"uniqueIndex:idx_sub_ban" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Subscription links a user to a subreddit they subscribe to.
type Subscription struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	SubredditID int       `gorm:"uniqueIndex:idx_subscription" json:"subreddit_id"`
	UserID      int       `gorm:"uniqueIndex:idx_subscription" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}
