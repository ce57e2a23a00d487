package models

import "time"

type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash

	PostScore    int  `gorm:"default:0" json:"post_score"`
	CommentScore int  `gorm:"default:0" json:"comment_score"`
	Admin        bool `gorm:"default:false" json:"admin"`
	Deleted      bool `gorm:"default:false" json:"deleted"`

	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message"`
}
