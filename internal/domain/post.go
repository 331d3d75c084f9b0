package domain

import "time"

// Post Model
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`         // Primary key
	UserID    uint      `gorm:"not null;index" json:"userId"` // Author
	Content   string    `gorm:"type:text" json:"content"`     // Optional when an image is present
	Image     string    `gorm:"size:512" json:"image"`        // Public image URL
	ImageID   string    `gorm:"size:255" json:"-"`            // Image provider reference
	CreatedAt time.Time `gorm:"index" json:"createdAt"`       // Creation time
	UpdatedAt time.Time `json:"-"`                            // Last edit

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"` // Author row
}

// Comment Model
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`              // Primary key
	PostID    uint      `gorm:"not null;index" json:"postId"`      // Commented post
	UserID    uint      `gorm:"not null;index" json:"userId"`      // Author
	Content   string    `gorm:"type:text;not null" json:"content"` // Text
	CreatedAt time.Time `gorm:"index" json:"createdAt"`            // Creation time

	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Like Model, at most one row per (post, user)
type Like struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"postId"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Follow Model, a directed edge follower -> followed
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"followerId"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"followedId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName keeps the historical table name
func (Follow) TableName() string { return "followers" }
