package domain

import "time"

// Notification types
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// Notification Model
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                 // Primary key
	RecipientID uint      `gorm:"not null;index" json:"recipientId"`    // Who sees it
	SenderID    uint      `gorm:"not null;index" json:"senderId"`       // Who caused it
	Type        string    `gorm:"size:20;not null" json:"type"`         // like, comment or follow
	PostID      *uint     `gorm:"index" json:"postId,omitempty"`        // Related post
	CommentID   *uint     `json:"commentId,omitempty"`                  // Related comment
	IsRead      bool      `gorm:"not null;default:false" json:"isRead"` // Read flag
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`               // Creation time
}
