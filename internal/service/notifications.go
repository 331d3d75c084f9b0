package service

import (
	"context" // Request-scoped queries
	"errors"  // Error classification
	"time"    // Timestamps

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Association control

	"social_network/internal/domain" // Models and error classes
)

// NotificationView is one entry of a user's notification feed
type NotificationView struct {
	ID          uint              `json:"id"`
	Type        string            `json:"type"`
	IsRead      bool              `json:"isRead"`
	CreatedAt   time.Time         `json:"createdAt"`
	PostID      *uint             `json:"postId,omitempty"`
	CommentID   *uint             `json:"commentId,omitempty"`
	Sender      domain.PublicUser `json:"sender"`
	PostContent string            `json:"postContent,omitempty"`
	PostImage   string            `json:"postImage,omitempty"`
}

// NotificationFeed is the response of List
type NotificationFeed struct {
	Notifications []NotificationView `json:"notifications"`
	UnreadCount   int64              `json:"unreadCount"`
}

// CommentPreview is the comment a comment notification points at
type CommentPreview struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationService records and reads notifications
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a NotificationService
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// notify inserts a notification inside the caller's transaction.
// Users never notify themselves.
func (s *NotificationService) notify(tx *gorm.DB, recipientID, senderID uint, kind string, postID, commentID *uint) error {
	if recipientID == senderID {
		return nil
	}
	n := domain.Notification{
		RecipientID: recipientID, // Owner of the post or followed user
		SenderID:    senderID,    // Acting user
		Type:        kind,
		PostID:      postID,
		CommentID:   commentID,
	}
	return tx.Omit(clause.Associations).Create(&n).Error
}

// List returns the newest notifications of userID and how many are unread
func (s *NotificationService) List(ctx context.Context, userID uint, limit int) (NotificationFeed, error) {
	db := s.db.WithContext(ctx)
	var rows []domain.Notification
	if err := db.Where("recipient_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Find(&rows).Error; err != nil {
		return NotificationFeed{}, err
	}

	var unread int64
	if err := db.Model(&domain.Notification{}).Where("recipient_id = ? AND is_read = ?", userID, false).Count(&unread).Error; err != nil {
		return NotificationFeed{}, err
	}

	senderIDs := make([]uint, 0, len(rows))
	var postIDs []uint
	for _, n := range rows {
		senderIDs = append(senderIDs, n.SenderID)
		if n.PostID != nil {
			postIDs = append(postIDs, *n.PostID)
		}
	}
	senders, err := loadAuthors(ctx, s.db, senderIDs)
	if err != nil {
		return NotificationFeed{}, err
	}
	posts := map[uint]domain.Post{}
	if len(postIDs) > 0 {
		var found []domain.Post
		if err := db.Select("id", "content", "image").Where("id IN ?", unique(postIDs)).Find(&found).Error; err != nil {
			return NotificationFeed{}, err
		}
		for _, p := range found {
			posts[p.ID] = p
		}
	}

	out := make([]NotificationView, len(rows))
	for i, n := range rows {
		v := NotificationView{
			ID:        n.ID,
			Type:      n.Type,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
			PostID:    n.PostID,
			CommentID: n.CommentID,
			Sender:    senders[n.SenderID],
		}
		if n.PostID != nil {
			if p, ok := posts[*n.PostID]; ok {
				v.PostContent = p.Content
				v.PostImage = p.Image
			}
		}
		out[i] = v
	}
	return NotificationFeed{Notifications: out, UnreadCount: unread}, nil
}

func (s *NotificationService) find(ctx context.Context, userID, notificationID uint) (domain.Notification, error) {
	var n domain.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", notificationID, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Someone else's notification looks the same as a missing one
		return n, domain.NotFound("notification not found")
	}
	return n, err
}

// MarkRead flags one notification of userID as read. Repeating it is harmless.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	n, err := s.find(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return s.db.WithContext(ctx).Model(&n).Update("is_read", true).Error
}

// MarkAllRead flags every notification of userID as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// Comment returns the comment behind a comment notification of userID
func (s *NotificationService) Comment(ctx context.Context, userID, notificationID uint) (CommentPreview, error) {
	n, err := s.find(ctx, userID, notificationID)
	if err != nil {
		return CommentPreview{}, err
	}
	if n.Type != domain.NotificationComment || n.CommentID == nil {
		return CommentPreview{}, domain.NotFound("comment not found")
	}
	var c domain.Comment
	err = s.db.WithContext(ctx).First(&c, *n.CommentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CommentPreview{}, domain.NotFound("comment not found")
	}
	if err != nil {
		return CommentPreview{}, err
	}
	return CommentPreview{ID: c.ID, Content: c.Content, CreatedAt: c.CreatedAt}, nil
}
