package service

import (
	"context" // Request-scoped queries
	"errors"  // Error classification

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Association control

	"social_network/internal/domain" // Models and error classes
	"social_network/internal/utils"  // Pagination
)

// CommentPage is a page of comments on one post
type CommentPage struct {
	Comments   []CommentView    `json:"comments"`
	Pagination utils.Pagination `json:"pagination"`
}

// LikePost records that userID likes postID and notifies the post owner
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return domain.Conflict("post already liked")
		}
		like := domain.Like{PostID: postID, UserID: userID}
		if err := tx.Omit(clause.Associations).Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.Conflict("post already liked") // Concurrent like from the same user
			}
			return err
		}
		return s.notifications.notify(tx, post.UserID, userID, domain.NotificationLike, &post.ID, nil)
	})
	if err != nil {
		return err
	}
	s.cache.forgetProfiles(ctx, post.UserID)
	return nil
}

// UnlikePost removes the like of userID on postID
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&domain.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Invalid("post is not liked")
	}
	s.cache.forgetProfiles(ctx, post.UserID)
	return nil
}

// AddComment stores a comment and notifies the post owner
func (s *PostService) AddComment(ctx context.Context, userID, postID uint, content string) (CommentView, error) {
	if blank(content) {
		return CommentView{}, domain.Invalid("comment content is required")
	}
	post, err := findPost(ctx, s.db, postID)
	if err != nil {
		return CommentView{}, err
	}
	comment := domain.Comment{PostID: postID, UserID: userID, Content: content}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
			return err
		}
		return s.notifications.notify(tx, post.UserID, userID, domain.NotificationComment, &post.ID, &comment.ID)
	})
	if err != nil {
		return CommentView{}, err
	}
	s.cache.forgetProfiles(ctx, userID)

	authors, err := loadAuthors(ctx, s.db, []uint{userID})
	if err != nil {
		return CommentView{}, err
	}
	return commentView(comment, authors), nil
}

// ListComments pages through the comments of a post, newest first
func (s *PostService) ListComments(ctx context.Context, postID uint, p utils.Page) (CommentPage, error) {
	if _, err := findPost(ctx, s.db, postID); err != nil {
		return CommentPage{}, err
	}
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&domain.Comment{}).Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return CommentPage{}, err
	}
	var rows []domain.Comment
	if err := db.Where("post_id = ?", postID).
		Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return CommentPage{}, err
	}
	userIDs := make([]uint, len(rows))
	for i, c := range rows {
		userIDs[i] = c.UserID
	}
	authors, err := loadAuthors(ctx, s.db, userIDs)
	if err != nil {
		return CommentPage{}, err
	}
	out := make([]CommentView, len(rows))
	for i, c := range rows {
		out[i] = commentView(c, authors)
	}
	return CommentPage{Comments: out, Pagination: utils.NewPagination(p, total)}, nil
}

// DeleteComment removes a comment. Its author and the owner of the post may do so.
func (s *PostService) DeleteComment(ctx context.Context, userID, postID, commentID uint) error {
	comment, err := findComment(ctx, s.db, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return domain.NotFound("comment not found")
	}
	if comment.UserID != userID {
		post, err := findPost(ctx, s.db, comment.PostID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return domain.Forbidden("you can only delete your own comments")
		}
	}
	return s.removeComment(ctx, comment)
}

// removeComment deletes a comment and the notification that announced it
func (s *PostService) removeComment(ctx context.Context, comment domain.Comment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&domain.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Comment{}, comment.ID).Error
	})
	if err != nil {
		return err
	}
	s.cache.forgetProfiles(ctx, comment.UserID)
	return nil
}

func findComment(ctx context.Context, db *gorm.DB, id uint) (domain.Comment, error) {
	var c domain.Comment
	err := db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, domain.NotFound("comment not found")
	}
	return c, err
}
