package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeCommentPost  NotificationType = "comment_post"
	NotificationTypeReplyComment NotificationType = "reply_comment"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"userId"` // Receiver
	User      *User            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ActorID   *uint            `gorm:"index" json:"actorId,omitempty"` // Sender
	PostID    *uint            `json:"postId,omitempty"`
	CommentID *uint            `json:"commentId,omitempty"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	IsRead    bool             `gorm:"default:false;index" json:"isRead"`
	CreatedAt time.Time        `gorm:"index" json:"createdAt"`
}
