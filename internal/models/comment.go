package models

import (
	"time"

	"blogapi/internal/utils"

	"gorm.io/gorm"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	PostID    uint      `gorm:"not null;index" json:"blogPostId"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	ParentID  *uint     `gorm:"index" json:"parentCommentId"` // Nullable for top-level comments
	Parent    *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ContentHTML string `gorm:"-" json:"contentHtml"`
}

func (c *Comment) AfterFind(tx *gorm.DB) error {
	c.ContentHTML = utils.RenderMarkdown(c.Content)
	return nil
}

func (c *Comment) AfterSave(tx *gorm.DB) error {
	c.ContentHTML = utils.RenderMarkdown(c.Content)
	return nil
}
