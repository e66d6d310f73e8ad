package models

import (
	"time"

	"blogapi/internal/utils"

	"gorm.io/gorm"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Image     string    `json:"imageUrl,omitempty"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	Comments  []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 非数据库字段，查询后由 markdown 渲染填充
	ContentHTML string `gorm:"-" json:"contentHtml"`
}

func (p *Post) AfterFind(tx *gorm.DB) error {
	p.ContentHTML = utils.RenderMarkdown(p.Content)
	return nil
}

func (p *Post) AfterSave(tx *gorm.DB) error {
	p.ContentHTML = utils.RenderMarkdown(p.Content)
	return nil
}
