package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:100;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"` // Hash
	Avatar    string    `json:"avatar,omitempty"` // public path under /uploads
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}
