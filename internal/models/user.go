package models

import (
	"time"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"unique;not null;size:80" json:"username"`
	Email        string     `gorm:"unique;not null;size:120" json:"email"`
	PasswordHash string     `gorm:"column:password;not null;size:255" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"` // Maintained by gorm; no flow updates a user after creation
	Bookmarks    []Bookmark `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"bookmarks,omitempty"`
}
