package models

import (
	"time"
)

// ShortCodeLength is the fixed length of Bookmark.ShortURL.
const ShortCodeLength = 3

type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	URL       string    `gorm:"not null;type:text;uniqueIndex:idx_bookmarks_url" json:"url"`
	Body      string    `gorm:"type:text" json:"body"`
	ShortURL  string    `gorm:"not null;size:3;uniqueIndex:idx_bookmarks_short_url" json:"short_url"`
	Visits    int       `gorm:"not null;default:0" json:"visits"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name shared with the SQL migrations.
func (Bookmark) TableName() string {
	return "bookmarks"
}

// BookmarkStat is the per-bookmark row returned by the stats endpoint.
type BookmarkStat struct {
	ID       uint   `json:"id"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url"`
	Visits   int    `json:"visits"`
}
