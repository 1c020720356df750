package models

import (
	"time"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`           // Nullable for failed logins
	Action    string    `gorm:"size:50;not null" json:"action"` // e.g., "LOGIN", "CREATE_BOOKMARK", "DELETE_BOOKMARK"
	EntityID  string    `gorm:"size:50" json:"entity_id"`       // Bookmark short code or username
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	Country   string    `gorm:"size:64" json:"country"`
	UserAgent string    `gorm:"size:255" json:"user_agent"` // Browser and OS summary
	Timestamp time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"timestamp"`
}

// All lists every model managed by AutoMigrate.
func All() []interface{} {
	return []interface{}{&User{}, &Bookmark{}, &AuditLog{}}
}
