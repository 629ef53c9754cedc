package models

import "time"

// AuditLog records important operations for auditing.
// Path and action are stored AES encrypted; only the method is kept in clear text.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	PathEnc   string    `gorm:"size:1024" json:"-"`
	Method    string    `gorm:"size:16" json:"method"`
	ActionEnc string    `gorm:"size:4096" json:"-"`
	Status    int       `json:"status"`
	IP        string    `gorm:"column:ip;size:64" json:"ip"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
