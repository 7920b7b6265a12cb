package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"servespot/internal/shared"
)

type Notification struct {
	ID            string      `gorm:"primaryKey;type:uuid" json:"id"`
	RecipientID   string      `gorm:"type:uuid;not null;index:idx_recipient" json:"recipient_id"`
	RecipientRole shared.Role `gorm:"not null;index:idx_recipient" json:"recipient_role"`
	Title         string      `gorm:"not null" json:"title"`
	Message       string      `json:"message"`
	Type          string      `json:"type"` // open category tag: status, reminder, completion, email, system, ...
	Link          string      `json:"link,omitempty"`
	Read          bool        `gorm:"default:false" json:"is_read"`
	CreatedAt     time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}

func (Notification) TableName() string {
	return "notifications"
}
