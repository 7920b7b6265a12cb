package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"servespot/internal/shared"
)

type User struct {
	ID        string      `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string      `gorm:"uniqueIndex;not null" json:"username"`
	Email     string      `gorm:"uniqueIndex;not null" json:"email"`
	Password  string      `gorm:"column:password_hash;not null" json:"-"` // Not shown in JSON
	Role      shared.Role `gorm:"not null;default:'volunteer'" json:"role"`
	FullName  string      `json:"full_name"`
	Bio       string      `json:"bio"`
	Skills    string      `json:"skills"`   // comma-separated skill tags
	Location  string      `json:"location"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	LastLogin *time.Time  `json:"last_login,omitempty"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}
