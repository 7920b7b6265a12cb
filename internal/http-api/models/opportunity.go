package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OpportunityStatus string

const (
	OpportunityOpen   OpportunityStatus = "open"
	OpportunityClosed OpportunityStatus = "closed"
)

type Opportunity struct {
	ID             string            `gorm:"primaryKey;type:uuid" json:"id"`
	OrganizationID string            `gorm:"type:uuid;not null;index" json:"organization_id"`
	Title          string            `gorm:"not null" json:"title"`
	Description    string            `json:"description"`
	Category       string            `gorm:"index" json:"category"`
	Location       string            `json:"location"`
	Date           time.Time         `json:"date"`
	Capacity       int               `gorm:"default:0" json:"capacity"` // 0 = unlimited
	Status         OpportunityStatus `gorm:"default:'open'" json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	Organization *User `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (o *Opportunity) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}

func (Opportunity) TableName() string {
	return "opportunities"
}
