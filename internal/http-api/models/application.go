package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCompleted ApplicationStatus = "completed"
)

type Application struct {
	ID            string            `gorm:"primaryKey;type:uuid" json:"id"`
	OpportunityID string            `gorm:"type:uuid;not null;index" json:"opportunity_id"`
	VolunteerID   string            `gorm:"type:uuid;not null;index" json:"volunteer_id"`
	Message       string            `json:"message"`
	Status        ApplicationStatus `gorm:"default:'pending'" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	Opportunity *Opportunity `gorm:"foreignKey:OpportunityID" json:"opportunity,omitempty"`
	Volunteer   *User        `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

func (Application) TableName() string {
	return "applications"
}
