package dto

import "time"

// CreateOpportunityRequest: payload for posting a new opportunity
type CreateOpportunityRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Capacity    int       `json:"capacity" binding:"min=0"`
}

// UpdateOpportunityRequest: payload for editing an opportunity
type UpdateOpportunityRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Capacity    int       `json:"capacity" binding:"min=0"`
}
