package dto

// ApplyRequest: payload for a volunteer applying to an opportunity
type ApplyRequest struct {
	OpportunityID string `json:"opportunity_id" binding:"required,uuid"`
	Message       string `json:"message" binding:"max=1000"`
}

// UpdateApplicationStatusRequest: organization decision on an application
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected completed"`
}
