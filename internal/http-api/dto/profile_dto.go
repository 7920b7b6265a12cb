package dto

// UpdateProfileRequest: payload for profile edits
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"max=100"`
	Bio      string `json:"bio" binding:"max=2000"`
	Skills   string `json:"skills" binding:"max=500"`
	Location string `json:"location" binding:"max=100"`
}
