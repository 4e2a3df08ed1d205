package dto

import "encoding/json"

// UpsertConfigRequest creates or replaces a system configuration entry
type UpsertConfigRequest struct {
	Value       json.RawMessage `json:"value" binding:"required" swaggertype:"object"`
	Description string          `json:"description" binding:"max=500"`
	IsPublic    bool            `json:"isPublic"`
	Schema      json.RawMessage `json:"schema" swaggertype:"object"`
}

// SetUserActiveRequest activates or deactivates a user
type SetUserActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// UserSearchRequest represents admin user search query parameters
type UserSearchRequest struct {
	Role   string `form:"role" binding:"omitempty,oneof=ADMIN EMPLOYER CANDIDATE CONSULTANT"`
	Active *bool  `form:"active"`
	Email  string `form:"email"`
}
