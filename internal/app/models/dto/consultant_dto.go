package dto

import "github.com/shopspring/decimal"

// CreateConsultantRequest creates the caller's consultant profile
type CreateConsultantRequest struct {
	Bio             string   `json:"bio" binding:"max=5000"`
	Specializations []string `json:"specializations" binding:"max=30,dive,min=1,max=80"`
}

// UpdateConsultantRequest updates a consultant profile. CommissionRate and IsActive
// are only honoured for admins.
type UpdateConsultantRequest struct {
	Bio             *string          `json:"bio" binding:"omitempty,max=5000"`
	Specializations []string         `json:"specializations" binding:"omitempty,max=30,dive,min=1,max=80"`
	CommissionRate  *decimal.Decimal `json:"commissionRate" swaggertype:"string" example:"0.2"`
	IsActive        *bool            `json:"isActive"`
}

// ConsultantListRequest represents consultant list query parameters
type ConsultantListRequest struct {
	Active         *bool  `form:"active"`
	Specialization string `form:"specialization"`
}
