package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is used when a consultant profile is created without a rate
var DefaultCommissionRate = decimal.RequireFromString("0.15")

// Consultant defines the consultant model based on the 'consultants' table
type Consultant struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"userId" db:"user_id"`
	FirstName       string          `json:"firstName,omitempty" db:"first_name"`
	LastName        string          `json:"lastName,omitempty" db:"last_name"`
	Email           string          `json:"email,omitempty" db:"email"`
	Bio             string          `json:"bio,omitempty" db:"bio"`
	Specializations []string        `json:"specializations" db:"specializations"`
	CommissionRate  decimal.Decimal `json:"commissionRate" db:"commission_rate" swaggertype:"string" example:"0.15"`
	IsActive        bool            `json:"isActive" db:"is_active"`
	TotalPlacements int             `json:"totalPlacements" db:"total_placements"`
	TotalFees       decimal.Decimal `json:"totalFees" db:"total_fees" swaggertype:"string"`
	Rating          float64         `json:"rating" db:"rating"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// ConsultantFilter holds consultant list parameters
type ConsultantFilter struct {
	Active         *bool
	Specialization string
	Page           int
	Size           int
}
