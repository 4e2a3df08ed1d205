package models

import (
	"encoding/json"
	"time"
)

// AdminProfile defines the admin model based on the 'admin_profiles' table
type AdminProfile struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"userId" db:"user_id"`
	Department   string    `json:"department,omitempty" db:"department"`
	Permissions  []string  `json:"permissions" db:"permissions"`
	IsSuperAdmin bool      `json:"isSuperAdmin" db:"is_super_admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Well known configuration keys
const (
	ConfigMaxApplicationsPerDay = "max_applications_per_day"
	ConfigDefaultCommissionRate = "default_commission_rate"
	ConfigMaintenanceMode       = "maintenance_mode"
)

// SystemConfiguration defines a row of the 'system_configurations' table.
// Value and Schema hold raw JSON documents.
type SystemConfiguration struct {
	ID          int64           `json:"id" db:"id"`
	Key         string          `json:"key" db:"key" example:"max_applications_per_day"`
	Value       json.RawMessage `json:"value" db:"value" swaggertype:"object"`
	Description string          `json:"description,omitempty" db:"description"`
	IsPublic    bool            `json:"isPublic" db:"is_public"`
	Schema      json.RawMessage `json:"schema,omitempty" db:"schema" swaggertype:"object"`
	UpdatedBy   *int64          `json:"updatedBy,omitempty" db:"updated_by"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}
