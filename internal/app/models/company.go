package models

import "time"

// CompanySize is the head-count bucket of a company
type CompanySize string

const (
	CompanySize1To10     CompanySize = "1-10"
	CompanySize11To50    CompanySize = "11-50"
	CompanySize51To200   CompanySize = "51-200"
	CompanySize201To500  CompanySize = "201-500"
	CompanySize501To1000 CompanySize = "501-1000"
	CompanySize1000Plus  CompanySize = "1000+"
)

// Company defines the company model based on the 'companies' table
type Company struct {
	ID          int64                  `json:"id" db:"id" example:"1"`
	Name        string                 `json:"name" db:"name" example:"Acme Corp"`
	Industry    string                 `json:"industry" db:"industry" example:"Software"`
	Size        CompanySize            `json:"size,omitempty" db:"size" example:"51-200"`
	Website     string                 `json:"website,omitempty" db:"website"`
	Description string                 `json:"description,omitempty" db:"description"`
	Location    string                 `json:"location,omitempty" db:"location" example:"Berlin"`
	LogoURL     string                 `json:"logoUrl,omitempty" db:"logo_url"`
	IsVerified  bool                   `json:"isVerified" db:"is_verified"`
	OwnerID     int64                  `json:"ownerId" db:"owner_id"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time              `json:"updatedAt" db:"updated_at"`
	DeletedAt   *time.Time             `json:"-" db:"deleted_at"`
}

// CompanyFilter holds company search parameters
type CompanyFilter struct {
	Name     string
	Industry string
	Location string
	Verified *bool
	Page     int
	Size     int
}
