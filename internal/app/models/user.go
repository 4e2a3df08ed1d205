package models

import (
	"time"
)

// Role defines the user role
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleEmployer   Role = "EMPLOYER"
	RoleCandidate  Role = "CANDIDATE"
	RoleConsultant Role = "CONSULTANT"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEmployer, RoleCandidate, RoleConsultant:
		return true
	}
	return false
}

// SelfRegistrable reports whether the role may be chosen at sign-up
func (r Role) SelfRegistrable() bool {
	return r == RoleEmployer || r == RoleCandidate || r == RoleConsultant
}

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"jane@acme.io"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name" example:"Jane"`
	LastName    string     `json:"lastName" db:"last_name" example:"Doe"`
	Role        Role       `json:"role" db:"role" example:"CANDIDATE"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	CompanyID   *int64     `json:"companyId,omitempty" db:"company_id"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Actor is the authenticated user performing an operation
type Actor struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the actor has the ADMIN role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// UserFilter holds admin user search parameters
type UserFilter struct {
	Role   *Role
	Active *bool
	Email  string
	Page   int
	Size   int
}
