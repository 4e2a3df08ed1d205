package models

import "github.com/shopspring/decimal"

// PlatformOverview is the admin dashboard
type PlatformOverview struct {
	UsersByRole          map[Role]int64              `json:"usersByRole"`
	TotalCompanies       int64                       `json:"totalCompanies"`
	VerifiedCompanies    int64                       `json:"verifiedCompanies"`
	JobsByStatus         map[JobStatus]int64         `json:"jobsByStatus"`
	ApplicationsByStatus map[ApplicationStatus]int64 `json:"applicationsByStatus"`
	HiresLast30Days      int64                       `json:"hiresLast30Days"`
}

// FunnelStage is one step of the hiring funnel: how many applications ever reached it
type FunnelStage struct {
	Status  ApplicationStatus `json:"status"`
	Reached int64             `json:"reached"`
}

// JobApplicationCount ranks jobs by number of applications
type JobApplicationCount struct {
	JobID        int64  `json:"jobId"`
	Title        string `json:"title"`
	Applications int64  `json:"applications"`
}

// CompanyDashboard summarises one company's hiring activity
type CompanyDashboard struct {
	CompanyID            int64                       `json:"companyId"`
	JobsByStatus         map[JobStatus]int64         `json:"jobsByStatus"`
	ApplicationsByStatus map[ApplicationStatus]int64 `json:"applicationsByStatus"`
	Funnel               []FunnelStage               `json:"funnel"`
	AvgTimeToHireDays    float64                     `json:"avgTimeToHireDays"`
	OfferAcceptanceRate  float64                     `json:"offerAcceptanceRate"`
	TopJobs              []JobApplicationCount       `json:"topJobs"`
}

// ConsultantDashboard summarises one consultant's placements
type ConsultantDashboard struct {
	ConsultantID         int64                       `json:"consultantId"`
	TotalPlacements      int64                       `json:"totalPlacements"`
	TotalFees            decimal.Decimal             `json:"totalFees" swaggertype:"string"`
	ActiveApplications   int64                       `json:"activeApplications"`
	ApplicationsByStatus map[ApplicationStatus]int64 `json:"applicationsByStatus"`
}
