package cache

import "fmt"

const analyticsPrefix = "analytics:"

// PlatformOverviewKey caches the admin dashboard
func PlatformOverviewKey() string {
	return analyticsPrefix + "platform"
}

// CompanyDashboardKey caches one company's dashboard
func CompanyDashboardKey(companyID int64) string {
	return fmt.Sprintf("%scompany:%d", analyticsPrefix, companyID)
}

// ConsultantDashboardKey caches one consultant's dashboard
func ConsultantDashboardKey(consultantID int64) string {
	return fmt.Sprintf("%sconsultant:%d", analyticsPrefix, consultantID)
}

// AnalyticsPattern matches every analytics entry
func AnalyticsPattern() string {
	return analyticsPrefix + "*"
}
