package services

import (
	"context"
	"time"

	"github.com/yigit/hireloop/internal/app/models"
)

// Store interfaces are satisfied by the repositories package and by in-memory fakes
// in tests.

// UserStore persists users
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	SetActive(ctx context.Context, id int64, active bool) error
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error)
}

// TokenStore persists refresh tokens
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RotateToken(ctx context.Context, oldToken, newToken string, userID int64, expiresAt time.Time) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// CompanyStore persists companies
type CompanyStore interface {
	CreateCompany(ctx context.Context, company *models.Company, linkOwner bool) (int64, error)
	GetCompanyByID(ctx context.Context, id int64) (*models.Company, error)
	UpdateCompany(ctx context.Context, company *models.Company) error
	SoftDeleteCompany(ctx context.Context, id int64) error
	SetVerified(ctx context.Context, id int64, verified bool) error
	SearchCompanies(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, int64, error)
}

// JobStore persists jobs
type JobStore interface {
	CreateJob(ctx context.Context, job *models.Job) (int64, error)
	GetJobByID(ctx context.Context, id int64) (*models.Job, error)
	UpdateJob(ctx context.Context, job *models.Job) error
	UpdateJobStatus(ctx context.Context, id int64, from, to models.JobStatus, publishedAt *time.Time) error
	AssignConsultant(ctx context.Context, jobID int64, consultantID *int64) error
	SoftDeleteJob(ctx context.Context, id int64) error
	SearchJobs(ctx context.Context, filter models.JobFilter) ([]*models.Job, int64, error)
}

// CandidateStore persists candidate profiles
type CandidateStore interface {
	CreateProfile(ctx context.Context, p *models.CandidateProfile) (int64, error)
	GetProfileByID(ctx context.Context, id int64) (*models.CandidateProfile, error)
	GetProfileByUserID(ctx context.Context, userID int64) (*models.CandidateProfile, error)
	UpdateProfile(ctx context.Context, p *models.CandidateProfile) error
	UpdateResume(ctx context.Context, id int64, resumeURL string) error
	SoftDeleteProfile(ctx context.Context, id int64) error
	SearchProfiles(ctx context.Context, filter models.CandidateFilter) ([]*models.CandidateProfile, int64, error)
}

// ConsultantStore persists consultants
type ConsultantStore interface {
	CreateConsultant(ctx context.Context, k *models.Consultant) (int64, error)
	GetConsultantByID(ctx context.Context, id int64) (*models.Consultant, error)
	GetConsultantByUserID(ctx context.Context, userID int64) (*models.Consultant, error)
	UpdateConsultant(ctx context.Context, k *models.Consultant) error
	ListConsultants(ctx context.Context, filter models.ConsultantFilter) ([]*models.Consultant, int64, error)
}

// ApplicationStore persists applications and their status history
type ApplicationStore interface {
	CreateApplication(ctx context.Context, a *models.Application, actorID int64) (int64, error)
	GetApplicationByID(ctx context.Context, id int64) (*models.Application, error)
	ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int64, error)
	CountApplicationsSince(ctx context.Context, candidateID int64, since time.Time) (int64, error)
	ListStatusHistory(ctx context.Context, applicationID int64) ([]*models.StatusHistory, error)
	SetRating(ctx context.Context, applicationID int64, rating int) error
	ApplyStatusChange(ctx context.Context, c *models.StatusChange) (*models.StatusChangeResult, error)
}

// MessageStore persists conversations and messages
type MessageStore interface {
	CreateConversation(ctx context.Context, conv *models.Conversation, participantIDs []int64) (int64, error)
	FindDirectConversation(ctx context.Context, userA, userB int64, applicationID *int64) (*models.Conversation, error)
	GetConversation(ctx context.Context, id int64) (*models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	ListParticipants(ctx context.Context, conversationID int64) ([]int64, error)
	ListConversations(ctx context.Context, userID int64, page, size int) ([]*models.ConversationSummary, int64, error)
	CreateMessage(ctx context.Context, m *models.Message) (int64, error)
	ListMessages(ctx context.Context, conversationID, before int64, limit int) ([]*models.Message, error)
	MarkRead(ctx context.Context, conversationID, userID int64, at time.Time) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

// NotificationStore persists notifications
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) (int64, error)
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool, page, size int) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID int64, at time.Time) error
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

// ConfigStore persists system configuration and admin profiles
type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (*models.SystemConfiguration, error)
	UpsertConfig(ctx context.Context, c *models.SystemConfiguration) error
	ListConfigs(ctx context.Context, publicOnly bool) ([]*models.SystemConfiguration, error)
	DeleteConfig(ctx context.Context, key string) error
	GetAdminProfileByUserID(ctx context.Context, userID int64) (*models.AdminProfile, error)
}

// AnalyticsStore runs dashboard aggregates
type AnalyticsStore interface {
	PlatformOverview(ctx context.Context, now time.Time) (*models.PlatformOverview, error)
	CompanyDashboard(ctx context.Context, companyID int64) (*models.CompanyDashboard, error)
	ConsultantDashboard(ctx context.Context, consultantID int64) (*models.ConsultantDashboard, error)
}

// Pusher delivers realtime events to connected users
type Pusher interface {
	SendToUser(userID int64, eventType string, data interface{})
	IsOnline(userID int64) bool
}
