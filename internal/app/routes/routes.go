package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/hireloop/internal/app/controllers"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/middleware"
)

// Controllers bundles every HTTP handler the router mounts
type Controllers struct {
	Auth         *controllers.AuthController
	Company      *controllers.CompanyController
	Job          *controllers.JobController
	Candidate    *controllers.CandidateController
	Consultant   *controllers.ConsultantController
	Application  *controllers.ApplicationController
	Messaging    *controllers.MessagingController
	Notification *controllers.NotificationController
	Admin        *controllers.AdminController
	Analytics    *controllers.AnalyticsController
	Health       *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	maintenance gin.HandlerFunc,
	websocketHandler gin.HandlerFunc,
) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", c.Health.Health)
	v1.GET("/ws", websocketHandler)
	v1.GET("/config/public", c.Admin.ListPublicConfigs)
	v1.GET("/config/public/:key", c.Admin.GetPublicConfig)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", maintenance, c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
	}

	// --- Public catalogue ---
	public := v1.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/companies", c.Company.SearchCompanies)
		public.GET("/companies/:id", c.Company.GetCompanyByID)
		public.GET("/companies/:id/jobs", c.Company.ListCompanyJobs)
		public.GET("/jobs", c.Job.SearchJobs)
		public.GET("/jobs/:id", c.Job.GetJobByID)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), maintenance)

	authenticated.GET("/auth/me", c.Auth.Me)

	employerOrAdmin := authMiddleware.RoleRequired(models.RoleEmployer, models.RoleAdmin)
	companies := authenticated.Group("/companies")
	{
		companies.POST("", employerOrAdmin, c.Company.CreateCompany)
		companies.PUT("/:id", c.Company.UpdateCompany)
		companies.DELETE("/:id", c.Company.DeleteCompany)
		companies.PATCH("/:id/verify", authMiddleware.RoleRequired(models.RoleAdmin), c.Company.VerifyCompany)
	}

	jobs := authenticated.Group("/jobs")
	{
		jobs.POST("", c.Job.CreateJob)
		jobs.GET("/assigned", authMiddleware.RoleRequired(models.RoleConsultant), c.Job.ListAssignedJobs)
		jobs.PUT("/:id", c.Job.UpdateJob)
		jobs.PATCH("/:id/status", c.Job.ChangeJobStatus)
		jobs.PUT("/:id/consultant", employerOrAdmin, c.Job.AssignConsultant)
		jobs.DELETE("/:id", c.Job.DeleteJob)
		jobs.GET("/:id/applications", c.Application.ListJobApplications)
	}

	candidates := authenticated.Group("/candidates")
	{
		mine := candidates.Group("/me")
		mine.Use(authMiddleware.RoleRequired(models.RoleCandidate))
		{
			mine.GET("", c.Candidate.GetMyProfile)
			mine.POST("", c.Candidate.CreateMyProfile)
			mine.PUT("", c.Candidate.UpdateMyProfile)
			mine.DELETE("", c.Candidate.DeleteMyProfile)
			mine.POST("/resume", c.Candidate.UploadResume)
		}
		candidates.GET("", c.Candidate.SearchProfiles)
		candidates.GET("/:id", c.Candidate.GetProfile)
	}

	consultants := authenticated.Group("/consultants")
	{
		consultants.GET("", c.Consultant.ListConsultants)
		consultants.GET("/me", authMiddleware.RoleRequired(models.RoleConsultant), c.Consultant.GetMyProfile)
		consultants.POST("/me", authMiddleware.RoleRequired(models.RoleConsultant), c.Consultant.CreateMyProfile)
		consultants.GET("/:id", c.Consultant.GetConsultant)
		consultants.PUT("/:id", c.Consultant.UpdateConsultant)
		consultants.GET("/:id/placements", c.Consultant.ListPlacements)
	}

	applications := authenticated.Group("/applications")
	{
		applications.POST("", authMiddleware.RoleRequired(models.RoleCandidate), c.Application.Apply)
		applications.GET("/me", authMiddleware.RoleRequired(models.RoleCandidate), c.Application.ListMyApplications)
		applications.GET("/:id", c.Application.GetApplication)
		applications.PATCH("/:id/status", c.Application.ChangeStatus)
		applications.GET("/:id/history", c.Application.GetHistory)
		applications.PUT("/:id/rating", c.Application.RateApplication)
	}

	conversations := authenticated.Group("/conversations")
	{
		conversations.POST("", c.Messaging.StartConversation)
		conversations.GET("", c.Messaging.ListConversations)
		conversations.GET("/unread", c.Messaging.UnreadCount)
		conversations.GET("/:id", c.Messaging.GetConversation)
		conversations.GET("/:id/messages", c.Messaging.ListMessages)
		conversations.POST("/:id/messages", c.Messaging.SendMessage)
		conversations.POST("/:id/read", c.Messaging.MarkRead)
	}

	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", c.Notification.ListNotifications)
		notifications.GET("/unread-count", c.Notification.UnreadCount)
		notifications.POST("/read-all", c.Notification.MarkAllRead)
		notifications.POST("/:id/read", c.Notification.MarkRead)
	}

	analytics := authenticated.Group("/analytics")
	{
		analytics.GET("/overview", authMiddleware.RoleRequired(models.RoleAdmin), c.Analytics.PlatformOverview)
		analytics.GET("/companies/:id", c.Analytics.CompanyDashboard)
		analytics.GET("/consultants/:id", c.Analytics.ConsultantDashboard)
	}

	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/me", c.Admin.GetMyProfile)
		admin.GET("/users", c.Admin.ListUsers)
		admin.PATCH("/users/:id/active", c.Admin.SetUserActive)
		admin.GET("/configs", c.Admin.ListConfigs)
		admin.GET("/configs/:key", c.Admin.GetConfig)
		admin.PUT("/configs/:key", c.Admin.UpsertConfig)
		admin.DELETE("/configs/:key", c.Admin.DeleteConfig)
	}
}
