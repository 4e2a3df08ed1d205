package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/hireloop/internal/app/auth"
	appControllers "github.com/yigit/hireloop/internal/app/controllers"
	appMigrations "github.com/yigit/hireloop/internal/app/migrations"
	appRepos "github.com/yigit/hireloop/internal/app/repositories"
	appRoutes "github.com/yigit/hireloop/internal/app/routes"
	appServices "github.com/yigit/hireloop/internal/app/services"
	"github.com/yigit/hireloop/internal/config"
	"github.com/yigit/hireloop/internal/db"
	appMiddleware "github.com/yigit/hireloop/internal/middleware"
	pkgAuth "github.com/yigit/hireloop/internal/pkg/auth"
	"github.com/yigit/hireloop/internal/pkg/cache"
	"github.com/yigit/hireloop/internal/pkg/email"
	"github.com/yigit/hireloop/internal/pkg/events"
	"github.com/yigit/hireloop/internal/pkg/filestorage"
	"github.com/yigit/hireloop/internal/pkg/helpers"
	"github.com/yigit/hireloop/internal/pkg/logger"
	"github.com/yigit/hireloop/internal/pkg/metrics"
	"github.com/yigit/hireloop/internal/pkg/websocket"
	"github.com/yigit/hireloop/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Authz       *appAuth.AuthorizationService
	Settings    *appServices.Settings
	Cache       cache.Cache
	Publisher   events.Publisher
	Mailer      email.EmailService
	FileStorage *filestorage.LocalStorage
	Hub         *websocket.Hub

	AuthService         *appServices.AuthService
	CompanyService      appServices.CompanyService
	JobService          appServices.JobService
	CandidateService    appServices.CandidateService
	ConsultantService   appServices.ConsultantService
	ApplicationService  appServices.ApplicationService
	MessagingService    appServices.MessagingService
	NotificationService appServices.NotificationService
	AdminService        appServices.AdminService
	AnalyticsService    appServices.AnalyticsService

	Controllers      appRoutes.Controllers
	AuthMiddleware   *appMiddleware.AuthMiddleware
	WebSocketHandler *websocket.Handler

	Logger zerolog.Logger

	// cancels the hub and the inbound message loop
	stopBackground context.CancelFunc
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: "hireloop",
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.UploadsURL())
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Cache = cache.NoopCache{}
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, lgr)
		if err != nil {
			// analytics falls back to live queries
			lgr.Warn().Err(err).Msg("Redis unavailable, caching disabled")
		} else {
			deps.Cache = redisCache
		}
	}

	deps.Publisher = events.NoopPublisher{Logger: lgr}
	if cfg.Kafka.Enabled {
		publisher, err := events.NewKafkaPublisher(events.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: helpers.ParseDuration(cfg.Kafka.WriteTimeout, 5*time.Second),
		}, lgr)
		if err != nil {
			_ = deps.Cache.Close()
			return nil, fmt.Errorf("failed to initialize kafka publisher: %w", err)
		}
		deps.Publisher = publisher
	}

	deps.Mailer = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.Server.BaseURL,
	}, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	repos := deps.Repos
	deps.Authz = appAuth.NewAuthorizationService(repos.UserRepository, repos.CompanyRepository, repos.ConsultantRepository)
	deps.Settings = appServices.NewSettings(repos.ConfigRepository, lgr)

	ctx, cancel := context.WithCancel(context.Background())
	deps.stopBackground = cancel
	deps.Hub = websocket.NewHub(logger.WithField("component", "websocket"))
	go deps.Hub.Run(ctx)

	deps.NotificationService = appServices.NewNotificationService(repos.NotificationRepository, deps.Hub, lgr)
	deps.AuthService = appServices.NewAuthService(
		repos.UserRepository,
		repos.TokenRepository,
		repos.CandidateRepository,
		repos.ConsultantRepository,
		repos.ConfigRepository,
		deps.JWTService,
		deps.Mailer,
		lgr,
	)
	deps.CompanyService = appServices.NewCompanyService(repos.CompanyRepository, deps.Authz, lgr)
	deps.JobService = appServices.NewJobService(
		repos.JobRepository,
		repos.CompanyRepository,
		repos.ConsultantRepository,
		deps.Authz,
		deps.NotificationService,
		deps.Publisher,
		deps.Cache,
		lgr,
	)
	deps.CandidateService = appServices.NewCandidateService(repos.CandidateRepository, deps.FileStorage, lgr)
	deps.ConsultantService = appServices.NewConsultantService(repos.ConsultantRepository, repos.ApplicationRepository, deps.Settings, lgr)
	deps.ApplicationService = appServices.NewApplicationService(appServices.ApplicationDeps{
		Applications:  repos.ApplicationRepository,
		Jobs:          repos.JobRepository,
		Candidates:    repos.CandidateRepository,
		Consultants:   repos.ConsultantRepository,
		Companies:     repos.CompanyRepository,
		Users:         repos.UserRepository,
		Authz:         deps.Authz,
		Notifications: deps.NotificationService,
		Mailer:        deps.Mailer,
		Publisher:     deps.Publisher,
		Cache:         deps.Cache,
		Settings:      deps.Settings,
	}, lgr)
	deps.MessagingService = appServices.NewMessagingService(
		repos.MessageRepository,
		repos.UserRepository,
		repos.ApplicationRepository,
		deps.Authz,
		deps.NotificationService,
		deps.Hub,
		deps.Mailer,
		lgr,
	)
	deps.AdminService = appServices.NewAdminService(repos.UserRepository, repos.TokenRepository, repos.ConfigRepository, lgr)
	deps.AnalyticsService = appServices.NewAnalyticsService(
		repos.AnalyticsRepository,
		repos.CompanyRepository,
		repos.ConsultantRepository,
		deps.Authz,
		deps.Cache,
		helpers.ParseDuration(cfg.Analytics.CacheTTL, 5*time.Minute),
		lgr,
	)

	messageHandler := websocket.NewMessageHandler(deps.Hub, deps.MessagingService, repos.UserRepository, lgr)
	messageHandler.Start(ctx)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService).WithAccountCheck(repos.UserRepository)
	deps.WebSocketHandler = websocket.NewHandler(deps.Hub, deps.JWTService, cfg.Server.CORSOrigins, lgr)

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		Company:      appControllers.NewCompanyController(deps.CompanyService, deps.JobService),
		Job:          appControllers.NewJobController(deps.JobService),
		Candidate:    appControllers.NewCandidateController(deps.CandidateService),
		Consultant:   appControllers.NewConsultantController(deps.ConsultantService),
		Application:  appControllers.NewApplicationController(deps.ApplicationService),
		Messaging:    appControllers.NewMessagingController(deps.MessagingService, deps.NotificationService),
		Notification: appControllers.NewNotificationController(deps.NotificationService),
		Admin:        appControllers.NewAdminController(deps.AdminService),
		Analytics:    appControllers.NewAnalyticsController(deps.AnalyticsService),
	}
	if cfg.Redis.Enabled {
		deps.Controllers.Health = appControllers.NewHealthController(dbPool, deps.Cache)
	} else {
		deps.Controllers.Health = appControllers.NewHealthController(dbPool, nil)
	}

	return deps, nil
}

// Close stops background workers and releases external connections
func (d *Dependencies) Close() {
	if d.stopBackground != nil {
		d.stopBackground()
	}
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("Error closing event publisher")
		}
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("Error closing cache")
		}
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.UseJSONFieldNames()
	router := gin.New()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Metrics(),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
	)

	appRoutes.SetupSwagger(router, swaggerHost(cfg.Server.BaseURL))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	setupStaticFileServing(router, cfg, lgr)

	appRoutes.SetupRouter(router,
		deps.Controllers,
		deps.AuthMiddleware,
		appMiddleware.Maintenance(deps.Settings),
		deps.WebSocketHandler.HandleConnection,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

// setupStaticFileServing serves stored resumes under /uploads
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, lgr zerolog.Logger) {
	uploadPath := cfg.Server.StoragePath
	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		if err := os.MkdirAll(uploadPath, 0o755); err != nil {
			lgr.Error().Err(err).Str("path", uploadPath).Msg("Failed to create uploads directory")
			return
		}
	}

	router.Static("/uploads", uploadPath)
	lgr.Info().Str("path", uploadPath).Msg("Static file serving configured for uploads directory")
}

// swaggerHost strips the scheme from the public base URL
func swaggerHost(baseURL string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	return strings.TrimRight(host, "/")
}
