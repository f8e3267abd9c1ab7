package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/jkusa/portal/docs" // Generated swagger docs
	appControllers "github.com/jkusa/portal/internal/app/controllers"
	appMigrations "github.com/jkusa/portal/internal/app/migrations"
	appRepos "github.com/jkusa/portal/internal/app/repositories"
	appRoutes "github.com/jkusa/portal/internal/app/routes"
	appServices "github.com/jkusa/portal/internal/app/services"
	"github.com/jkusa/portal/internal/config"
	"github.com/jkusa/portal/internal/db"
	appMiddleware "github.com/jkusa/portal/internal/middleware"
	pkgAuth "github.com/jkusa/portal/internal/pkg/auth"
	"github.com/jkusa/portal/internal/pkg/email"
	"github.com/jkusa/portal/internal/pkg/logger"
	"github.com/jkusa/portal/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services          *appServices.Services
	AuthController    *appControllers.AuthController
	CatalogController *appControllers.CatalogController
	AuthMiddleware    *appMiddleware.AuthMiddleware
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	EmailService      email.EmailService
	Policy            appServices.SecurityPolicy
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the college catalog.
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
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Seeding failure is not fatal; registration will reject unknown
		// colleges until the catalog exists.
		lgr.Error().Err(err).Msg("Failed to seed catalog data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	policy, err := appServices.NewSecurityPolicy(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid security configuration: %w", err)
	}
	deps.Policy = policy

	accessExp, err := time.ParseDuration(cfg.JWT.AccessTokenExpiration)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration: %w", err)
	}
	refreshExp, err := time.ParseDuration(cfg.JWT.RefreshTokenExpiration)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token expiration: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  accessExp,
		RefreshTokenExp: refreshExp,
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.EmailService = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.Server.BaseURL,
	}, lgr)

	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, deps.EmailService, policy, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(
		deps.Services.AuthService,
		cfg.IsProduction(),
		deps.Logger,
	)
	deps.CatalogController = appControllers.NewCatalogController(deps.Services.CatalogService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CatalogController,
		deps.AuthMiddleware,
		appRoutes.RateLimits{
			Store:       deps.Repos.RateLimitRepository,
			Requests:    deps.Policy.LoginRateLimit,
			Window:      deps.Policy.LoginRateWindow,
			EmailAction: deps.Policy.EmailActionRateLimit,
			EmailWindow: deps.Policy.EmailActionRateWindow,
		},
	)

	return router
}
