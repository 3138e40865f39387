package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/diploma-registry/internal/app/controllers"
	appMigrations "github.com/yigit/diploma-registry/internal/app/migrations"
	"github.com/yigit/diploma-registry/internal/app/models/dto"
	appRepos "github.com/yigit/diploma-registry/internal/app/repositories"
	appRoutes "github.com/yigit/diploma-registry/internal/app/routes"
	appServices "github.com/yigit/diploma-registry/internal/app/services"
	"github.com/yigit/diploma-registry/internal/catalog"
	"github.com/yigit/diploma-registry/internal/config"
	"github.com/yigit/diploma-registry/internal/db"
	appMiddleware "github.com/yigit/diploma-registry/internal/middleware"
	pkgAuth "github.com/yigit/diploma-registry/internal/pkg/auth"
	"github.com/yigit/diploma-registry/internal/pkg/filestorage"
	"github.com/yigit/diploma-registry/internal/pkg/helpers"
	"github.com/yigit/diploma-registry/internal/pkg/logger"
)

// multipart and base64 framing on top of the file itself
const bodyOverheadBytes = 1 << 20

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService       *appServices.AuthService
	DiplomaService    appServices.DiplomaService
	InviteService     appServices.InviteService
	AuthController    *appControllers.AuthController
	DiplomaController *appControllers.DiplomaController
	InviteController  *appControllers.InviteController
	CatalogController *appControllers.CatalogController
	HealthController  *appControllers.HealthController
	AuthMiddleware    *appMiddleware.AuthMiddleware
	AuthLimiter       *appMiddleware.RateLimiter
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	Catalog           *catalog.Catalog
	FileStorage       *filestorage.LocalStorage
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

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL and applies the embedded migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)
	if err := migrator.Apply(ctx, appMigrations.Files()); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	lgr.Info().Msg("Database migrations completed.")

	return database, nil
}

// LoadCatalog reads the configured catalog file or falls back to the embedded one.
func LoadCatalog(cfg *config.Config, lgr zerolog.Logger) (*catalog.Catalog, error) {
	if path := strings.TrimSpace(cfg.Catalog.Path); path != "" {
		cat, err := catalog.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
		}
		lgr.Info().Str("path", path).Int("faculties", len(cat.Faculties())).Msg("Catalog loaded")
		return cat, nil
	}

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded catalog: %w", err)
	}
	lgr.Info().Int("faculties", len(cat.Faculties())).Msg("Embedded catalog loaded")
	return cat, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, cat *catalog.Catalog, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Catalog: cat}

	deps.Repos = appRepos.NewRepositories(database)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Upload.Dir)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenTTL:    helpers.ParseDuration(cfg.JWT.Expiration, pkgAuth.DefaultTokenTTL),
		TokenIssuer: cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.JWTService,
		appServices.RegistrationPolicy{
			AllowSelfRegister: cfg.Auth.AllowSelfRegister,
			InviteGrantsAdmin: cfg.Auth.InviteGrantsAdmin,
		},
		lgr,
	)
	deps.DiplomaService = appServices.NewDiplomaService(
		deps.Repos.DiplomaRepository,
		cat,
		deps.FileStorage,
		filestorage.NewPolicy(cfg.MaxUploadBytes()),
	)
	deps.InviteService = appServices.NewInviteService(deps.Repos.InviteRepository)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.AuthLimiter = appMiddleware.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.DiplomaController = appControllers.NewDiplomaController(deps.DiplomaService)
	deps.InviteController = appControllers.NewInviteController(deps.InviteService)
	deps.CatalogController = appControllers.NewCatalogController(cat)
	deps.HealthController = appControllers.NewHealthController(database)

	return deps, nil
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

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.Ctx(c.Request.Context()).Error().Interface("panic", recovered).Msg("Recovered from panic")
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrorCodeInternalServer, "Internal server error"))
		}),
		cors.New(corsConfig(cfg)),
		appMiddleware.BodyLimit(cfg.MaxUploadBytes()*4/3+bodyOverheadBytes),
	)

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.DiplomaController,
		deps.InviteController,
		deps.CatalogController,
		deps.HealthController,
		deps.AuthMiddleware,
		deps.AuthLimiter,
	)

	router.Static(filestorage.PublicPrefix, deps.FileStorage.BasePath())
	lgr.Info().Str("path", deps.FileStorage.BasePath()).Msg("Static file serving configured for uploads directory")

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", appMiddleware.RequestIDHeader},
		ExposeHeaders: []string{appMiddleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	} else {
		// no allow-list configured: reflect any origin, never with credentials
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}
