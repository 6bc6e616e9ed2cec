package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"datadesigner/internal/config"
	"datadesigner/internal/database"
	"datadesigner/internal/handlers"
	"datadesigner/internal/middlewares"
	"datadesigner/internal/repositories"
	"datadesigner/internal/routes"
	"datadesigner/internal/services"
	"datadesigner/internal/utils"
)

// runMigrations is replaced in tests.
var runMigrations = database.RunMigrations

// Deps are the already-connected collaborators of the router.
type Deps struct {
	DB          *gorm.DB
	Blacklist   repositories.TokenBlacklist
	Tokens      *utils.TokenManager
	OAuth       *oauth2.Config // nil disables Google sign-in
	CORSOrigins []string
	Log         logrus.FieldLogger
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) *gin.Engine {
	userRepo := repositories.NewUserRepository(d.DB)
	projectRepo := repositories.NewProjectRepository(d.DB)
	diagramRepo := repositories.NewDiagramRepository(d.DB)

	authService := services.NewAuthService(userRepo, projectRepo, d.Tokens, d.Blacklist, d.Log)
	userService := services.NewUserService(userRepo, projectRepo, d.Log)
	projectService := services.NewProjectService(d.DB, projectRepo, diagramRepo, authService, d.Log)
	exportService := services.NewExportService(projectService)

	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		User:         handlers.NewUserHandler(userService),
		Project:      handlers.NewProjectHandler(projectService, exportService),
		Authenticate: middlewares.Authenticate(authService),
	}
	if d.OAuth != nil {
		googleService := services.NewGoogleAuthService(d.OAuth, userRepo, authService, d.Log)
		h.Google = handlers.NewGoogleAuthHandler(googleService)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middlewares.RequestLogger(d.Log))
	if len(d.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	routes.RegisterRoutes(router, h)
	return router
}

// NewServer connects storage, runs migrations and returns the HTTP server
// together with a function releasing the connections.
func NewServer(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*http.Server, func(), error) {
	if cfg.DBDriver == "postgres" {
		if err := database.EnsureDatabaseExists(ctx, cfg, log); err != nil {
			return nil, nil, err
		}
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}}
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if err := runMigrations(db, log); err != nil {
		cleanup()
		return nil, nil, err
	}

	var blacklist repositories.TokenBlacklist
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info("Connected to Redis successfully")
		closers = append(closers, func() { rdb.Close() })
		blacklist = repositories.NewRedisRepository(rdb)
	} else {
		log.Warn("REDIS_ADDR not set, revoked tokens are kept in memory")
		blacklist = repositories.NewMemoryBlacklist()
	}

	router := NewRouter(Deps{
		DB:          db,
		Blacklist:   blacklist,
		Tokens:      utils.NewTokenManager(cfg.AccessTokenSecret, cfg.AccessTokenTTL),
		OAuth:       cfg.OAuthConfig(),
		CORSOrigins: cfg.CORSAllowedOrigins,
		Log:         log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return srv, cleanup, nil
}
