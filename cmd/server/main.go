package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"webar-backend/internal/auth"
	"webar-backend/internal/cache"
	"webar-backend/internal/cloudinary"
	"webar-backend/internal/config"
	"webar-backend/internal/database"
	"webar-backend/internal/handlers"
	"webar-backend/internal/logutils"
	"webar-backend/internal/middleware"
	"webar-backend/internal/models"
)

const viewCacheTTL = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logutils.Log.Fatalf("failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbClient, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logutils.Log.Fatalf("failed to open database: %v", err)
	}
	defer dbClient.Close()

	storageClient := cloudinary.NewClient(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	tokens := auth.NewTokenManager(cfg.JWTSecret, auth.TokenTTL)

	var viewCache handlers.ViewCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		viewCache = cache.NewProjectViewCache(redisClient, viewCacheTTL)
	}

	// The listener comes up immediately; /api traffic gets 503 until the
	// store is migrated, seeded and pinged.
	var ready atomic.Bool
	go initializeDatabase(dbClient, cfg, &ready)

	healthHandler := handlers.NewHealthHandler(&ready)
	authHandler := handlers.NewAuthHandler(dbClient, tokens)
	projectsHandler := handlers.NewProjectsHandler(dbClient, storageClient, viewCache, cfg.ViewBaseURL)
	usersHandler := handlers.NewUsersHandler(dbClient, projectsHandler, cfg.DefaultProjectLimit)
	uploadHandler := handlers.NewUploadHandler(storageClient)
	publicHandler := handlers.NewPublicHandler(dbClient, viewCache)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// The public viewer is served from another origin.
	router.Use(cors.Default())

	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api", middleware.RequireReady(&ready))
	api.POST("/auth/login", authHandler.Login)
	api.GET("/public/projects/:project_id", publicHandler.GetProject)

	protected := api.Group("", middleware.Auth(tokens))
	protected.GET("/projects", projectsHandler.List)
	protected.POST("/projects", projectsHandler.Create)
	protected.PUT("/projects/:project_id", projectsHandler.Update)
	protected.DELETE("/projects/:project_id", projectsHandler.Delete)
	protected.GET("/upload/signature", uploadHandler.GetSignature)

	users := protected.Group("/users", middleware.RequireRole(models.RoleAdmin))
	users.GET("", usersHandler.List)
	users.POST("", usersHandler.Create)
	users.PUT("/:user_id", usersHandler.Update)
	users.DELETE("/:user_id", usersHandler.Delete)

	logutils.Log.Infof("server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logutils.Log.Fatalf("failed to start server: %v", err)
	}
}

func initializeDatabase(dbClient *database.Client, cfg *config.Config, ready *atomic.Bool) {
	ctx := context.Background()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := dbClient.Ping(pingCtx)
		cancel()
		if err == nil {
			break
		}
		logutils.Log.WithError(err).Warn("database not reachable yet, retrying")
		time.Sleep(3 * time.Second)
	}

	migrator := database.NewMigrator(dbClient.DB())
	if err := migrator.Run(ctx); err != nil {
		logutils.Log.Fatalf("migration failed: %v", err)
	}

	if err := dbClient.SeedAdmin(ctx, cfg.AdminEmail, "Administrator", cfg.AdminDefaultPassword); err != nil {
		logutils.Log.Fatalf("admin bootstrap failed: %v", err)
	}

	ready.Store(true)
	logutils.Log.Info("database ready, API fully operational")
}
