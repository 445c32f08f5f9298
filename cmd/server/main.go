package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodgram/foodgram-backend/config"
	"github.com/foodgram/foodgram-backend/internal/app/controller"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/internal/app/service"
	"github.com/foodgram/foodgram-backend/internal/db"
	"github.com/foodgram/foodgram-backend/internal/metrics"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/foodgram/foodgram-backend/internal/router"
	"github.com/foodgram/foodgram-backend/internal/scheduler"
	"github.com/foodgram/foodgram-backend/internal/storage"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"github.com/foodgram/foodgram-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting Foodgram Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and seed catalogs
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := controller.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register request validators", err)
	}

	database := db.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	tagRepo := repository.NewTagRepository(database)
	ingredientRepo := repository.NewIngredientRepository(database)
	recipeRepo := repository.NewRecipeRepository(database)
	favoriteRepo := repository.NewFavoriteRepository(database)
	cartRepo := repository.NewShoppingCartRepository(database)
	subscriptionRepo := repository.NewSubscriptionRepository(database)
	revokedTokenRepo := repository.NewRevokedTokenRepository(database)

	tokenStore := newTokenStore(cfg, revokedTokenRepo)
	imageStorage := newImageStorage(cfg)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		subscriptionRepo,
		tokenStore,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	recipeService := service.NewRecipeService(
		recipeRepo,
		favoriteRepo,
		cartRepo,
		subscriptionRepo,
		service.NewRecipeValidator(recipeRepo, tagRepo, ingredientRepo),
		service.NewImageService(imageStorage),
	)
	favoriteService := service.NewFavoriteService(favoriteRepo, recipeRepo)
	shoppingCartService := service.NewShoppingCartService(cartRepo, recipeRepo)
	shoppingListService := service.NewShoppingListService(cartRepo)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, recipeRepo)
	tagService := service.NewTagService(tagRepo)
	ingredientService := service.NewIngredientService(ingredientRepo)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Initialize controllers
	controllers := router.Controllers{
		Users:         controller.NewUserController(authService, cfg.API.PageSize),
		Recipes:       controller.NewRecipeController(recipeService, collector, cfg.API.PageSize),
		Favorites:     controller.NewFavoriteController(favoriteService),
		ShoppingCart:  controller.NewShoppingCartController(shoppingCartService),
		ShoppingList:  controller.NewShoppingListController(shoppingListService, collector),
		Subscriptions: controller.NewSubscriptionController(subscriptionService, cfg.API.PageSize),
		Tags:          controller.NewTagController(tagService),
		Ingredients:   controller.NewIngredientController(ingredientService),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, tokenStore)
	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, collector)

	// Background maintenance
	maintenance := scheduler.NewMaintenanceScheduler(tokenStore, authLimiter, collector)
	if err := maintenance.Start(); err != nil {
		logger.Fatal("Failed to start maintenance scheduler", err)
	}
	defer maintenance.Stop()

	// Setup router
	r := router.NewRouter(controllers, authMiddleware, authLimiter, collector, registry, cfg)
	engine := r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	if cfg.Redis.Enabled() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}

	logger.Info("Server stopped successfully")
}

// newTokenStore prefers Redis and falls back to the revoked_tokens table
// when Redis is not configured or unreachable.
func newTokenStore(cfg *config.Config, repo repository.RevokedTokenRepository) service.TokenStore {
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err == nil {
			return service.NewRedisTokenStore()
		}
		logger.Warn("Redis unavailable, revoking tokens in the database", map[string]interface{}{
			"addr": cfg.Redis.Addr(),
		})
	}
	return service.NewDBTokenStore(repo)
}

func newImageStorage(cfg *config.Config) storage.ImageStorage {
	if cfg.S3.Enabled() {
		logger.Info("Storing recipe images in S3", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
			"region": cfg.S3.Region,
		})
		return storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	}
	logger.Info("Storing recipe images on local disk", map[string]interface{}{
		"root": cfg.Media.Root,
	})
	return storage.NewLocalStorage(cfg.Media.Root, cfg.Media.URL)
}
