package router

import (
	"net/http"
	"time"

	"github.com/foodgram/foodgram-backend/config"
	"github.com/foodgram/foodgram-backend/internal/app/controller"
	"github.com/foodgram/foodgram-backend/internal/metrics"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Controllers groups the HTTP handlers mounted under /api
type Controllers struct {
	Users         *controller.UserController
	Recipes       *controller.RecipeController
	Favorites     *controller.FavoriteController
	ShoppingCart  *controller.ShoppingCartController
	ShoppingList  *controller.ShoppingListController
	Subscriptions *controller.SubscriptionController
	Tags          *controller.TagController
	Ingredients   *controller.IngredientController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	authLimiter    *middleware.RateLimiter
	collector      *metrics.Collector
	gatherer       prometheus.Gatherer
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *middleware.RateLimiter,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		authLimiter:    authLimiter,
		collector:      collector,
		gatherer:       gatherer,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(r.collector))
	if len(r.config.CORS.AllowedOrigins) > 0 {
		router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Foodgram API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler(r.gatherer)))

	// Recipe images when S3 is not configured
	router.Static(r.config.Media.URL, r.config.Media.Root)

	c := r.controllers
	authenticated := r.authMiddleware.Authenticate()
	optional := r.authMiddleware.OptionalAuthenticate()

	api := router.Group("/api")
	{
		auth := api.Group("/auth/token")
		{
			auth.POST("/login", r.authLimiter.Middleware(), c.Users.Login)
			auth.POST("/refresh", r.authLimiter.Middleware(), c.Users.Refresh)
			auth.POST("/logout", authenticated, c.Users.Logout)
		}

		users := api.Group("/users")
		{
			users.POST("", r.authLimiter.Middleware(), c.Users.Register)
			users.GET("", optional, c.Users.ListUsers)
			users.GET("/me", authenticated, c.Users.Me)
			users.POST("/set_password", authenticated, c.Users.SetPassword)
			users.GET("/subscriptions", authenticated, c.Subscriptions.ListSubscriptions)
			users.GET("/:id", optional, c.Users.GetUser)
			users.POST("/:id/subscribe", authenticated, c.Subscriptions.Subscribe)
			users.DELETE("/:id/subscribe", authenticated, c.Subscriptions.Unsubscribe)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", c.Tags.ListTags)
			tags.GET("/:id", c.Tags.GetTag)
		}

		ingredients := api.Group("/ingredients")
		{
			ingredients.GET("", c.Ingredients.ListIngredients)
			ingredients.GET("/:id", c.Ingredients.GetIngredient)
		}

		recipes := api.Group("/recipes")
		{
			recipes.GET("", optional, c.Recipes.ListRecipes)
			recipes.POST("", authenticated, c.Recipes.CreateRecipe)
			recipes.GET("/download_shopping_cart", authenticated, c.ShoppingList.Download)
			recipes.GET("/:id", optional, c.Recipes.GetRecipe)
			recipes.PUT("/:id", authenticated, c.Recipes.UpdateRecipe)
			recipes.PATCH("/:id", authenticated, c.Recipes.PatchRecipe)
			recipes.DELETE("/:id", authenticated, c.Recipes.DeleteRecipe)
			recipes.POST("/:id/favorite", authenticated, c.Favorites.AddFavorite)
			recipes.DELETE("/:id/favorite", authenticated, c.Favorites.RemoveFavorite)
			recipes.POST("/:id/shopping_cart", authenticated, c.ShoppingCart.AddToCart)
			recipes.DELETE("/:id/shopping_cart", authenticated, c.ShoppingCart.RemoveFromCart)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cors.New(cfg)
}
