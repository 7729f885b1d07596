package server

import (
	"net/http"
	"strings"

	"promo-api/internal/config"
	"promo-api/internal/handlers"
	"promo-api/internal/middleware"
	"promo-api/internal/promo"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with middleware and all promotion
// routes registered.
func NewRouter(cfg config.Config, store promo.PromotionStore) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Configure and apply CORS middleware
	router.Use(configureCORS(cfg))
	router.Use(middleware.CorrelationID())

	// if we are not in production, log the request body
	if cfg.GinMode != "release" {
		router.Use(handlers.LogRequest())
	}

	// Unknown routes and wrong methods answer in the same JSON error
	// shape as the handlers.
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		kind := promo.KindNotFound
		c.JSON(kind.HTTPStatus(), handlers.ErrorResponse{
			Error:   kind.Category(),
			Message: "resource not found",
		})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handlers.ErrorResponse{
			Error:   "Method Not Allowed",
			Message: "method not allowed for this resource",
		})
	})

	common := handlers.NewCommonServices(store)
	promotionHandler := handlers.NewPromotionHandler(common)
	healthHandler := handlers.NewHealthHandler()

	router.GET("/", handlers.Index)
	router.GET("/health", healthHandler.Health)

	promotions := router.Group("/promotions")
	{
		promotions.GET("", promotionHandler.ListPromotions)
		promotions.POST("", handlers.RequireJSONContentType(), promotionHandler.CreatePromotion)

		// Test-support purge; registered before the param routes for
		// readability, though gin resolves static segments first anyway.
		promotions.DELETE("/reset", promotionHandler.ResetPromotions)

		promotions.GET("/:promotion_id", promotionHandler.GetPromotion)
		promotions.PUT("/:promotion_id", handlers.RequireJSONContentType(), promotionHandler.UpdatePromotion)
		promotions.DELETE("/:promotion_id", promotionHandler.DeletePromotion)
		// Overrides are optional on duplicate, so an empty body with no
		// Content-Type must pass; the handler validates the body itself.
		promotions.POST("/:promotion_id/duplicate",
			handlers.RequireAdministrator(),
			promotionHandler.DuplicatePromotion,
		)
	}

	return router
}

// configureCORS returns a configured CORS middleware
func configureCORS(cfg config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	if cfg.CORSAllowedOrigins == "" {
		// Default to localhost if not set
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		origins := strings.Split(cfg.CORSAllowedOrigins, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Accept",
		handlers.RoleHeader, middleware.CorrelationIDHeader,
	}
	corsConfig.ExposeHeaders = []string{"Location", middleware.CorrelationIDHeader}

	return cors.New(corsConfig)
}
