// internal/router/router.go
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/prop-catalog/internal/config"
	"github.com/javajoker/prop-catalog/internal/handlers"
	"github.com/javajoker/prop-catalog/internal/middleware"
	"github.com/javajoker/prop-catalog/internal/services"
)

// Initialize wires services and handlers onto a new engine. ctx bounds the
// background work started here; recorder may be nil to skip search analytics.
func Initialize(ctx context.Context, db *gorm.DB, cfg *config.Config, recorder services.QueryRecorder) *gin.Engine {
	// Initialize services
	catalogService := services.NewCatalogService(db, services.NewFavoritesStore(db), cfg.Catalog)
	searchService := services.NewSearchService(db, catalogService, recorder, cfg.Catalog)
	duplicateService := services.NewDuplicateService(db, catalogService, cfg.Catalog)
	notificationService := services.NewNotificationService(db, cfg.Catalog)
	submissionService := services.NewSubmissionService(db, catalogService, duplicateService, notificationService, cfg.Catalog)
	taxonomyService := services.NewTaxonomyService(db)

	// Initialize handlers
	furnitureHandler := handlers.NewFurnitureHandler(catalogService, searchService, duplicateService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	adminHandler := handlers.NewAdminHandler(submissionService, searchService)
	taxonomyHandler := handlers.NewTaxonomyHandler(taxonomyService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))

	generalLimit := func(c *gin.Context) { c.Next() }
	submissionLimit := generalLimit
	if cfg.RateLimit.Enabled {
		general, submissions := middleware.NewRateLimiters(cfg.RateLimit)
		go general.Cleanup(ctx)
		go submissions.Cleanup(ctx)
		generalLimit = general.Middleware()
		submissionLimit = submissions.Middleware()
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	// The limiter runs after OptionalAuth so signed-in callers get their own bucket.
	v1.Use(middleware.OptionalAuth(), generalLimit)
	{
		// Furniture routes
		furniture := v1.Group("/furniture")
		{
			furniture.GET("", furnitureHandler.ListFurniture)
			furniture.GET("/search", furnitureHandler.SearchFurniture)
			furniture.GET("/check-duplicates", furnitureHandler.CheckDuplicates)
			furniture.GET("/batch", furnitureHandler.GetFurnitureBatch)
			furniture.GET("/:id", furnitureHandler.GetFurniture)
		}

		// Taxonomy routes (public)
		v1.GET("/categories", taxonomyHandler.ListCategories)
		v1.GET("/tag-groups", taxonomyHandler.ListTagGroups)
		v1.GET("/tags", taxonomyHandler.ListTags)

		// Submission routes
		submissions := v1.Group("/submissions")
		submissions.Use(middleware.AuthRequired())
		{
			submissions.POST("", submissionLimit, submissionHandler.CreateSubmission)
			submissions.GET("", submissionHandler.ListMySubmissions)
			submissions.GET("/:id", submissionHandler.GetSubmission)
			submissions.PUT("/:id", submissionLimit, submissionHandler.UpdateSubmission)
			submissions.POST("/:id/cancel", submissionHandler.CancelSubmission)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/:id/read", notificationHandler.MarkNotificationRead)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// Moderation
			adminSubmissions := admin.Group("/submissions")
			{
				adminSubmissions.GET("", adminHandler.GetReviewQueue)
				adminSubmissions.POST("/:id/approve", adminHandler.ApproveSubmission)
				adminSubmissions.POST("/:id/reject", adminHandler.RejectSubmission)
			}

			// Direct catalog edits
			adminFurniture := admin.Group("/furniture")
			{
				adminFurniture.POST("", furnitureHandler.CreateFurniture)
				adminFurniture.PUT("/:id", furnitureHandler.UpdateFurniture)
				adminFurniture.DELETE("/:id", furnitureHandler.DeleteFurniture)
			}

			// Taxonomy management
			adminCategories := admin.Group("/categories")
			{
				adminCategories.POST("", taxonomyHandler.SaveCategory)
				adminCategories.PUT("/:id", taxonomyHandler.SaveCategory)
				adminCategories.DELETE("/:id", taxonomyHandler.DeleteCategory)
			}

			adminTagGroups := admin.Group("/tag-groups")
			{
				adminTagGroups.POST("", taxonomyHandler.SaveTagGroup)
				adminTagGroups.PUT("/:id", taxonomyHandler.SaveTagGroup)
				adminTagGroups.DELETE("/:id", taxonomyHandler.DeleteTagGroup)
			}

			adminTags := admin.Group("/tags")
			{
				adminTags.POST("", taxonomyHandler.SaveTag)
				adminTags.PUT("/:id", taxonomyHandler.SaveTag)
				adminTags.DELETE("/:id", taxonomyHandler.DeleteTag)
			}

			// Analytics
			admin.GET("/search/stats", adminHandler.GetSearchStats)
		}
	}

	return r
}
