package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ainexus/nexus-backend/internal/handlers"
	"github.com/ainexus/nexus-backend/internal/middleware"
)

type RouterConfig struct {
	HealthcheckHandler     *handlers.HealthcheckHandler
	PersonalizationHandler *handlers.PersonalizationHandler
	StatsHandler           *handlers.StatsHandler
	ProfileHandler         *handlers.ProfileHandler
	WorkspaceHandler       *handlers.WorkspaceHandler
	SessionMiddleware      *middleware.SessionMiddleware
	AllowOrigins           []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)

	// Session-scoped
	api := router.Group("/api")
	api.Use(cfg.SessionMiddleware.Attach())
	{
		// Favorites
		api.POST("/favorites", cfg.PersonalizationHandler.AddFavorite)
		api.GET("/favorites", cfg.PersonalizationHandler.ListFavorites)
		api.GET("/favorites/:type/:itemID", cfg.PersonalizationHandler.CheckFavorite)
		api.DELETE("/favorites/:type/:itemID", cfg.PersonalizationHandler.RemoveFavorite)

		// Tutorial progress
		api.POST("/progress/complete", cfg.PersonalizationHandler.CompleteTutorial)
		api.GET("/progress/completed", cfg.PersonalizationHandler.ListCompletedTutorials)
		api.GET("/progress/:tutorialID", cfg.PersonalizationHandler.CheckTutorial)

		// Saved prompts
		api.POST("/prompts", cfg.PersonalizationHandler.SavePrompt)
		api.GET("/prompts", cfg.PersonalizationHandler.ListSavedPrompts)

		// Activity
		api.POST("/activity", cfg.PersonalizationHandler.LogActivity)
		api.GET("/activity", cfg.PersonalizationHandler.RecentActivity)

		// Stats and achievements
		api.GET("/stats", cfg.StatsHandler.GetStats)
		api.GET("/achievements", cfg.StatsHandler.GetAchievements)
		api.GET("/badges", cfg.StatsHandler.ListBadges)

		// Profile
		api.GET("/profile", cfg.ProfileHandler.GetProfile)
		api.PATCH("/profile", cfg.ProfileHandler.UpdateProfile)
		api.DELETE("/profile", cfg.ProfileHandler.DeleteProfile)

		// Workspace export/import
		api.GET("/workspace/export", cfg.WorkspaceHandler.Export)
		api.POST("/workspace/import", cfg.WorkspaceHandler.Import)
	}

	return router
}
