package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/config"
	"github.com/ainexus/nexus-backend/internal/db"
	"github.com/ainexus/nexus-backend/internal/handlers"
	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/middleware"
	"github.com/ainexus/nexus-backend/internal/repos"
	"github.com/ainexus/nexus-backend/internal/server"
	"github.com/ainexus/nexus-backend/internal/services"
	"github.com/ainexus/nexus-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	sessionSecret := utils.GetEnv("SESSION_SECRET_KEY", "defaultsecret", log)
	sessionTTL := time.Duration(utils.GetEnvAsInt("SESSION_TTL_SECONDS", 2592000, log)) * time.Second
	policyPath := utils.GetEnv("POLICY_PATH", "", log)
	allowOrigins := strings.Split(utils.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5174", log), ",")

	// Policy
	policy, err := config.LoadPolicy(policyPath, log)
	if err != nil {
		log.Error("Policy load failed", "path", policyPath, "error", err)
		os.Exit(1)
	}

	// Durable store. Init failure degrades to the session-scoped store
	// instead of aborting startup.
	var theDB *gorm.DB
	dbService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Warn("Durable store init failed, running session-only", "error", err)
	} else if err := dbService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed, running session-only", "error", err)
	} else {
		theDB = dbService.DB()
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(theDB, log)
	favoriteRepo := repos.NewFavoriteRepo(theDB, log)
	progressRepo := repos.NewProgressRepo(theDB, log)
	activityRepo := repos.NewActivityRepo(theDB, log)
	savedPromptRepo := repos.NewSavedPromptRepo(theDB, log)
	badgeRepo := repos.NewBadgeRepo(theDB, log)
	userStatsRepo := repos.NewUserStatsRepo(theDB, log)

	// Services
	log.Info("Setting up Services from main...")
	identityService := services.NewIdentityService(theDB, log, userRepo, userStatsRepo)
	sessionBackend := services.NewSessionBackend(log, policy.ActivityRetention)
	var statsService services.StatsService
	if theDB != nil {
		statsService = services.NewStatsService(theDB, log, policy, userStatsRepo)
	}
	personalizationService := services.NewPersonalizationService(
		theDB,
		log,
		policy,
		statsService,
		sessionBackend,
		favoriteRepo,
		progressRepo,
		activityRepo,
		savedPromptRepo,
		badgeRepo,
	)
	userService := services.NewUserService(theDB, log, identityService, userRepo, favoriteRepo, progressRepo, activityRepo, savedPromptRepo, badgeRepo, userStatsRepo)
	workspaceService := services.NewWorkspaceService(log, personalizationService)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthcheckHandler := handlers.NewHealthcheckHandler()
	personalizationHandler := handlers.NewPersonalizationHandler(log, personalizationService)
	statsHandler := handlers.NewStatsHandler(log, personalizationService)
	profileHandler := handlers.NewProfileHandler(log, userService)
	workspaceHandler := handlers.NewWorkspaceHandler(log, workspaceService)

	// Middleware
	log.Info("Setting up middleware from main...")
	sessionMiddleware := middleware.NewSessionMiddleware(log, sessionSecret, sessionTTL, identityService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		HealthcheckHandler:     healthcheckHandler,
		PersonalizationHandler: personalizationHandler,
		StatsHandler:           statsHandler,
		ProfileHandler:         profileHandler,
		WorkspaceHandler:       workspaceHandler,
		SessionMiddleware:      sessionMiddleware,
		AllowOrigins:           allowOrigins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
