package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/fantasyprojections/engine/internal/adjust"
	"github.com/fantasyprojections/engine/internal/baseline"
	"github.com/fantasyprojections/engine/internal/cache"
	"github.com/fantasyprojections/engine/internal/config"
	"github.com/fantasyprojections/engine/internal/database"
	"github.com/fantasyprojections/engine/internal/export"
	"github.com/fantasyprojections/engine/internal/handlers"
	"github.com/fantasyprojections/engine/internal/middleware"
	"github.com/fantasyprojections/engine/internal/override"
	"github.com/fantasyprojections/engine/internal/reconcile"
	"github.com/fantasyprojections/engine/internal/rookie"
	"github.com/fantasyprojections/engine/internal/scenario"
	"github.com/fantasyprojections/engine/internal/store"
	"github.com/fantasyprojections/engine/internal/teamadjust"
	"github.com/fantasyprojections/engine/internal/variance"
	"github.com/fantasyprojections/engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: "json"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgresDB(database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		Database:    cfg.Database.Name,
		SSLMode:     cfg.Database.SSLMode,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		MaxConnAge:  cfg.Database.MaxConnAge,
		ConnTimeout: cfg.Database.ConnTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal("database health check failed", "error", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to Redis", "error", err)
	}

	projectionCache, err := cache.NewLRUCache(cfg.Cache.Size, redisClient, cfg.Cache.InvalidateChannel, log)
	if err != nil {
		log.Fatal("failed to initialize cache", "error", err)
	}

	s := store.New(db.DB)

	players := store.NewPlayerRepository(db.DB)
	baseStats := store.NewBaseStatRepository(db.DB)
	gameLogs := store.NewGameLogRepository(db.DB)
	teamStats := store.NewTeamStatRepository(db.DB)
	projections := store.NewProjectionRepository(db.DB)
	scenarios := store.NewScenarioRepository(db.DB)
	overrides := store.NewOverrideRepository(db.DB)
	rookieTemplates := store.NewRookieTemplateRepository(db.DB)

	baselineBuilder := baseline.NewBuilder(players, baseStats, teamStats, projections, s)
	adjustService := adjust.NewService(projections, s)
	teamAdjustService := teamadjust.NewService(players, projections, s)
	overrideService := override.NewService(overrides, projections, players, s)
	scenarioService := scenario.NewService(scenarios, projections, overrides, s, projectionCache)
	varianceService := variance.NewService(projections, players, gameLogs, scenarios, s, cfg.Variance.MinGamesEmpirical)
	rookieService := rookie.NewService(rookieTemplates, players, projections, s)
	reconcileService := reconcile.NewService(players, projections, teamStats, s)
	exportService := export.NewService(projections, players)

	healthHandler := handlers.NewHealthHandler(db, redisClient)
	projectionsHandler := handlers.NewProjectionsHandler(baselineBuilder, adjustService, teamAdjustService, projections, teamStats, players)
	scenariosHandler := handlers.NewScenariosHandler(scenarioService)
	overridesHandler := handlers.NewOverridesHandler(overrideService)
	varianceHandler := handlers.NewVarianceHandler(varianceService, cfg.Variance.DefaultConfidence)
	rookiesHandler := handlers.NewRookiesHandler(rookieTemplates, rookieService)
	batchHandler := handlers.NewBatchHandler(baselineBuilder, adjustService, scenarioService)
	reconcileHandler := handlers.NewReconcileHandler(reconcileService)
	exportHandler := handlers.NewExportHandler(exportService)

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))

	r.GET("/health", healthHandler.Health)
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Fantasy Projections Engine",
			"version": "0.1.0",
		})
	})

	api := r.Group("/api")
	{
		api.POST("/projections", projectionsHandler.Create)
		api.GET("/projections/:id", projectionsHandler.Get)
		api.GET("/players/:player_id/projections", projectionsHandler.ListByPlayer)
		api.GET("/scenarios/:scenario_id/projections", projectionsHandler.ListByScenario)
		api.POST("/projections/:id/adjust", projectionsHandler.Adjust)
		api.POST("/teams/:team/adjust", projectionsHandler.TeamAdjust)

		api.POST("/scenarios", scenariosHandler.Create)
		api.GET("/scenarios", scenariosHandler.List)
		api.GET("/scenarios/:id", scenariosHandler.Get)
		api.POST("/scenarios/:id/clone", scenariosHandler.Clone)
		api.DELETE("/scenarios/:id", scenariosHandler.Delete)
		api.POST("/scenarios/compare", scenariosHandler.Compare)

		api.POST("/overrides", overridesHandler.Create)
		api.GET("/players/:player_id/overrides", overridesHandler.ListByPlayer)
		api.GET("/projections/:id/overrides", overridesHandler.ListByProjection)
		api.DELETE("/overrides/:id", overridesHandler.Delete)
		api.POST("/overrides/batch", overridesHandler.Batch)

		api.GET("/projections/:id/variance", varianceHandler.Calculate)
		api.GET("/projections/:id/range", varianceHandler.Range)

		api.GET("/rookie-templates/:position", rookiesHandler.TemplatesByPosition)
		api.POST("/rookies/:player_id/projections", rookiesHandler.Build)

		api.POST("/batch/projections", batchHandler.CreateProjections)
		api.POST("/batch/projections/adjust", batchHandler.AdjustProjections)
		api.POST("/batch/scenarios", batchHandler.CreateScenarios)

		api.POST("/teams/:team/reconcile", reconcileHandler.Reconcile)

		api.GET("/export", exportHandler.Export)
	}

	port := cfg.Server.Port
	if port == "" {
		port = os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
	}

	log.Info("starting server", "port", port)
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", "error", err)
	}
}
