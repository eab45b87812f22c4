package main

import (
	"context"
	"fmt"
	"time"

	"github.com/NomadCrew/feedback-collector/catalog"
	"github.com/NomadCrew/feedback-collector/config"
	"github.com/NomadCrew/feedback-collector/db"
	"github.com/NomadCrew/feedback-collector/handlers"
	"github.com/NomadCrew/feedback-collector/internal/store/postgres"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/router"
	"github.com/NomadCrew/feedback-collector/services"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var apiMigrate bool

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the collection API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateAPI(); err != nil {
			return err
		}
		return runAPI(cmd.Context(), cfg)
	},
}

func runAPI(ctx context.Context, cfg *config.Config) error {
	log := logger.Component("api")
	if ctx == nil {
		ctx = context.Background()
	}

	if apiMigrate {
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := db.Connect(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	catStore := catalog.NewStore(cat)
	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := catalog.Watch(watchCtx, cfg.Catalog.Path, catStore); err != nil {
				log.Errorw("Catalog watcher stopped", "error", err)
			}
		}()
	}

	redisClient := redis.NewClient(config.RedisOptions(&cfg.Redis))
	defer redisClient.Close()
	if err := config.PingRedis(ctx, redisClient, 3, time.Second); err != nil {
		// Submissions are not limited while Redis is away.
		log.Warnw("Redis unavailable, submit rate limiting fails open", "error", err)
	}

	feedbackStore := postgres.NewFeedbackStore(pool)
	health := services.NewHealthService(cfg.Server.Version).
		AddCheck(types.ComponentDatabase, true, feedbackStore).
		AddRedisCheck(redisClient, false)

	engine := router.SetupAPIRouter(router.APIDependencies{
		Config:          cfg,
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackStore, catStore),
		HealthHandler:   handlers.NewHealthHandler(health),
		RateLimiter:     services.NewRateLimitService(redisClient),
	})

	log.Infow("Collection API configured",
		"categories", len(catStore.ListCategories()),
		"catalog", catalogSource(cfg.Catalog.Path),
		"submit_limit", cfg.RateLimit.SubmitPerMinute)
	return serve("api", newHTTPServer(cfg.Server.Port, engine))
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

func init() {
	apiCmd.Flags().BoolVar(&apiMigrate, "migrate", false, "Apply pending migrations before serving")
	rootCmd.AddCommand(apiCmd)
}
