package main

import (
	"context"
	"fmt"
	"time"

	"github.com/NomadCrew/feedback-collector/apiclient"
	"github.com/NomadCrew/feedback-collector/config"
	"github.com/NomadCrew/feedback-collector/handlers"
	"github.com/NomadCrew/feedback-collector/handlers/webui"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/router"
	"github.com/NomadCrew/feedback-collector/services"
	"github.com/NomadCrew/feedback-collector/services/session"
	"github.com/NomadCrew/feedback-collector/services/simpleform"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/NomadCrew/feedback-collector/web"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateWeb(); err != nil {
			return err
		}
		return runWeb(cmd.Context(), cfg)
	},
}

func runWeb(ctx context.Context, cfg *config.Config) error {
	log := logger.Component("web")
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	health := services.NewHealthService(cfg.Server.Version).
		AddCheck(types.ComponentCollectionAPI, true, client)

	var sessions session.Store
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		sessions = session.NewMemoryStore(cfg.Session.MaxEntries, cfg.Session.TTL)
	default:
		redisClient := redis.NewClient(config.RedisOptions(&cfg.Redis))
		defer redisClient.Close()
		if err := config.PingRedis(ctx, redisClient, 5, 2*time.Second); err != nil {
			return fmt.Errorf("session store unavailable: %w", err)
		}
		sessions = session.NewRedisStore(redisClient, cfg.Session.TTL)
		health.AddRedisCheck(redisClient, true)
	}

	var simple *simpleform.CSVLog
	if cfg.SimpleForm.Enabled {
		simple = simpleform.NewCSVLog(cfg.SimpleForm.CSVPath)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	h := webui.NewHandler(client, sessions, simple, webui.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Web.SecureCookie,
		MaxAge: cfg.Session.TTL,
	})
	engine := router.SetupWebRouter(router.WebDependencies{
		Config:        cfg,
		Templates:     tmpl,
		WebHandler:    h,
		HealthHandler: handlers.NewHealthHandler(health),
	})

	log.Infow("Web UI configured",
		"api", cfg.APIClient.BaseURL,
		"session_backend", cfg.Session.Backend,
		"simple_form", cfg.SimpleForm.Enabled)
	return serve("web", newHTTPServer(cfg.Web.Port, engine))
}

func newAPIClient(cfg *config.Config) (*apiclient.Client, error) {
	return apiclient.New(cfg.APIClient.BaseURL, cfg.APIClient.Timeout(),
		apiclient.WithAdminUser(cfg.Admin.Username),
		apiclient.WithCatalogCache(time.Duration(cfg.APIClient.CatalogCacheSeconds)*time.Second),
	)
}

func init() {
	rootCmd.AddCommand(webCmd)
}
