package router

import (
	"html/template"
	"time"

	"github.com/NomadCrew/feedback-collector/config"
	"github.com/NomadCrew/feedback-collector/handlers"
	"github.com/NomadCrew/feedback-collector/handlers/webui"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/middleware"
	"github.com/NomadCrew/feedback-collector/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIDependencies holds what the collection API routes need.
type APIDependencies struct {
	Config          *config.Config
	FeedbackHandler *handlers.FeedbackHandler
	HealthHandler   *handlers.HealthHandler
	// RateLimiter may be nil, which disables the submit limit.
	RateLimiter services.RateLimiterInterface
}

// SetupAPIRouter builds the collection API engine.
func SetupAPIRouter(deps APIDependencies) *gin.Engine {
	r := newEngine(deps.Config, "api")
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/categories", deps.FeedbackHandler.ListCategories)
	r.GET("/questions/:category", deps.FeedbackHandler.ListQuestions)

	submit := []gin.HandlerFunc{}
	if deps.RateLimiter != nil {
		rl := deps.Config.RateLimit
		submit = append(submit, middleware.RateLimiter(deps.RateLimiter, "submit",
			rl.SubmitPerMinute, time.Duration(rl.WindowSeconds)*time.Second))
	}
	submit = append(submit, deps.FeedbackHandler.SubmitFeedback)
	r.POST("/submit", submit...)

	admin := r.Group("/admin")
	admin.Use(middleware.AdminBasicAuth(deps.Config.Admin.Username, deps.Config.Admin.Password))
	{
		admin.GET("/all", deps.FeedbackHandler.ListAllFeedback)
	}

	return r
}

// WebDependencies holds what the web UI routes need.
type WebDependencies struct {
	Config        *config.Config
	Templates     *template.Template
	WebHandler    *webui.Handler
	HealthHandler *handlers.HealthHandler
}

// SetupWebRouter builds the web UI engine.
func SetupWebRouter(deps WebDependencies) *gin.Engine {
	r := newEngine(deps.Config, "web")
	r.SetHTMLTemplate(deps.Templates)

	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := deps.WebHandler
	if h.SimpleFormEnabled() {
		r.GET("/simple", h.SimpleFormPage)
		r.POST("/simple", h.SimpleSubmit)
	}

	ui := r.Group("")
	ui.Use(h.LoadSession())
	{
		ui.GET("/login", h.LoginPage)
		ui.POST("/login", h.Login)
		ui.POST("/logout", h.Logout)

		authed := ui.Group("")
		authed.Use(webui.RequireLogin())
		{
			authed.GET("/", h.FormPage)
			authed.POST("/submit", h.Submit)
			authed.GET("/admin", h.AdminPage)
			authed.POST("/admin", h.AdminLogin)
			authed.GET("/admin/feedback.csv", h.ExportCSV)
			authed.GET("/admin/charts/:kind", h.Chart)
		}
	}

	return r
}

// newEngine applies the middleware shared by both servers.
func newEngine(cfg *config.Config, server string) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if len(cfg.Server.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
			logger.GetLogger().Warnw("Invalid trusted proxies, trusting none", "error", err)
			_ = r.SetTrustedProxies(nil)
		}
	} else {
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.MetricsMiddleware(server))
	r.Use(middleware.SecurityHeadersMiddleware(&cfg.Server))
	r.Use(middleware.ErrorHandler())
	return r
}
