package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mavenestudio/config"
	"mavenestudio/db"
	"mavenestudio/handlers"
	"mavenestudio/middleware"
	"mavenestudio/models"
	"mavenestudio/services"
	"mavenestudio/services/i18n"
	"mavenestudio/services/leadform"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	if err := i18n.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load translations")
	}
	i18n.SetDefaultLanguage(cfg.DefaultLanguage)

	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Lead{}, &models.AnalyticsEvent{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	services.InitializeStorage(cfg)
	middleware.InitAssetVersions("static")

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := services.NewRedisClient(rootCtx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, keeping wizard sessions in memory")
		} else {
			redisClient = client
			defer redisClient.Close()
			log.Info().Msg("Redis connection established")
		}
	}

	store := services.NewWizardStore(redisClient, cfg.SessionTTL, services.WizardLockTTL(cfg.LeadTimeout))
	if mem, ok := store.(*services.MemoryWizardStore); ok {
		go runEvery(rootCtx, 5*time.Minute, func() {
			if n := mem.Cleanup(); n > 0 {
				log.Debug().Int("removed", n).Msg("Expired wizard sessions removed")
			}
		})
	}

	telegram := telegramNotifier(cfg)
	security := services.NewSecurityMonitor(func(a services.SecurityAlert) {
		if telegram == nil {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := telegram.Send(ctx, services.FormatSecurityAlert(a)); err != nil {
				log.Warn().Err(err).Msg("Failed to send security alert")
			}
		}()
	})
	go runEvery(rootCtx, time.Hour, security.Cleanup)

	analytics := services.NewAnalytics(db.DB)
	dispatcher := leadform.NewDispatcher(cfg.LeadWebhookURL, cfg.AutomationWebhookURL, cfg.LeadTimeout)
	pipeline := services.NewLeadPipeline(
		dispatcher,
		db.DB,
		services.Storage,
		leadNotifiers(cfg, telegram)...,
	)
	controller := leadform.NewController(i18n.Lookup, pipeline, analytics)

	var captcha handlers.CaptchaVerifier
	if cfg.TurnstileSecretKey != "" {
		captcha = services.NewTurnstileVerifier(cfg.TurnstileSecretKey, cfg.AppURL).Verify
	}

	contact := &handlers.ContactHandler{
		Store:      store,
		Controller: controller,
		SessionTTL: cfg.SessionTTL,
		Captcha:    captcha,
	}
	leadAPI := &handlers.LeadAPIHandler{
		Submitter: pipeline,
		Validate:  handlers.NewLeadValidator(),
		Captcha:   captcha,
		Tracker:   analytics,
	}
	admin := &handlers.AdminHandler{DB: db.DB, Analytics: analytics}

	limiter := middleware.NewLeadRateLimiter(redisClient)
	defer limiter.Close()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         hstsMaxAge(cfg),
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	e.Use(middleware.CSPNonce(cspImageSources(cfg)...))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.Locale(cfg))
	e.Use(middleware.CSRF(cfg))
	e.Use(middleware.CSRFToContext())
	e.Use(middleware.TrackPageViews(analytics))
	e.Use(middleware.StaticCache())

	e.Static("/static", "static")

	e.GET("/health", func(c echo.Context) error {
		sqlDB, err := db.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/robots.txt", handlers.RobotsHandler)
	e.GET("/sitemap.xml", handlers.GetSitemapHandler)

	// Website
	e.GET("/", handlers.HomeHandler)
	e.GET("/sobre", handlers.WebsiteAboutHandler)
	e.GET("/servicos", handlers.WebsiteServicesHandler)
	e.GET("/portfolio", handlers.PortfolioHandler)
	e.GET("/portfolio/:id", handlers.ProjectHandler)
	e.GET("/termos", handlers.WebsiteTermsHandler)
	e.GET("/privacidade", handlers.WebsitePrivacyHandler)
	e.GET("/language/:lang", handlers.LanguageHandler)

	// Contact wizard
	e.GET("/contato", contact.Show)
	wizard := e.Group("/contato", limiter.Middleware())
	{
		wizard.POST("/next", contact.Next)
		wizard.POST("/back", contact.Back)
		wizard.POST("/input", contact.Input)
		wizard.POST("/service", contact.ToggleService)
	}

	api := e.Group("/api", limiter.Middleware())
	{
		api.POST("/leads", leadAPI.Create)
	}

	adminRoutes := e.Group("/admin", middleware.RequireAdmin(cfg, security))
	{
		adminRoutes.GET("/leads", admin.ListLeads)
		adminRoutes.GET("/leads.xlsx", admin.ExportLeads)
		adminRoutes.GET("/leads/:id", admin.GetLead)
		adminRoutes.GET("/stats", admin.Stats)
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("env", cfg.Environment).Msg("Server starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	pipeline.Wait()
	dispatcher.Wait()
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func telegramNotifier(cfg *config.Config) *services.TelegramNotifier {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == "" {
		return nil
	}
	tg, err := services.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Warn().Err(err).Msg("Telegram notifier disabled")
		return nil
	}
	return tg
}

// leadNotifiers returns the follow-up channels that are configured
func leadNotifiers(cfg *config.Config, telegram *services.TelegramNotifier) []services.LeadNotifier {
	var notifiers []services.LeadNotifier
	if cfg.LeadNotifyEmail != "" {
		if mailer, err := services.NewMailer(cfg); err != nil {
			log.Warn().Err(err).Msg("Email notifier disabled")
		} else {
			notifiers = append(notifiers, &services.EmailNotifier{
				Mailer: mailer,
				To:     cfg.LeadNotifyEmail,
				AppURL: cfg.AppURL,
			})
		}
	}
	if telegram != nil {
		notifiers = append(notifiers, telegram)
	}
	return notifiers
}

func cspImageSources(cfg *config.Config) []string {
	if cfg.R2PublicURL == "" {
		return nil
	}
	return []string{strings.TrimSuffix(cfg.R2PublicURL, "/")}
}

func hstsMaxAge(cfg *config.Config) int {
	if cfg.IsProduction() {
		return 31536000
	}
	return 0
}

// runEvery calls fn on every tick until ctx ends
func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
