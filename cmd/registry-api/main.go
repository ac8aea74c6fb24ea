package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/affiliate"
	"github.com/emerssive/Chrome-Extension/internal/api"
	"github.com/emerssive/Chrome-Extension/internal/auth"
	"github.com/emerssive/Chrome-Extension/internal/browser"
	"github.com/emerssive/Chrome-Extension/internal/config"
	"github.com/emerssive/Chrome-Extension/internal/database"
	"github.com/emerssive/Chrome-Extension/internal/events"
	"github.com/emerssive/Chrome-Extension/internal/extract"
	"github.com/emerssive/Chrome-Extension/internal/logger"
	"github.com/emerssive/Chrome-Extension/internal/registry"
	"github.com/emerssive/Chrome-Extension/internal/scraper"
	"github.com/emerssive/Chrome-Extension/internal/storage"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, database.Config{
		DSN:      cfg.Database.DSN(),
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			log.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	outbox := database.NewOutboxRepository(db)

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}

		relay := database.NewRelay(db, redisClient, log, database.RelayConfig{
			PollInterval: 5 * time.Second,
			BatchSize:    100,
		})
		go func() {
			if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("relay stopped with error", "error", err)
			}
		}()
	} else {
		log.Warn("redis disabled, product events stay in the outbox")
	}

	source, closeSource := newPageSource(cfg, log)
	defer closeSource()

	var prober extract.ImageProber = extract.NopProber{}
	if cfg.Scraper.ProbeImages {
		prober = extract.NewHTTPProber(cfg.Scraper.ProbeTimeout, cfg.Browser.UserAgent)
	}

	pipeline := extract.NewPipeline(extract.Options{
		Locators:      extract.DefaultLocators(),
		Prober:        prober,
		MaxContainers: cfg.Scraper.MaxContainers,
		Concurrency:   cfg.Scraper.Concurrency,
	}, log)

	scrapeService := scraper.NewService(source, pipeline, scraper.Options{
		SettleDelay:   cfg.Scraper.SettleDelay,
		ScrapeTimeout: cfg.Scraper.ScrapeTimeout,
		RateLimitMin:  cfg.Scraper.RateLimitMin,
		RateLimitMax:  cfg.Scraper.RateLimitMax,
	}, log)

	scrapeStore, err := storage.NewScrapeStore(cfg.Storage.ScrapeFile)
	if err != nil {
		log.Error("failed to open scrape store", "error", err)
		os.Exit(1)
	}

	links, err := affiliate.New(cfg.Affiliate.BaseURL)
	if err != nil {
		log.Error("invalid affiliate config", "error", err)
		os.Exit(1)
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	publisher := events.NewPublisher(outbox, cfg.Redis.Stream, log)
	registryService := registry.NewService(db, publisher, issuer, links, log)

	handlers := api.NewHandlers(registryService, scrapeService, scrapeStore, outbox, log)
	router := api.NewRouter(handlers, issuer, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Scraper.ScrapeTimeout + 15*time.Second,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// newPageSource prefers a headless browser so client-rendered listings are
// visible, and falls back to plain HTTP when the browser is disabled or fails
// to start.
func newPageSource(cfg *config.Config, log *slog.Logger) (scraper.PageSource, func()) {
	static := scraper.NewStaticSource(cfg.Browser.Timeout, cfg.Browser.UserAgent)
	if !cfg.Browser.Enabled {
		log.Info("browser disabled, using static page source")
		return static, func() {}
	}

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		Locale:         cfg.Browser.Locale,
		ExtraHeaders:   browser.DefaultOptions().ExtraHeaders,
	}, log)
	if err != nil {
		log.Warn("browser unavailable, using static page source", "error", err)
		return static, func() {}
	}

	return b, func() {
		if err := b.Close(); err != nil {
			log.Error("failed to close browser", "error", err)
		}
	}
}
