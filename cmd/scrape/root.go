package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/browser"
	"github.com/emerssive/Chrome-Extension/internal/client"
	"github.com/emerssive/Chrome-Extension/internal/config"
	"github.com/emerssive/Chrome-Extension/internal/extract"
	"github.com/emerssive/Chrome-Extension/internal/logger"
	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/emerssive/Chrome-Extension/internal/scraper"
	"github.com/spf13/cobra"
)

var (
	flagStatic   bool
	flagSettle   time.Duration
	flagNoProbe  bool
	flagSave     bool
	flagRegistry int64
	flagAPI      string
	flagEmail    string
	flagPassword string
	flagLogLevel string
)

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&flagStatic, "static", false, "Fetch the page over plain HTTP instead of rendering it in a browser.")
	f.DurationVar(&flagSettle, "settle", time.Second, "How long to let the page render before scraping.")
	f.BoolVar(&flagNoProbe, "no-probe", false, "Keep image URLs without checking that they resolve.")
	f.BoolVar(&flagSave, "save", false, "Save every scraped product to a registry through the API.")
	f.Int64Var(&flagRegistry, "registry", 0, "Registry id to save products into (with --save).")
	f.StringVar(&flagAPI, "api", "http://localhost:3000", "Registry API base URL.")
	f.StringVar(&flagEmail, "email", os.Getenv("REGISTRY_EMAIL"), "Account email for --save.")
	f.StringVar(&flagPassword, "password", os.Getenv("REGISTRY_PASSWORD"), "Account password for --save.")
	f.StringVar(&flagLogLevel, "log-level", "warn", "Log level written to stderr.")
}

var rootCmd = &cobra.Command{
	Use:          "scrape <url>",
	Short:        "Scrapes product listings from a store page and prints them as JSON.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSave && flagRegistry <= 0 {
			return fmt.Errorf("--registry is required with --save")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log := logger.NewWithWriter(os.Stderr, flagLogLevel, "text")

		source, closeSource, err := pageSource(cfg, log)
		if err != nil {
			return err
		}
		defer closeSource()

		opts := extract.DefaultPipelineOptions()
		if !flagNoProbe && cfg.Scraper.ProbeImages {
			opts.Prober = extract.NewHTTPProber(cfg.Scraper.ProbeTimeout, cfg.Browser.UserAgent)
		}

		service := scraper.NewService(source, extract.NewPipeline(opts, log), scraper.Options{
			SettleDelay:   flagSettle,
			ScrapeTimeout: cfg.Scraper.ScrapeTimeout,
		}, log)

		result, err := service.Scrape(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}

		if flagSave {
			return saveAll(cmd.Context(), log, result)
		}
		return nil
	},
}

func pageSource(cfg *config.Config, log *slog.Logger) (scraper.PageSource, func(), error) {
	if flagStatic {
		return scraper.NewStaticSource(cfg.Browser.Timeout, cfg.Browser.UserAgent), func() {}, nil
	}

	opts := browser.DefaultOptions()
	opts.Headless = cfg.Browser.Headless
	opts.Timeout = cfg.Browser.Timeout
	opts.UserAgent = cfg.Browser.UserAgent

	b, err := browser.New(opts, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start browser (try --static): %w", err)
	}

	return b, func() { b.Close() }, nil
}

// saveAll forwards candidates one request at a time so a failure is reported
// per product and does not stop the rest.
func saveAll(ctx context.Context, log *slog.Logger, result *models.ScrapeResult) error {
	c := client.New(flagAPI, 30*time.Second)
	if err := c.Login(ctx, flagEmail, flagPassword); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	var failed int
	for _, p := range result.Products {
		id, err := c.CreateProduct(ctx, flagRegistry, p, result.StoreURL)
		if err != nil {
			failed++
			log.Error("failed to save product", "name", p.Name, "error", err)
			continue
		}
		fmt.Fprintf(os.Stderr, "saved %q as product %d\n", p.Name, id)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d products failed to save", failed, len(result.Products))
	}
	return nil
}
