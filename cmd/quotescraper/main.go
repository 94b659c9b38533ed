package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quotescraper/config"
	"quotescraper/internal/runctx"
	"quotescraper/internal/scheduler"
	"quotescraper/internal/scraper"
	"quotescraper/logger"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "quotescraper",
		Usage:  "capture a SET stock quote with headless Chrome and Gemini, save it as JSON",
		Flags:  []cli.Flag{configFlag()},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "scrape the quote once and write price.json",
				Flags:  runFlags(),
				Action: runAction,
			},
			{
				Name:  "watch",
				Usage: "scrape on a cron schedule or fixed interval until interrupted",
				Flags: append(runFlags(),
					&cli.StringFlag{Name: "cron", Usage: "five-field crontab, overrides schedule.cron"},
					&cli.DurationFlag{Name: "every", Usage: "fixed interval such as 5m, overrides schedule.every and the crontab"},
					&cli.BoolFlag{Name: "now", Usage: "also run once at startup"},
				),
				Action: watchAction,
			},
		},
	}
}

// configFlag is accepted both before and after the subcommand.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to config.yaml",
		EnvVars: []string{"QUOTESCRAPER_CONFIG"},
	}
}

// configPath returns the innermost --config value given on the command line.
func configPath(c *cli.Context) string {
	for _, lc := range c.Lineage() {
		if v := lc.String("config"); v != "" {
			return v
		}
	}
	return ""
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "record path, overrides output.path"},
		&cli.StringFlag{Name: "screenshot", Usage: "screenshot path, overrides output.screenshot_path"},
		&cli.StringFlag{Name: "url", Usage: "quote page URL, overrides quote.url"},
		&cli.StringFlag{Name: "symbol", Usage: "ticker symbol, overrides quote.symbol"},
	}
}

// setup loads config, applies flag overrides and builds the logger.
func setup(c *cli.Context) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath(c))
	if err != nil {
		return nil, nil, err
	}

	if v := c.String("output"); v != "" {
		cfg.Output.Path = v
	}
	if v := c.String("screenshot"); v != "" {
		cfg.Output.ScreenshotPath = v
	}
	if v := c.String("url"); v != "" {
		cfg.Quote.URL = v
	}
	if v := c.String("symbol"); v != "" {
		cfg.Quote.Symbol = v
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func runAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = runctx.New(ctx)

	if _, err := scraper.NewFromConfig(cfg, log).Run(ctx); err != nil {
		log.Error("scrape failed", zap.String("runID", runctx.RunID(ctx)), zap.Error(err))
		return cli.Exit("", 1)
	}
	return nil
}

func watchAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	crontab := cfg.Schedule.Cron
	if v := c.String("cron"); v != "" {
		crontab = v
	}
	every := cfg.Schedule.Every
	if v := c.Duration("every"); v > 0 {
		every = v
	}

	sched, err := scheduler.New(cfg.Schedule.Timezone, log.Named("scheduler"))
	if err != nil {
		return err
	}

	pipeline := scraper.NewFromConfig(cfg, log)
	scrape := func(ctx context.Context) error {
		_, err := pipeline.Run(ctx)
		return err
	}
	if err := sched.Schedule("scrape-"+cfg.Quote.Symbol, scrape, crontab, every, c.Bool("now")); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("watching quote",
		zap.String("symbol", cfg.Quote.Symbol),
		zap.String("cron", crontab),
		zap.Duration("every", every),
		zap.String("timezone", cfg.Schedule.Timezone),
	)
	sched.Start()

	<-ctx.Done()
	log.Info("shutting down")
	sched.Stop()
	return nil
}
