package scraper

import (
	"quotescraper/config"
	"quotescraper/internal/render"
	"quotescraper/pkg/gemini"
	"quotescraper/pkg/storage/filestore"

	"go.uber.org/zap"
)

// NewFromConfig wires the production collaborators: env/SSM credentials,
// headless Chrome, the Gemini REST client and the local file store.
func NewFromConfig(cfg *config.Config, logger *zap.Logger, options ...PipelineOption) *Pipeline {
	renderer := render.NewChrome(render.Options{
		ChromePath:       cfg.Browser.ChromePath,
		WindowWidth:      cfg.Browser.WindowWidth,
		WindowHeight:     cfg.Browser.WindowHeight,
		PageReadyTimeout: cfg.Browser.PageReadyTimeout,
		ElementTimeout:   cfg.Browser.ElementTimeout,
	}, logger.Named("render"))

	newModel := func(apiKey string) Model {
		return gemini.New(gemini.Config{
			BaseURL:     cfg.Model.BaseURL,
			Model:       cfg.Model.Name,
			Timeout:     cfg.Model.Timeout,
			Temperature: cfg.Model.Temperature,
			Debug:       cfg.Model.Debug,
		}, apiKey, logger.Named("gemini"))
	}

	return New(
		Options{
			Symbol:         cfg.Quote.Symbol,
			URL:            cfg.Quote.URL,
			ScreenshotPath: cfg.Output.ScreenshotPath,
			OutputPath:     cfg.Output.Path,
		},
		config.NewCredentials(cfg.Credential),
		newModel,
		renderer,
		filestore.New(),
		logger,
		options...,
	)
}
