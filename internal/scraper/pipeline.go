package scraper

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"quotescraper/internal/quote"
	"quotescraper/internal/render"
	"quotescraper/internal/runctx"
	"quotescraper/pkg/gemini"
	"quotescraper/pkg/storage/filestore"

	"go.uber.org/zap"
)

//go:generate mockgen -package=scraper_test -destination=mock_scraper_test.go -source=pipeline.go Renderer,Model,CredentialSource,Store

// Renderer turns a URL into visible text plus a screenshot.
type Renderer interface {
	Render(ctx context.Context, url string) (render.Page, error)
}

// Model asks the hosted model for structured output.
type Model interface {
	GenerateContent(ctx context.Context, req gemini.Request) (gemini.Response, error)
}

// CredentialSource yields the model API key.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

// Store persists the run's artifacts.
type Store interface {
	WriteScreenshot(path string, png []byte) error
	WriteRecord(path string, rec quote.Record) error
}

// ModelFactory builds a model client for an API key.
type ModelFactory func(apiKey string) Model

type Options struct {
	Symbol         string
	URL            string
	ScreenshotPath string
	OutputPath     string
}

// Pipeline runs one scrape: credential, render, model, normalize, persist.
type Pipeline struct {
	opts        Options
	credentials CredentialSource
	newModel    ModelFactory
	renderer    Renderer
	store       Store
	out         io.Writer
	now         func() time.Time
	logger      *zap.Logger
}

// PipelineOption is a configuration option for the pipeline.
type PipelineOption func(*Pipeline)

// WithOutput sets where the progress line and final record are printed.
func WithOutput(w io.Writer) PipelineOption {
	return func(p *Pipeline) {
		p.out = w
	}
}

// WithClock sets the time source used for the record timestamp.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

func New(opts Options, creds CredentialSource, newModel ModelFactory, renderer Renderer, store Store,
	logger *zap.Logger, options ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		opts:        opts,
		credentials: creds,
		newModel:    newModel,
		renderer:    renderer,
		store:       store,
		out:         os.Stdout,
		now:         time.Now,
		logger:      logger,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Run executes the pipeline once. Any failure aborts the run; price.json is
// only written after the record has been validated.
func (p *Pipeline) Run(ctx context.Context) (quote.Record, error) {
	log := p.logger.With(
		zap.String("runID", runctx.RunID(ctx)),
		zap.String("symbol", p.opts.Symbol),
	)

	fmt.Fprintf(p.out, "Rendering page: %s\n", p.opts.URL)

	apiKey, err := p.credentials.APIKey(ctx)
	if err != nil {
		return quote.Record{}, err
	}
	model := p.newModel(apiKey)

	page, err := p.renderer.Render(ctx, p.opts.URL)
	if err != nil {
		return quote.Record{}, fmt.Errorf("render page: %w", err)
	}

	if p.opts.ScreenshotPath != "" {
		if err := p.store.WriteScreenshot(p.opts.ScreenshotPath, page.Screenshot); err != nil {
			return quote.Record{}, fmt.Errorf("save screenshot: %w", err)
		}
		log.Debug("screenshot saved", zap.String("path", p.opts.ScreenshotPath))
	}

	resp, err := model.GenerateContent(ctx, gemini.Request{
		Instruction: gemini.QuotePrompt(p.opts.Symbol),
		PageText:    page.Text,
		Image:       page.Screenshot,
	})
	if err != nil {
		return quote.Record{}, fmt.Errorf("extract fields: %w", err)
	}

	raw := gemini.ResponseText(resp)
	if raw == "" {
		return quote.Record{}, fmt.Errorf("extract fields: %w", gemini.ErrEmptyResponse)
	}
	log.Debug("model response", zap.String("raw", raw))

	fields, err := quote.Normalize(raw, p.opts.Symbol)
	if err != nil {
		return quote.Record{}, fmt.Errorf("normalize response: %w", err)
	}

	rec := quote.BuildRecord(fields, p.now)

	printed, err := filestore.EncodeRecord(rec, "  ")
	if err != nil {
		return quote.Record{}, fmt.Errorf("encode record: %w", err)
	}
	if _, err := p.out.Write(printed); err != nil {
		return quote.Record{}, fmt.Errorf("print record: %w", err)
	}

	if err := p.store.WriteRecord(p.opts.OutputPath, rec); err != nil {
		return quote.Record{}, fmt.Errorf("save record: %w", err)
	}

	log.Info("quote saved",
		zap.String("path", p.opts.OutputPath),
		zap.Float64("price", rec.Price),
		zap.Float64("change", rec.Change),
		zap.Float64("percentChange", rec.PercentChange),
		zap.String("timestamp", rec.Timestamp),
	)

	return rec, nil
}
