package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	generatePath = "/v1beta/models/{model}:generateContent"
	apiKeyHeader = "x-goog-api-key"
	jsonMIME     = "application/json"
	pngMIME      = "image/png"
	errBodyLimit = 512
)

var (
	ErrModelRequest  = errors.New("model request failed")
	ErrEmptyResponse = errors.New("model returned no text")
)

type Config struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	Debug       bool
}

// Client calls the Gemini generateContent REST endpoint with a structured
// output schema.
type Client struct {
	client      *resty.Client
	model       string
	temperature float64
	schema      any
	logger      *zap.Logger
}

// New builds a client bound to one API key. The key is passed explicitly so
// nothing process-global is configured.
func New(cfg Config, apiKey string, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetDebug(cfg.Debug).
		SetTimeout(cfg.Timeout).
		SetBaseURL(cfg.BaseURL).
		SetLogger(logger.Sugar()).
		SetHeader(apiKeyHeader, apiKey)

	return &Client{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		schema:      QuoteSchema,
		logger:      logger,
	}
}

// GenerateContent sends the instruction, page text and screenshot as a single
// user turn and returns the decoded reply.
func (c *Client) GenerateContent(ctx context.Context, req Request) (Response, error) {
	// a part with neither text nor data is rejected by the API
	var parts []Part
	for _, text := range []string{req.Instruction, req.PageText} {
		if text != "" {
			parts = append(parts, Part{Text: text})
		}
	}
	if len(req.Image) > 0 {
		parts = append(parts, Part{InlineData: &InlineData{MimeType: pngMIME, Data: req.Image}})
	}

	body := generateRequest{
		Contents: []Content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:        c.temperature,
			ResponseMimeType:   jsonMIME,
			ResponseJSONSchema: c.schema,
		},
	}

	c.logger.Debug("start GenerateContent request",
		zap.String("model", c.model),
		zap.Int("pageTextLen", len(req.PageText)),
		zap.Int("imageBytes", len(req.Image)),
	)

	var out Response
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", jsonMIME).
		SetHeader("Accept", jsonMIME).
		SetPathParam("model", c.model).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post(generatePath)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrModelRequest, err)
	}

	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = truncate(resp.String(), errBodyLimit)
		}
		return Response{}, fmt.Errorf("%w: %s -> %d: %s", ErrModelRequest, c.model, resp.StatusCode(), msg)
	}

	c.logger.Debug("GenerateContent request complete",
		zap.Int("status", resp.StatusCode()),
		zap.Int("candidates", len(out.Candidates)),
	)

	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
