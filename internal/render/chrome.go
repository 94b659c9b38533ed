package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const readyStateExpr = `document.readyState === "complete"`

type Options struct {
	ChromePath       string
	WindowWidth      int
	WindowHeight     int
	PageReadyTimeout time.Duration
	ElementTimeout   time.Duration
}

// Chrome renders pages in a fresh headless Chrome per call.
type Chrome struct {
	opts   Options
	logger *zap.Logger
}

func NewChrome(opts Options, logger *zap.Logger) *Chrome {
	if opts.WindowWidth <= 0 {
		opts.WindowWidth = 1600
	}
	if opts.WindowHeight <= 0 {
		opts.WindowHeight = 1200
	}
	if opts.PageReadyTimeout <= 0 {
		opts.PageReadyTimeout = 30 * time.Second
	}
	if opts.ElementTimeout <= 0 {
		opts.ElementTimeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chrome{opts: opts, logger: logger}
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(c.opts.WindowWidth, c.opts.WindowHeight),
	)
	if c.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.ChromePath))
	}
	return opts
}

// Render navigates to url, waits for the document and <body>, then captures
// the visible text, the markup and a screenshot. The browser is shut down on
// every return path.
func (c *Chrome) Render(ctx context.Context, url string) (Page, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()

	sugar := c.logger.Sugar()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)
	// cancelling the browser context closes the tab and quits Chrome
	defer cancelBrowser()

	// Start the browser on the long-lived context so the per-step timeouts
	// below do not bound the browser's lifetime.
	if err := chromedp.Run(browserCtx); err != nil {
		return Page{}, fmt.Errorf("%w: start browser: %v", ErrRenderFailure, err)
	}
	c.logger.Debug("browser started", zap.String("url", url))

	var ready bool
	if err := c.step(browserCtx, c.opts.PageReadyTimeout,
		chromedp.Navigate(url),
		chromedp.Poll(readyStateExpr, &ready, chromedp.WithPollingTimeout(c.opts.PageReadyTimeout)),
	); err != nil {
		return Page{}, fmt.Errorf("%w: load %s: %v", ErrRenderFailure, url, err)
	}

	page := Page{URL: url}
	if err := c.step(browserCtx, c.opts.ElementTimeout,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Text("body", &page.Text, chromedp.ByQuery),
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
		chromedp.CaptureScreenshot(&page.Screenshot),
	); err != nil {
		return Page{}, fmt.Errorf("%w: capture %s: %v", ErrRenderFailure, url, err)
	}

	if strings.TrimSpace(page.Text) == "" {
		text, err := VisibleText(page.HTML)
		if err != nil {
			return Page{}, fmt.Errorf("%w: extract text: %v", ErrRenderFailure, err)
		}
		c.logger.Debug("body innerText empty, used markup text", zap.Int("textLen", len(text)))
		page.Text = text
	}

	c.logger.Info("page rendered",
		zap.String("url", url),
		zap.Int("textLen", len(page.Text)),
		zap.Int("screenshotBytes", len(page.Screenshot)),
	)

	return page, nil
}

func (c *Chrome) step(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(stepCtx, actions...)
}
