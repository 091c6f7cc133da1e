package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/infrastructure/config"
)

const defaultChromeTimeout = 30 * time.Second

type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// RemoteURL points at a running Chrome; empty launches a local browser
	RemoteURL string
	// NoSandbox is required when Chrome runs as root inside a container
	NoSandbox bool
	Logger    *zap.Logger
}

func ChromedpConfigFrom(cfg config.PrintingConfig, logger *zap.Logger) *ChromedpConfig {
	return &ChromedpConfig{
		DefaultTimeout: cfg.Timeout,
		RemoteURL:      cfg.RemoteURL,
		NoSandbox:      cfg.NoSandbox,
		Logger:         logger,
	}
}

// ChromedpRenderer prints HTML through headless Chrome. Every render opens
// a fresh tab on a shared allocator; the browser itself starts on the
// first render.
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewChromedpRenderer(cfg *ChromedpConfig) *ChromedpRenderer {
	if cfg == nil {
		cfg = &ChromedpConfig{}
	}
	r := &ChromedpRenderer{timeout: cfg.DefaultTimeout, logger: cfg.Logger}
	if r.timeout == 0 {
		r.timeout = defaultChromeTimeout
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tab, closeTab := chromedp.NewContext(r.allocCtx, chromedp.WithLogf(r.logger.Sugar().Debugf))
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, wrapDocument(req)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) (err error) {
			pdf, _, err = printParams(req.Page).Do(ctx)
			return err
		}),
	)
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("rendering aborted after %v", time.Since(start).Round(time.Millisecond)), errors.Join(ctx.Err(), err))
	case err != nil:
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	case len(pdf) == 0:
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	res := &RenderResult{PDFData: pdf, RenderDuration: time.Since(start)}
	r.logger.Debug("PDF rendered", zap.Int("bytes", len(pdf)), zap.Duration("duration", res.RenderDuration))
	return res, nil
}

func validateRequest(req *RenderRequest) error {
	switch {
	case req == nil || strings.TrimSpace(req.HTML) == "":
		return NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	case !req.Page.valid():
		return NewRenderError(ErrCodeInvalidPage, fmt.Sprintf("unusable page %+v", req.Page), nil)
	}
	return nil
}

// printParams converts the page to the inch-based PrintToPDF parameters
func printParams(p Page) *page.PrintToPDFParams {
	margin := mmToInches(p.MarginMM)
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(mmToInches(p.WidthMM)).
		WithPaperHeight(mmToInches(p.HeightMM)).
		WithMarginTop(margin).
		WithMarginRight(margin).
		WithMarginBottom(margin).
		WithMarginLeft(margin).
		WithPreferCSSPageSize(false)
}

// wrapDocument turns an HTML fragment into a document; full documents pass
// through untouched
func wrapDocument(req *RenderRequest) string {
	lower := strings.ToLower(strings.TrimSpace(req.HTML))
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		return req.HTML
	}
	return `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>` +
		html.EscapeString(req.Title) + `</title></head><body>` + req.HTML + `</body></html>`
}

func (r *ChromedpRenderer) Close() error {
	r.allocCancel()
	return nil
}

func mmToInches(mm float64) float64 { return mm / 25.4 }

var _ PDFRenderer = (*ChromedpRenderer)(nil)
