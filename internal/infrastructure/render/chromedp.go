package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rentroll/backend/internal/domain/invoicing"
	"github.com/rentroll/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultRenderTimeout = 30 * time.Second
	defaultPaperWidth    = 8.5 // US Letter, inches
	defaultPaperHeight   = 11.0
	marginInches         = 0.5
)

// ChromeRenderer renders invoice documents to PDF through the Chrome
// DevTools Protocol. One allocator is shared across renders; each
// Render call gets its own browser context.
type ChromeRenderer struct {
	cfg         config.RenderConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeRenderer creates a chromedp-backed invoice renderer
func NewChromeRenderer(cfg config.RenderConfig, logger *zap.Logger) (*ChromeRenderer, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRenderTimeout
	}
	if cfg.PaperWidth == 0 {
		cfg.PaperWidth = defaultPaperWidth
	}
	if cfg.PaperHeight == 0 {
		cfg.PaperHeight = defaultPaperHeight
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromeRenderer{cfg: cfg, logger: logger}
	r.initAllocator()
	return r, nil
}

// NewRenderer builds the renderer the configuration asks for. With
// rendering disabled it returns the no-op renderer so invoice assembly
// still works on hosts without a browser.
func NewRenderer(cfg config.RenderConfig, logger *zap.Logger) (invoicing.Renderer, error) {
	if !cfg.Enabled {
		return invoicing.NopRenderer{}, nil
	}
	return NewChromeRenderer(cfg, logger)
}

func (r *ChromeRenderer) initAllocator() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ChromePath))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Render produces the PDF statement for one invoice
func (r *ChromeRenderer) Render(ctx context.Context, invoice *invoicing.Invoice) (*invoicing.RenderedInvoice, error) {
	if invoice == nil {
		return nil, fmt.Errorf("render: invoice is nil")
	}

	html, err := buildInvoiceHTML(invoice)
	if err != nil {
		return nil, fmt.Errorf("render: building invoice HTML: %w", err)
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	var pdfData []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(r.cfg.PaperWidth).
				WithPaperHeight(r.cfg.PaperHeight).
				WithMarginTop(marginInches).
				WithMarginRight(marginInches).
				WithMarginBottom(marginInches).
				WithMarginLeft(marginInches).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("render: timed out after %v: %w", r.cfg.Timeout, err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, fmt.Errorf("render: chromedp execution failed: %w", err)
	}
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("render: generated PDF is empty")
	}

	r.logger.Info("invoice PDF rendered",
		zap.String("lot", invoice.Snapshot.LotCode),
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(start)))

	return &invoicing.RenderedInvoice{
		FileName: invoiceFileName(invoice),
		MIMEType: "application/pdf",
		Content:  pdfData,
	}, nil
}

// Close releases the shared Chrome allocator
func (r *ChromeRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// invoiceFileName names the document after the lot and statement cycle
func invoiceFileName(invoice *invoicing.Invoice) string {
	lot := strings.ReplaceAll(invoice.Snapshot.LotCode, " ", "-")
	if lot == "" {
		lot = invoice.AccountID.String()
	}
	return fmt.Sprintf("invoice-%s-%s.pdf", lot, invoice.StatementDate.Format("2006-01"))
}

// Ensure ChromeRenderer implements the domain contract
var _ invoicing.Renderer = (*ChromeRenderer)(nil)
