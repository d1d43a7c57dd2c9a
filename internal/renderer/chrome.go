package renderer

import (
	"context"
	"fmt"
	"log"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeEngine drives a single headless Chrome instance. Each render runs in
// its own tab so concurrent renders do not share page state.
type ChromeEngine struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
}

// NewChromeEngine launches the browser. Call Close to shut it down.
func NewChromeEngine(ctx context.Context) (*ChromeEngine, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserStop := chromedp.NewContext(allocCtx)

	// Start the browser up front so the first render does not pay for it.
	if err := chromedp.Run(browserCtx); err != nil {
		browserStop()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Printf("Renderer browser started")

	return &ChromeEngine{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		browserStop: browserStop,
	}, nil
}

func (e *ChromeEngine) RenderPDF(ctx context.Context, html string, opts Options) ([]byte, error) {
	width, height := opts.Paper()
	top, bottom, left, right := opts.MarginInches()

	var pdf []byte
	err := e.runInTab(ctx, html, chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(width).
			WithPaperHeight(height).
			WithLandscape(opts.Orientation == OrientationLandscape).
			WithMarginTop(top).
			WithMarginBottom(bottom).
			WithMarginLeft(left).
			WithMarginRight(right).
			Do(ctx)
		if err != nil {
			return err
		}
		pdf = buf
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}
	return pdf, nil
}

func (e *ChromeEngine) RenderThumbnail(ctx context.Context, html string) ([]byte, error) {
	var png []byte
	err := e.runInTab(ctx, html,
		chromedp.EmulateViewport(794, 1123),
		chromedp.CaptureScreenshot(&png),
	)
	if err != nil {
		return nil, fmt.Errorf("thumbnail render failed: %w", err)
	}
	return png, nil
}

func (e *ChromeEngine) Close() error {
	e.browserStop()
	e.allocCancel()
	return nil
}

// runInTab opens a fresh tab, loads the document and runs the capture
// actions. The tab is closed when the render finishes.
func (e *ChromeEngine) runInTab(ctx context.Context, html string, actions ...chromedp.Action) error {
	tabCtx, cancel := chromedp.NewContext(e.browserCtx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var timeoutCancel context.CancelFunc
		tabCtx, timeoutCancel = context.WithDeadline(tabCtx, deadline)
		defer timeoutCancel()
	}

	all := append([]chromedp.Action{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
	}, actions...)

	return chromedp.Run(tabCtx, all...)
}
