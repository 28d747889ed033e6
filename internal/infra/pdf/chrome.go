// Package pdf prints HTML documents to PDF with headless Chrome.
package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const defaultTimeout = 30 * time.Second

// A4 in inches.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
)

type Chrome struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	Timeout  time.Duration
}

// NewChrome starts an allocator shared by all renders. Each render opens its
// own tab. Call Close on shutdown.
func NewChrome() *Chrome {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Chrome{allocCtx: allocCtx, cancel: cancel, Timeout: defaultTimeout}
}

func (c *Chrome) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(c.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.Timeout)
	defer cancelTimeout()

	// Stop rendering when the caller goes away.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var out []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Thumbnails load after the document is set.
		chromedp.Sleep(300*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithPreferCSSPageSize(true).
				Do(ctx)
			out = buf
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	return out, nil
}

func (c *Chrome) Close() {
	c.cancel()
}
