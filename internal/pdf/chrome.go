package pdf

import (
	"context"
	"os/exec"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const mmPerInch = 25.4

// A4 with 20mm top and bottom margins and 15mm side margins.
const (
	paperWidth   = 8.27
	paperHeight  = 11.69
	marginTop    = 20 / mmPerInch
	marginBottom = 20 / mmPerInch
	marginSide   = 15 / mmPerInch
)

// ChromeCandidates are looked up on PATH when no explicit binary is set.
var ChromeCandidates = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"headless-shell",
}

var lookPath = exec.LookPath

// ResolveExecPath picks the browser binary: explicit when set, then the first
// candidate found on PATH, then the packaged fallback.
func ResolveExecPath(explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range ChromeCandidates {
		if path, err := lookPath(name); err == nil {
			return path
		}
	}
	return fallback
}

// ChromeEngine launches one headless browser process per instance.
type ChromeEngine struct {
	ExecPath string
}

func NewChromeEngine(execPath string) *ChromeEngine {
	return &ChromeEngine{ExecPath: execPath}
}

func (c *ChromeEngine) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}
	return opts
}

// Launch starts a browser. The process lives until Close, not until ctx is
// done; the exporter bounds the wait and closes instances that arrive late.
func (c *ChromeEngine) Launch(_ context.Context) (Instance, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), c.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	inst := &chromeInstance{ctx: browserCtx, cancel: func() {
		browserCancel()
		allocCancel()
	}}
	// an empty Run starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		inst.Close()
		return nil, err
	}
	return inst, nil
}

type chromeInstance struct {
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (i *chromeInstance) PrintPDF(ctx context.Context, html []byte) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(i.ctx)
	defer cancel()
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
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(marginTop).
				WithMarginBottom(marginBottom).
				WithMarginLeft(marginSide).
				WithMarginRight(marginSide).
				Do(ctx)
			if err != nil {
				return err
			}
			out = data
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (i *chromeInstance) Close() error {
	var err error
	i.closeOnce.Do(func() {
		err = chromedp.Cancel(i.ctx)
		i.cancel()
	})
	return err
}
