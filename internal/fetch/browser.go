package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/adit301104/DrData/internal/config"
	"github.com/adit301104/DrData/internal/logging"
)

const scrollScript = `window.scrollTo(0, document.body.scrollHeight); true`

// BrowserFetcher renders pages in headless Chrome. One browser is started lazily and reused.
type BrowserFetcher struct {
	cfg    config.Config
	logger *zap.Logger

	once        sync.Once
	startErr    error
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	tabCancel   context.CancelFunc
}

func NewBrowserFetcher(cfg config.Config, logger *zap.Logger) *BrowserFetcher {
	return &BrowserFetcher{cfg: cfg, logger: logging.OrNop(logger)}
}

func (b *BrowserFetcher) start() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.BrowserHeadless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)
	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.browserCtx, b.tabCancel = chromedp.NewContext(b.allocCtx)
	// Running an empty task list launches the browser so later tabs share it.
	if err := chromedp.Run(b.browserCtx); err != nil {
		b.startErr = eris.Wrap(err, "start browser")
		return
	}
	b.logger.Info("browser started", zap.Bool("headless", b.cfg.BrowserHeadless))
}

func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	b.once.Do(b.start)
	if b.startErr != nil {
		return "", b.startErr
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()
	timeout := time.Duration(b.cfg.FetchTimeoutMs+b.cfg.BrowserWaitMs) * time.Millisecond
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	wait := time.Duration(b.cfg.BrowserWaitMs) * time.Millisecond
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.Sleep(wait / 2),
		chromedp.Evaluate(scrollScript, nil),
		chromedp.Sleep(wait / 2),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return "", eris.Wrapf(err, "render %s", url)
	}
	return html, nil
}

func (b *BrowserFetcher) Close() {
	if b.tabCancel != nil {
		b.tabCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
}
