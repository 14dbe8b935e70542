package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/chromedp/chromedp"
)

// ChromeSession рендерит страницы в headless Chrome, которым владеет сессия.
// Каждая загрузка открывает новую вкладку и затем закрывает её.
type ChromeSession struct {
	mu          sync.Mutex
	browser     context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration
	closed      bool
}

func NewChromeSession(cfg *cfg.ScraperCfg) (*ChromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browser, cancel := chromedp.NewContext(allocCtx)

	// запускает процесс браузера
	if err := chromedp.Run(browser); err != nil {
		cancel()
		allocCancel()
		return nil, e.Wrap("NewChromeSession", err)
	}

	return &ChromeSession{
		browser:     browser,
		cancel:      cancel,
		allocCancel: allocCancel,
		timeout:     cfg.PageTimeout,
	}, nil
}

func (s *ChromeSession) Fetch(ctx context.Context, url, readySelector string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", e.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tab, closeTab := chromedp.NewContext(s.browser)
	defer closeTab()

	tab, cancel := context.WithTimeout(tab, s.timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if readySelector != "" {
		actions = append(actions, chromedp.WaitReady(readySelector, chromedp.ByQuery))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tab, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(tab.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s", ErrPageTimeout, url)
		}
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	return html, nil
}

func (s *ChromeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.cancel()
	s.allocCancel()
	return nil
}
