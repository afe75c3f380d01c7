// Package browser renders the bulletin page in headless Chrome through Rod.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/pluviorn/emparn-fetch/internal/domain"
)

// Config configures the renderer.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of an external Chrome.
	// Empty = launch a local headless Chrome on first use.
	RemoteURL string

	// Stealth applies go-rod/stealth evasions to every page.
	Stealth bool

	// UserAgent overrides the browser user-agent when non-empty.
	UserAgent string

	// NavigationTimeout bounds page navigation and load. Default: 120s.
	NavigationTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 120 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Renderer opens bulletin pages in Chrome. Chrome is started lazily so runs
// satisfied by an official export never launch a browser.
// It implements pipeline.Renderer.
type Renderer struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewRenderer creates a Renderer. Call Close to release Chrome.
func NewRenderer(cfg Config) *Renderer {
	cfg.defaults()
	return &Renderer{cfg: cfg}
}

// Open navigates a new tab to pageURL and waits for the load event.
func (r *Renderer) Open(ctx context.Context, pageURL string) (domain.Page, error) {
	b, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	var page *rod.Page
	if r.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	if r.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.cfg.UserAgent}); err != nil {
			r.cfg.Logger.Warn("browser: set user agent failed", "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, r.cfg.NavigationTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: browser: navigate %s: %w", domain.ErrNetworkUnavailable, pageURL, err)
	}

	if err := page.Context(navCtx).WaitLoad(); err != nil {
		r.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{page: page}, nil
}

// Close shuts down Chrome if it was started.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
	return err
}

func (r *Renderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	log := r.cfg.Logger
	var wsURL string

	if r.cfg.RemoteURL != "" {
		wsURL = r.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		r.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "stealth", r.cfg.Stealth)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	r.browser = b
	return b, nil
}
