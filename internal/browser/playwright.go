package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-job-harvester/internal/models"

	"github.com/playwright-community/playwright-go"
)

// Options configures the Chromium sessions.
type Options struct {
	Headless          bool
	UserAgent         string
	NavigationTimeout time.Duration
	Cookies           []playwright.OptionalCookie
}

// PlaywrightManager owns one Chromium process and hands out isolated
// contexts. The browser starts on first Open.
type PlaywrightManager struct {
	mu      sync.Mutex
	opts    Options
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewPlaywright(opts Options) *PlaywrightManager {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	return &PlaywrightManager{opts: opts}
}

func (pm *PlaywrightManager) start() error {
	if pm.browser != nil {
		return nil
	}
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(pm.opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("could not launch browser: %w", err)
	}
	pm.pw = pw
	pm.browser = browser
	return nil
}

// NewContext creates a fresh browser context carrying the configured cookies.
func (pm *PlaywrightManager) NewContext() (playwright.BrowserContext, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if err := pm.start(); err != nil {
		return nil, err
	}

	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1366, Height: 900},
	}
	if pm.opts.UserAgent != "" {
		opts.UserAgent = playwright.String(pm.opts.UserAgent)
	}
	bctx, err := pm.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	if len(pm.opts.Cookies) > 0 {
		if err := bctx.AddCookies(pm.opts.Cookies); err != nil {
			_ = bctx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}
	return bctx, nil
}

// Open implements Launcher.
func (pm *PlaywrightManager) Open(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bctx, err := pm.NewContext()
	if err != nil {
		return nil, err
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	page.SetDefaultTimeout(float64(pm.opts.NavigationTimeout.Milliseconds()))
	return &playwrightPage{
		bctx:       bctx,
		page:       page,
		navTimeout: pm.opts.NavigationTimeout,
	}, nil
}

func (pm *PlaywrightManager) Close() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	var errs []string
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		pm.browser = nil
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil {
			errs = append(errs, err.Error())
		}
		pm.pw = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close playwright: %s", strings.Join(errs, "; "))
	}
	return nil
}

type playwrightPage struct {
	bctx       playwright.BrowserContext
	page       playwright.Page
	navTimeout time.Duration
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *playwrightPage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   ms(p.navTimeout),
	}); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) WaitVisible(selector string, timeout time.Duration) error {
	err := p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrNavigationTimeout, selector, err)
	}
	return nil
}

func (p *playwrightPage) Count(selector string) (int, error) {
	return p.page.Locator(selector).Count()
}

func (p *playwrightPage) Attributes(selector, name string) ([]string, error) {
	elements, err := p.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(elements))
	for _, el := range elements {
		v, err := el.GetAttribute(name)
		if err != nil {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

func (p *playwrightPage) ClickNth(selector string, n int) error {
	return p.page.Locator(selector).Nth(n).Click(playwright.LocatorClickOptions{
		Timeout: ms(p.navTimeout),
	})
}

func (p *playwrightPage) Click(selector string) error {
	return p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: ms(p.navTimeout),
	})
}

func (p *playwrightPage) Fill(selector, value string) error {
	return p.page.Locator(selector).First().Fill(value)
}

func (p *playwrightPage) Press(selector, key string) error {
	return p.page.Locator(selector).First().Press(key)
}

func (p *playwrightPage) IsDisabled(selector string) (bool, error) {
	el := p.page.Locator(selector).First()
	disabled, err := el.IsDisabled()
	if err != nil {
		return false, err
	}
	if disabled {
		return true, nil
	}
	if aria, _ := el.GetAttribute("aria-disabled"); strings.EqualFold(aria, "true") {
		return true, nil
	}
	class, _ := el.GetAttribute("class")
	for _, c := range strings.Fields(class) {
		if strings.EqualFold(c, "disabled") {
			return true, nil
		}
	}
	return false, nil
}

func (p *playwrightPage) ScrollHeight() (int, error) {
	v, err := p.page.Evaluate("() => document.body.scrollHeight")
	if err != nil {
		return 0, err
	}
	switch h := v.(type) {
	case int:
		return h, nil
	case int64:
		return int(h), nil
	case float64:
		return int(h), nil
	default:
		return 0, fmt.Errorf("unexpected scroll height type %T", v)
	}
}

func (p *playwrightPage) ScrollToBottom() error {
	_, err := p.page.Evaluate("() => window.scrollTo(0, document.body.scrollHeight)")
	return err
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) Back() error {
	_, err := p.page.GoBack(playwright.PageGoBackOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   ms(p.navTimeout),
	})
	return err
}

func (p *playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (p *playwrightPage) Close() error {
	pageErr := p.page.Close()
	ctxErr := p.bctx.Close()
	if pageErr != nil {
		return pageErr
	}
	return ctxErr
}
