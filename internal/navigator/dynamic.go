package navigator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-job-harvester/internal/browser"
	"go-job-harvester/internal/extractor"
	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/models"
)

// traversal is the state of one browser-mode crawl.
type traversal struct {
	c        *Coordinator
	page     browser.Page
	site     models.SiteConfig
	strategy Strategy
	log      logger.Logger
	set      *candidateSet
	// pageNum is the query-param counter.
	pageNum int
}

func (c *Coordinator) crawlDynamic(ctx context.Context, site models.SiteConfig, keyword string, strategy Strategy, log logger.Logger) ([]models.CandidateJob, error) {
	page, err := c.launcher.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: open browser: %v", models.ErrSiteFailure, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("⚠️ Failed to close browser page", logger.Error(err))
		}
	}()

	t := &traversal{c: c, page: page, site: site, strategy: strategy, log: log, set: newCandidateSet()}

	startURL := site.URL
	if site.SearchURLTemplate != "" {
		startURL = SearchURL(site.SearchURLTemplate, keyword)
	}
	if err := page.Navigate(ctx, startURL); err != nil {
		c.capture(page, site, "navigation failed")
		return nil, fmt.Errorf("%w: %v", models.ErrSiteFailure, err)
	}
	t.pageNum = pageOf(page.URL(), site.PaginationParam)
	t.waitReady()

	if site.SearchURLTemplate == "" && site.SearchInputSelector != "" && keyword != "" {
		if err := t.search(keyword); err != nil {
			c.capture(page, site, "search failed")
			return nil, fmt.Errorf("%w: search %q: %v", models.ErrSiteFailure, keyword, err)
		}
		t.waitReady()
	}

	ceiling := site.PageCeiling()
	for visited := 1; ; visited++ {
		found := t.collect(ctx)
		added := t.set.add(found...)
		log.Info("📄 Listing page", logger.Int("page", visited), logger.Int("found", len(found)), logger.Int("new", added))

		if visited >= ceiling {
			log.Info("🛑 Page ceiling reached", logger.Int("max_pages", ceiling))
			break
		}
		if ctx.Err() != nil {
			log.Warn("⏹️ Cancelled, stopping traversal", logger.Int("page", visited))
			break
		}
		advanced, err := t.advance(ctx, added)
		if err != nil {
			log.Warn("⚠️ Advance failed, stopping", logger.Error(err))
			c.capture(page, site, "advance failed")
			break
		}
		if !advanced {
			break
		}
	}
	return t.set.jobs, nil
}

func (t *traversal) waitReady() {
	timeout := t.c.opts.WaitTimeout
	if sel := strings.TrimSpace(strings.TrimPrefix(t.site.WaitFor, "css:")); sel != "" {
		if err := t.page.WaitVisible(sel, timeout); err != nil {
			t.log.Debug("⏳ Readiness wait timed out, proceeding", logger.String("selector", sel))
		}
	}
	if sel := t.site.ResultsContainerSelector; sel != "" {
		if err := t.page.WaitVisible(sel, timeout); err != nil {
			t.log.Debug("⏳ Results wait timed out, proceeding", logger.String("selector", sel))
		}
	}
}

func (t *traversal) search(keyword string) error {
	if err := t.page.Fill(t.site.SearchInputSelector, keyword); err != nil {
		return fmt.Errorf("fill search input: %w", err)
	}
	if t.site.SearchSubmitSelector != "" && !t.site.SearchEnter {
		return t.page.Click(t.site.SearchSubmitSelector)
	}
	return t.page.Press(t.site.SearchInputSelector, "Enter")
}

// collect harvests the current page. It runs to completion even when ctx is
// cancelled so the page in flight is not cut short.
func (t *traversal) collect(ctx context.Context) []models.CandidateJob {
	switch t.strategy.Harvest {
	case HarvestLinks:
		return t.collectLinks()
	case HarvestCards:
		return t.collectCards(ctx)
	default:
		return t.collectWithExtractor(context.WithoutCancel(ctx))
	}
}

func (t *traversal) collectLinks() []models.CandidateJob {
	hrefs, err := t.page.Attributes(t.site.JobLinkSelector, "href")
	if err != nil {
		t.log.Warn("⚠️ Error reading job links", logger.Error(err))
		return nil
	}
	base := t.page.URL()
	out := make([]models.CandidateJob, 0, len(hrefs))
	for _, href := range hrefs {
		if u := resolveURL(base, href); u != "" {
			out = append(out, models.CandidateJob{ApplicationURL: u})
		}
	}
	return out
}

func (t *traversal) collectCards(ctx context.Context) []models.CandidateJob {
	n, err := t.page.Count(t.site.JobCardSelector)
	if err != nil {
		t.log.Warn("⚠️ Error counting job cards", logger.Error(err))
		return nil
	}
	t.log.Debug("📦 Found job cards", logger.Int("count", n))

	var out []models.CandidateJob
	for i := 0; i < n; i++ {
		if i > 0 && t.c.opts.CardDelay > 0 {
			browser.RandomDelay(ctx, t.c.opts.CardDelay/2, t.c.opts.CardDelay)
		}
		u, err := t.openCard(ctx, i)
		if err != nil {
			t.log.Debug("⚠️ Card error", logger.Int("card", i), logger.Error(err))
		}
		if u != "" {
			out = append(out, models.CandidateJob{ApplicationURL: u})
		}
	}
	return out
}

// openCard clicks card i and reads its apply link from the modal. A card
// that navigates away instead yields the new URL and the page goes back.
// A link read before a later step fails is still returned.
func (t *traversal) openCard(ctx context.Context, i int) (string, error) {
	before := t.page.URL()
	if err := t.page.ClickNth(t.site.JobCardSelector, i); err != nil {
		return "", fmt.Errorf("click card: %w", err)
	}

	if t.site.ModalSelector != "" {
		//modal wait is best effort
		_ = t.page.WaitVisible(t.site.ModalSelector, t.c.opts.WaitTimeout)
	}

	if after := t.page.URL(); after != before {
		if err := t.page.Back(); err != nil {
			//reload the listing so the remaining cards are on the right page
			if navErr := t.page.Navigate(ctx, before); navErr != nil {
				return after, fmt.Errorf("go back: %w", errors.Join(err, navErr))
			}
			t.waitReady()
			return after, fmt.Errorf("go back: %w", err)
		}
		t.waitReady()
		return after, nil
	}

	linkSel := t.site.ModalApplyLinkSelector
	if linkSel == "" && t.site.ModalSelector != "" {
		linkSel = t.site.ModalSelector + " a"
	}
	var link string
	if linkSel != "" {
		hrefs, err := t.page.Attributes(linkSel, "href")
		if err != nil {
			return "", fmt.Errorf("read apply link: %w", err)
		}
		for _, h := range hrefs {
			if link = resolveURL(before, h); link != "" {
				break
			}
		}
	}

	if t.site.ModalCloseSelector != "" {
		if err := t.page.Click(t.site.ModalCloseSelector); err != nil {
			return link, fmt.Errorf("close modal: %w", err)
		}
	}
	return link, nil
}

func (t *traversal) collectWithExtractor(ctx context.Context) []models.CandidateJob {
	html, err := t.page.Content()
	if err != nil {
		t.log.Warn("⚠️ Error reading page content", logger.Error(err))
		return nil
	}
	res, err := t.c.extractor.ExtractList(ctx, extractor.Target{URL: t.page.URL(), HTML: html})
	if err != nil {
		t.log.Warn("⚠️ Listing extraction failed", logger.Error(err))
		return nil
	}
	return res.Jobs
}

// advance tries the strategy's methods in order. false means traversal is done.
func (t *traversal) advance(ctx context.Context, added int) (bool, error) {
	for _, method := range t.strategy.Advance {
		switch method {
		case KindQueryParam:
			if added == 0 {
				return false, nil
			}
			current := t.page.URL()
			next, err := WithPage(current, t.site.PaginationParam, t.pageNum+1)
			if err != nil || next == current {
				continue
			}
			t.pageNum++
			if err := t.page.Navigate(ctx, next); err != nil {
				return false, err
			}
			t.waitReady()
			return true, nil

		case KindNextButton:
			sel := t.site.PaginationNextSelector
			n, err := t.page.Count(sel)
			if err != nil || n == 0 {
				continue
			}
			disabled, err := t.page.IsDisabled(sel)
			if err != nil {
				return false, err
			}
			if disabled {
				t.log.Info("🛑 Next control disabled")
				return false, nil
			}
			if err := t.page.Click(sel); err != nil {
				return false, fmt.Errorf("click next: %w", err)
			}
			browser.Sleep(ctx, t.c.opts.SettleInterval)
			t.waitReady()
			return true, nil

		case KindInfiniteScroll:
			before, err := t.page.ScrollHeight()
			if err != nil {
				continue
			}
			if err := t.page.ScrollToBottom(); err != nil {
				continue
			}
			browser.Sleep(ctx, t.c.opts.SettleInterval)
			after, err := t.page.ScrollHeight()
			if err == nil && after > before {
				return true, nil
			}
		}
	}
	return false, nil
}

func (c *Coordinator) capture(page browser.Page, site models.SiteConfig, msg string) {
	_, _ = c.opts.Screenshots.CaptureAndLog(page, site.CompanyName, msg)
}
