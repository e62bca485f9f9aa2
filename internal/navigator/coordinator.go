// Package navigator discovers candidate job URLs on a site's listing pages.
package navigator

import (
	"context"
	"fmt"
	"time"

	"go-job-harvester/internal/browser"
	"go-job-harvester/internal/extractor"
	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/metrics"
	"go-job-harvester/internal/models"
	"go-job-harvester/internal/normalize"
	"go-job-harvester/utils"
)

// Crawler produces the deduplicated candidate list for one site and keyword.
type Crawler interface {
	Crawl(ctx context.Context, site models.SiteConfig, keyword string) ([]models.CandidateJob, error)
}

// Options tunes the coordinator. Zero durations use the defaults below.
type Options struct {
	// WaitTimeout bounds every readiness wait; a timeout is not an error.
	WaitTimeout time.Duration
	// SettleInterval is how long infinite scroll waits for new content.
	SettleInterval time.Duration
	// CardDelay is the upper bound of a random pause between card clicks.
	CardDelay   time.Duration
	Screenshots *utils.ScreenShotDebugger
	Now         func() time.Time
	Metrics     *metrics.Metrics
	Logger      logger.Logger
}

// Coordinator implements Crawler over a browser launcher and an extractor.
type Coordinator struct {
	launcher  browser.Launcher
	extractor extractor.Extractor
	opts      Options
	log       logger.Logger
}

func NewCoordinator(launcher browser.Launcher, ext extractor.Extractor, opts Options) *Coordinator {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 10 * time.Second
	}
	if opts.SettleInterval < 0 {
		opts.SettleInterval = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Coordinator{launcher: launcher, extractor: ext, opts: opts, log: opts.Logger}
}

// Crawl runs the site's strategy. Cancelling ctx lets the current page
// finish, then returns what was collected so far without an error.
func (c *Coordinator) Crawl(ctx context.Context, site models.SiteConfig, keyword string) ([]models.CandidateJob, error) {
	strategy := Select(site)
	log := c.log.With(
		logger.String("site", site.CompanyName),
		logger.String("keyword", keyword),
		logger.String("strategy", strategy.String()),
	)
	log.Info("🔍 Crawling site")

	var (
		jobs []models.CandidateJob
		err  error
	)
	if strategy.Dynamic() {
		jobs, err = c.crawlDynamic(ctx, site, keyword, strategy, log)
	} else {
		jobs, err = c.crawlStatic(ctx, site, keyword, log)
	}
	if err != nil {
		return nil, err
	}

	now := c.opts.Now()
	for i := range jobs {
		jobs[i].PostedDate = normalize.ParseDate(jobs[i].PostedDate, now)
		if jobs[i].CompanyName == "" {
			jobs[i].CompanyName = site.CompanyName
		}
	}

	c.opts.Metrics.Candidates(string(strategy.Kind), len(jobs))
	log.Info("📦 Candidates collected", logger.Int("count", len(jobs)))
	return jobs, nil
}

// crawlStatic walks page=1..ceiling through the extractor's list mode.
func (c *Coordinator) crawlStatic(ctx context.Context, site models.SiteConfig, keyword string, log logger.Logger) ([]models.CandidateJob, error) {
	base := SearchURL(site.SearchURLTemplate, keyword)
	ceiling := site.PageCeiling()
	set := newCandidateSet()

	for page := 1; page <= ceiling; page++ {
		if page > 1 && ctx.Err() != nil {
			log.Warn("⏹️ Cancelled, stopping pagination", logger.Int("page", page))
			break
		}
		pageURL, err := WithPage(base, site.PaginationParam, page)
		if err != nil {
			return nil, fmt.Errorf("%w: build page url: %v", models.ErrSiteFailure, err)
		}

		res, err := c.extractor.ExtractList(ctx, extractor.Target{URL: pageURL})
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("%w: first listing page: %v", models.ErrSiteFailure, err)
			}
			log.Warn("⚠️ Listing page failed, stopping", logger.Int("page", page), logger.Error(err))
			break
		}
		if len(res.Jobs) == 0 {
			log.Info("ℹ️ Empty listing page, stopping", logger.Int("page", page))
			break
		}
		if page == 1 && res.TotalPages > 0 && res.TotalPages < ceiling {
			ceiling = res.TotalPages
		}

		added := set.add(res.Jobs...)
		log.Info("📄 Listing page", logger.Int("page", page), logger.Int("found", len(res.Jobs)), logger.Int("new", added))
	}
	return set.jobs, nil
}
