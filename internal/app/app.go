// Package app assembles a harvester from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-job-harvester/internal/ai"
	"go-job-harvester/internal/browser"
	"go-job-harvester/internal/cleaner"
	"go-job-harvester/internal/config"
	"go-job-harvester/internal/database"
	"go-job-harvester/internal/dedup"
	"go-job-harvester/internal/enrich"
	"go-job-harvester/internal/extractor"
	"go-job-harvester/internal/failures"
	"go-job-harvester/internal/filter"
	"go-job-harvester/internal/indexer"
	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/metrics"
	"go-job-harvester/internal/models"
	"go-job-harvester/internal/navigator"
	"go-job-harvester/internal/normalize"
	"go-job-harvester/internal/notify"
	"go-job-harvester/internal/orchestrator"
	"go-job-harvester/internal/retry"
	"go-job-harvester/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// App owns every long-lived collaborator of a harvester process.
type App struct {
	cfg     *config.Config
	log     logger.Logger
	metrics *metrics.Metrics

	browser  *browser.PlaywrightManager
	failures *failures.Recorder
	sink     database.Sink
	redis    *redis.Client
	lock     *RunLock
	orch     *orchestrator.Orchestrator

	mu      sync.Mutex
	running bool
	last    *models.RunSummary
	runs    sync.WaitGroup
}

// Build wires the configured collaborators. Optional ones that fail to
// connect are logged and left out, except the database which is required
// once configured.
func Build(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	a := &App{cfg: cfg, log: log}
	if reg != nil {
		a.metrics = metrics.New(reg)
	}

	lock, err := NewRunLock(cfg.LockPath)
	if err != nil {
		return nil, err
	}
	a.lock = lock

	cookies, err := browser.LoadCookiesDir(cfg.CookiesPath)
	if err != nil {
		log.Warn("⚠️ Could not load cookies, continuing without them", logger.Error(err))
	} else if len(cookies) > 0 {
		log.Info("🍪 Loaded cookies", logger.Int("count", len(cookies)))
	}
	a.browser = browser.NewPlaywright(browser.Options{
		Headless:          *cfg.Browser.Headless,
		UserAgent:         cfg.Browser.UserAgent,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		Cookies:           cookies,
	})

	client, err := ai.New(cfg.LLM, cfg.Extractor.PageTimeout)
	if err != nil {
		return nil, err
	}
	var fetcher extractor.Fetcher
	switch cfg.Extractor.Fetcher {
	case "browser":
		fetcher = extractor.NewBrowserFetcher(a.browser, cfg.Browser.WaitTimeout)
	default:
		fetcher = extractor.NewCollyFetcher(cfg.Browser.UserAgent, 0)
	}
	ext := extractor.New(extractor.Options{
		Client:            client,
		Fetcher:           fetcher,
		Cleaner:           cleaner.New(cfg.Extractor.MaxHTMLChars),
		PageTimeout:       cfg.Extractor.PageTimeout,
		RequestsPerMinute: cfg.Extractor.RequestsPerMinute,
		MaxConcurrent:     cfg.Concurrency.Extractions,
		Metrics:           a.metrics,
		Logger:            log.With(logger.String("component", "extractor")),
	})

	coord := navigator.NewCoordinator(a.browser, ext, navigator.Options{
		WaitTimeout:    cfg.Browser.WaitTimeout,
		SettleInterval: cfg.Browser.SettleInterval,
		CardDelay:      time.Second,
		Screenshots:    utils.NewScreenShotDebugger(cfg.Browser.ScreenshotDir, log),
		Metrics:        a.metrics,
		Logger:         log.With(logger.String("component", "navigator")),
	})

	var guard *filter.Matcher
	if cfg.Filter.Enabled {
		guard = filter.NewMatcher(cfg.Filter.Keywords, cfg.Filter.MaxAgeDays)
	}
	pipe := enrich.NewPipeline(ext, enrich.Options{
		Salary:  normalize.NewSalaryParser(cfg.YearlyThreshold()),
		Guard:   guard,
		Metrics: a.metrics,
		Logger:  log.With(logger.String("component", "enrich")),
	})

	a.failures, err = failures.NewRecorder(cfg.FailuresPath)
	if err != nil {
		return nil, err
	}

	opts := orchestrator.Options{
		Keywords:        cfg.Keywords,
		SiteConcurrency: cfg.Concurrency.Sites,
		Failures:        a.failures,
		Retry:           retry.Policy{MaxAttempts: cfg.Retry.MaxAttempts, Delay: cfg.Retry.Delay, Multiplier: 1},
		OutputDir:       cfg.OutputDir,
		Metrics:         a.metrics,
		Logger:          log.With(logger.String("component", "orchestrator")),
	}

	if opts.Seen, err = a.buildSeen(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildSink(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if a.sink != nil {
		opts.Sink = a.sink
	}
	if idx := a.buildIndexer(ctx); idx != nil {
		opts.Indexer = idx
	}
	if n := a.buildNotifier(); n.Len() > 0 {
		opts.Notifier = n
	}

	a.orch = orchestrator.New(coord, pipe, opts)
	return a, nil
}

func (a *App) buildSeen(ctx context.Context) (dedup.SeenStore, error) {
	switch a.cfg.Seen.Backend {
	case "file":
		return dedup.NewJobCache(a.cfg.Seen.Path, a.cfg.Seen.TTL, a.log)
	case "redis":
		a.redis = redis.NewClient(&redis.Options{Addr: a.cfg.Seen.RedisAddr})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return dedup.NewRedisStore(a.redis, a.cfg.Seen.Prefix, a.cfg.Seen.TTL), nil
	default:
		return nil, nil
	}
}

func (a *App) buildSink(ctx context.Context) error {
	switch a.cfg.Database.Driver {
	case "postgres":
		repo, err := database.ConnectDB(ctx, a.cfg.Database.URL, a.cfg.Database.Table, a.log.With(logger.String("component", "postgres")))
		if err != nil {
			return err
		}
		a.sink = repo
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		a.log.Info("✅ Connected to Postgres")
	case "sqlite":
		store, err := database.OpenSQLite(ctx, a.cfg.Database.URL, a.cfg.Database.Table, a.log.With(logger.String("component", "sqlite")))
		if err != nil {
			return err
		}
		a.sink = store
		a.log.Info("✅ Opened SQLite store", logger.String("path", a.cfg.Database.URL))
	default:
		a.log.Warn("⚠️ No database configured, results go to files only")
	}
	return nil
}

func (a *App) buildIndexer(ctx context.Context) indexer.Indexer {
	if len(a.cfg.Elasticsearch.Addresses) == 0 {
		return nil
	}
	idx, err := indexer.NewElasticsearchIndexer(ctx, a.cfg.Elasticsearch.Addresses, a.cfg.Elasticsearch.Index, a.log.With(logger.String("component", "indexer")))
	if err != nil {
		a.log.Warn("⚠️ Elasticsearch unavailable, indexing disabled", logger.Error(err))
		return nil
	}
	if err := idx.EnsureIndex(ctx); err != nil {
		a.log.Warn("⚠️ Could not ensure search index", logger.Error(err))
	}
	return idx
}

func (a *App) buildNotifier() *notify.Multi {
	var channels []notify.Notifier
	if a.cfg.Mail.Host != "" {
		email, err := notify.NewEmail(a.cfg.Mail)
		if err != nil {
			a.log.Warn("⚠️ Mail notifier disabled", logger.Error(err))
		} else {
			channels = append(channels, email)
		}
	}
	if a.cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(a.cfg.Telegram.Token, a.cfg.Telegram.ChatID)
		if err != nil {
			a.log.Warn("⚠️ Telegram notifier disabled", logger.Error(err))
		} else {
			a.log.Info("🤖 Telegram Bot initialized.")
			channels = append(channels, tg)
		}
	}
	return notify.NewMulti(a.log, channels...)
}

// Running reports whether a run is in flight in this process.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// LastSummary returns the summary of the most recent finished run.
func (a *App) LastSummary() (models.RunSummary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return models.RunSummary{}, false
	}
	return *a.last, true
}

// claim marks a run as in flight in this process.
func (a *App) claim() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return ErrRunInProgress
	}
	a.running = true
	a.runs.Add(1)
	return nil
}

func (a *App) release() {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
	a.runs.Done()
}

// Run loads the site list and performs one run under the host lock.
func (a *App) Run(ctx context.Context) (orchestrator.Result, error) {
	if err := a.claim(); err != nil {
		return orchestrator.Result{}, err
	}
	defer a.release()
	return a.run(ctx)
}

// Start claims the run slot and performs the run in the background, calling
// done with its outcome. It returns ErrRunInProgress without starting
// anything when a run is already in flight.
func (a *App) Start(ctx context.Context, done func(orchestrator.Result, error)) error {
	if err := a.claim(); err != nil {
		return err
	}
	go func() {
		defer a.release()
		res, err := a.run(ctx)
		if done != nil {
			done(res, err)
		}
	}()
	return nil
}

// Wait blocks until in-flight runs have finished or ctx is done.
func (a *App) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		a.runs.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) run(ctx context.Context) (orchestrator.Result, error) {
	if err := a.lock.TryLock(); err != nil {
		return orchestrator.Result{}, err
	}
	defer func() {
		if err := a.lock.Unlock(); err != nil {
			a.log.Warn("⚠️ Failed to release run lock", logger.Error(err))
		}
	}()

	sites, err := config.LoadSites(a.cfg.SitesPath, a.log)
	if err != nil {
		return orchestrator.Result{}, err
	}
	if len(sites) == 0 {
		return orchestrator.Result{}, errors.New("no sites configured")
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.RunTimeout)
	defer cancel()

	res, err := a.orch.Run(ctx, sites)

	a.mu.Lock()
	summary := res.Summary
	a.last = &summary
	a.mu.Unlock()
	return res, err
}

// Close releases the browser, database and cache connections.
func (a *App) Close() {
	if a.browser != nil {
		if err := a.browser.Close(); err != nil {
			a.log.Warn("⚠️ Failed to close browser", logger.Error(err))
		}
	}
	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.log.Warn("⚠️ Failed to close database", logger.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.failures != nil {
		_ = a.failures.Close()
	}
}
