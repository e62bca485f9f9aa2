package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-job-harvester/internal/ai"
	"go-job-harvester/internal/cleaner"
	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/metrics"
	"go-job-harvester/internal/models"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Options configures an LLMExtractor. Zero values fall back to defaults.
type Options struct {
	Client  ai.Client
	Fetcher Fetcher
	Cleaner *cleaner.Cleaner
	// PageTimeout bounds fetch + completion of one page.
	PageTimeout time.Duration
	// RequestsPerMinute caps provider calls across all goroutines, 0 = unlimited.
	RequestsPerMinute int
	// MaxConcurrent caps in-flight provider calls.
	MaxConcurrent int
	// Domain is the topical allow-list given to detail mode.
	Domain  string
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

// LLMExtractor implements Extractor over an ai.Client.
type LLMExtractor struct {
	client  ai.Client
	fetcher Fetcher
	cleaner *cleaner.Cleaner
	timeout time.Duration
	limiter *rate.Limiter
	sem     *semaphore.Weighted
	domain  string
	metrics *metrics.Metrics
	log     logger.Logger
}

func New(opts Options) *LLMExtractor {
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 80 * time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Cleaner == nil {
		opts.Cleaner = cleaner.New(60000)
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return &LLMExtractor{
		client:  opts.Client,
		fetcher: opts.Fetcher,
		cleaner: opts.Cleaner,
		timeout: opts.PageTimeout,
		limiter: limiter,
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		domain:  opts.Domain,
		metrics: opts.Metrics,
		log:     opts.Logger,
	}
}

func (e *LLMExtractor) ExtractList(ctx context.Context, target Target) (ListResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.complete(ctx, target, listSystemPrompt, e.cleaner.ForList)
	var res ListResult
	if err == nil {
		res, err = parseList(raw, target.URL)
	}
	e.metrics.Extraction("list", err, time.Since(start))
	if err != nil {
		return ListResult{}, fmt.Errorf("%w: list %s: %v", models.ErrExtractionFailure, target.URL, err)
	}

	e.log.Info("✅ Extracted listing",
		logger.String("url", target.URL),
		logger.Int("jobs", len(res.Jobs)),
		logger.Int("pages", res.TotalPages),
	)
	return res, nil
}

func (e *LLMExtractor) ExtractDetail(ctx context.Context, target Target) (models.ExtractedJob, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.complete(ctx, target, detailSystemPrompt(e.domain), e.cleaner.ForDetail)
	var job models.ExtractedJob
	if err == nil {
		job, err = parseDetail(raw)
	}
	e.metrics.Extraction("detail", err, time.Since(start))
	if err != nil {
		return models.ExtractedJob{}, fmt.Errorf("%w: detail %s: %v", models.ErrExtractionFailure, target.URL, err)
	}
	return job, nil
}

func (e *LLMExtractor) complete(ctx context.Context, target Target, system string, reduce func(string, string) string) (string, error) {
	if e.client == nil {
		return "", errors.New("no llm client configured")
	}

	html := target.HTML
	if html == "" {
		if e.fetcher == nil || target.URL == "" {
			return "", errors.New("nothing to extract from")
		}
		fetched, err := e.fetcher.Fetch(ctx, target.URL)
		if err != nil {
			return "", fmt.Errorf("fetch: %w", err)
		}
		html = fetched
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer e.sem.Release(1)

	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	return e.client.Complete(ctx, ai.Request{
		System: system,
		User:   userPrompt(target.URL, reduce(html, target.URL)),
	})
}
