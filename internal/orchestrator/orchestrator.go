// Package orchestrator runs one harvesting pass over every configured site.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go-job-harvester/internal/database"
	"go-job-harvester/internal/dedup"
	"go-job-harvester/internal/export"
	"go-job-harvester/internal/failures"
	"go-job-harvester/internal/indexer"
	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/metrics"
	"go-job-harvester/internal/models"
	"go-job-harvester/internal/navigator"
	"go-job-harvester/internal/notify"
	"go-job-harvester/internal/retry"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Enricher turns one candidate into a record.
type Enricher interface {
	Enrich(ctx context.Context, cand models.CandidateJob) (models.JobRecord, error)
}

// Options wires the optional collaborators. Nil collaborators are skipped.
type Options struct {
	// Keywords are searched on every site; none means one pass with "".
	Keywords []string
	// SiteConcurrency is how many sites run at once, default 1.
	SiteConcurrency int
	Seen            dedup.SeenStore
	Sink            database.Sink
	Indexer         indexer.Indexer
	Notifier        notify.Notifier
	Failures        *failures.Recorder
	Retry           retry.Policy
	// OutputDir receives jobs_<ts>.json and .xlsx, empty disables files.
	OutputDir string
	// FinalizeTimeout bounds save, index and notify after the crawl, default 5m.
	FinalizeTimeout time.Duration
	Now             func() time.Time
	Metrics         *metrics.Metrics
	Logger          logger.Logger
}

// Result is what Run hands back.
type Result struct {
	Summary models.RunSummary
	Records []models.JobRecord
	// Files lists the output files written.
	Files []string
}

type Orchestrator struct {
	crawler  navigator.Crawler
	enricher Enricher
	opts     Options
	log      logger.Logger
}

func New(crawler navigator.Crawler, enricher Enricher, opts Options) *Orchestrator {
	if opts.SiteConcurrency <= 0 {
		opts.SiteConcurrency = 1
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = retry.DefaultPolicy()
	}
	if opts.FinalizeTimeout <= 0 {
		opts.FinalizeTimeout = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Failures == nil {
		opts.Failures, _ = failures.NewRecorder("")
	}
	return &Orchestrator{crawler: crawler, enricher: enricher, opts: opts, log: opts.Logger}
}

// run holds the state shared by concurrently crawled sites.
type run struct {
	mu         sync.Mutex
	records    []models.JobRecord
	enriched   []string
	candidates int
	skipped    int
}

func (r *run) merge(s siteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, s.records...)
	r.enriched = append(r.enriched, s.enriched...)
	r.candidates += s.candidates
	r.skipped += s.skipped
}

// siteResult is owned by one site goroutine until merged.
type siteResult struct {
	records    []models.JobRecord
	enriched   []string
	candidates int
	skipped    int
}

// Run crawls sites × keywords, enriches every candidate, then persists,
// indexes and reports. Site failures never stop the run. The returned error
// is non-nil only when the save step failed; records are returned anyway.
func (o *Orchestrator) Run(ctx context.Context, sites []models.SiteConfig) (Result, error) {
	started := o.opts.Now()
	summary := models.RunSummary{RunID: uuid.NewString(), StartedAt: started, Sites: len(sites)}
	log := o.log.With(logger.String("run_id", summary.RunID))
	log.Info("🚀 Starting run", logger.Int("sites", len(sites)), logger.Strings("keywords", o.opts.Keywords))

	o.opts.Metrics.SetRunning(true)
	defer o.opts.Metrics.SetRunning(false)

	keywords := o.opts.Keywords
	if len(keywords) == 0 {
		keywords = []string{""}
	}

	//the recorder holds this run's failures; its file keeps every run
	o.opts.Failures.Reset()
	state := &run{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.SiteConcurrency)
	for _, site := range sites {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			state.merge(o.crawlSite(gctx, site, keywords, log))
			return nil
		})
	}
	_ = g.Wait()

	summary.Cancelled = ctx.Err() != nil
	summary.Candidates = state.candidates
	summary.Skipped = state.skipped
	summary.Succeeded = len(state.records)
	summary.Failures = o.opts.Failures.Records()
	log.Info("📦 Crawl finished",
		logger.Int("candidates", state.candidates),
		logger.Int("records", len(state.records)),
		logger.Int("failures", len(summary.Failures)),
	)

	//finalize even if the run was cancelled
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.FinalizeTimeout)
	defer cancel()

	res := Result{Records: state.records}
	res.Files = o.writeFiles(state.records, started, log)

	saveErr := o.save(fctx, state.records, &summary, log)
	if saveErr == nil && o.opts.Seen != nil && len(state.enriched) > 0 {
		if err := o.opts.Seen.Add(fctx, state.enriched); err != nil {
			log.Warn("⚠️ Failed to update seen cache", logger.Error(err))
		}
	}
	o.index(fctx, state.records, log)

	summary.FinishedAt = o.opts.Now()
	res.Summary = summary

	o.notify(fctx, summary, log)

	outcome := "success"
	switch {
	case summary.Cancelled:
		outcome = "cancelled"
	case saveErr != nil:
		outcome = "save_failed"
	}
	o.opts.Metrics.ObserveRun(outcome, summary.FinishedAt.Sub(started))
	log.Info("🏁 Run finished",
		logger.Int("succeeded", summary.Succeeded),
		logger.Int("saved", summary.Saved),
		logger.Int("failed", len(summary.Failures)),
		logger.Duration("took", summary.FinishedAt.Sub(started)),
	)
	return res, saveErr
}

func (o *Orchestrator) crawlSite(ctx context.Context, site models.SiteConfig, keywords []string, log logger.Logger) siteResult {
	var out siteResult
	log = log.With(logger.String("site", site.CompanyName))
	seenURLs := make(map[string]struct{})

	for _, keyword := range keywords {
		if ctx.Err() != nil {
			log.Warn("⏹️ Cancelled, skipping remaining keywords")
			return out
		}

		cands, err := o.crawler.Crawl(ctx, site, keyword)
		if err != nil {
			log.Error("❌ Site traversal failed", logger.String("keyword", keyword), logger.Error(err))
			o.opts.Metrics.SiteDone("failed")
			o.opts.Failures.Record("crawl", site.URL, keyword, err)
			continue
		}
		if len(cands) == 0 {
			o.opts.Metrics.SiteDone("empty")
			o.opts.Failures.Record("crawl", site.URL, keyword, errors.New("no jobs found"))
			continue
		}
		o.opts.Metrics.SiteDone("success")
		out.candidates += len(cands)

		for _, cand := range cands {
			if ctx.Err() != nil {
				log.Warn("⏹️ Cancelled, skipping remaining candidates")
				return out
			}
			if _, dup := seenURLs[cand.ApplicationURL]; dup && cand.ApplicationURL != "" {
				continue
			}
			seenURLs[cand.ApplicationURL] = struct{}{}

			if o.opts.Seen != nil && cand.ApplicationURL != "" {
				seen, err := o.opts.Seen.IsSeen(ctx, cand.ApplicationURL)
				if err != nil {
					log.Warn("⚠️ Seen cache lookup failed", logger.Error(err))
				} else if seen {
					out.skipped++
					continue
				}
			}

			rec, err := o.enricher.Enrich(ctx, cand)
			switch {
			case err == nil:
				out.records = append(out.records, rec)
				out.enriched = append(out.enriched, cand.ApplicationURL)
			case errors.Is(err, models.ErrIrrelevant):
				out.skipped++
				out.enriched = append(out.enriched, cand.ApplicationURL)
			case errors.Is(err, models.ErrNoApplicationURL):
				out.skipped++
			default:
				o.opts.Failures.Record("enrich", site.URL, keyword, fmt.Errorf("%s: %w", cand.ApplicationURL, err))
			}
		}
	}
	log.Info("✅ Site finished", logger.Int("records", len(out.records)), logger.Int("skipped", out.skipped))
	return out
}

func (o *Orchestrator) save(ctx context.Context, records []models.JobRecord, summary *models.RunSummary, log logger.Logger) error {
	if o.opts.Sink == nil {
		log.Info("ℹ️ No persistence sink configured")
		return nil
	}
	var saved int
	err := retry.Do(ctx, o.opts.Retry, func(ctx context.Context) error {
		n, err := o.opts.Sink.Upsert(ctx, records)
		if err != nil {
			log.Warn("⚠️ Save attempt failed", logger.Error(err))
			return err
		}
		saved = n
		return nil
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", models.ErrPersistenceFailure, err)
		summary.SaveError = err.Error()
		summary.Failures = append(summary.Failures, o.opts.Failures.Record("save", "", "", err))
		log.Error("❌ Failed to save jobs", logger.Error(err))
		return err
	}
	summary.Saved = saved
	o.opts.Metrics.Saved(saved)
	log.Info("💾 Saved jobs", logger.Int("saved", saved))
	return nil
}

func (o *Orchestrator) index(ctx context.Context, records []models.JobRecord, log logger.Logger) {
	if o.opts.Indexer == nil || len(records) == 0 {
		return
	}
	if _, err := o.opts.Indexer.Index(ctx, records); err != nil {
		log.Warn("⚠️ Search indexing failed", logger.Error(err))
	}
}

func (o *Orchestrator) notify(ctx context.Context, summary models.RunSummary, log logger.Logger) {
	if o.opts.Notifier == nil {
		return
	}
	if err := o.opts.Notifier.Notify(ctx, notify.SummarySubject, notify.BuildSummary(summary)); err != nil {
		log.Warn("⚠️ Failed to send run summary", logger.Error(err))
	}
}

func (o *Orchestrator) writeFiles(records []models.JobRecord, at time.Time, log logger.Logger) []string {
	if o.opts.OutputDir == "" {
		return nil
	}
	var files []string
	jsonPath := filepath.Join(o.opts.OutputDir, export.FileName("jobs", "json", at))
	if err := export.WriteJSON(jsonPath, records); err != nil {
		log.Warn("⚠️ Failed to write JSON output", logger.Error(err))
	} else {
		files = append(files, jsonPath)
	}
	if len(records) > 0 {
		xlsxPath := filepath.Join(o.opts.OutputDir, export.FileName("jobs", "xlsx", at))
		if err := export.WriteXLSX(xlsxPath, records); err != nil {
			log.Warn("⚠️ Failed to write XLSX output", logger.Error(err))
		} else {
			files = append(files, xlsxPath)
		}
	}
	log.Info("📁 Results saved", logger.Strings("files", files))
	return files
}
