package orchestrator

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go-job-harvester/internal/enrich"
	"go-job-harvester/internal/extractor"
	"go-job-harvester/internal/models"
	"go-job-harvester/internal/navigator"
	"go-job-harvester/internal/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// pagedExtractor serves listing pages by their page parameter and returns
// one fixed record per detail URL.
type pagedExtractor struct {
	mu      sync.Mutex
	pages   map[string][]string
	details []string
}

func (p *pagedExtractor) ExtractList(_ context.Context, target extractor.Target) (extractor.ListResult, error) {
	u, err := url.Parse(target.URL)
	if err != nil {
		return extractor.ListResult{}, err
	}
	var res extractor.ListResult
	for _, link := range p.pages[u.Query().Get("page")] {
		res.Jobs = append(res.Jobs, models.CandidateJob{ApplicationURL: link, PostedDate: "2 days ago"})
	}
	return res, nil
}

func (p *pagedExtractor) ExtractDetail(_ context.Context, target extractor.Target) (models.ExtractedJob, error) {
	p.mu.Lock()
	p.details = append(p.details, target.URL)
	p.mu.Unlock()
	return models.ExtractedJob{
		Title:    "Power Platform Developer " + filepath.Base(target.URL),
		Location: "Remote",
		Salary:   "60000 - 85000 USD",
		Skills:   models.StringList{"Power Apps", "Power Apps", "Dataverse"},
	}, nil
}

type fakeSink struct {
	mu      sync.Mutex
	calls   int
	fail    error
	batches [][]models.JobRecord
}

func (s *fakeSink) Upsert(_ context.Context, records []models.JobRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		return 0, s.fail
	}
	s.batches = append(s.batches, records)
	return len(records), nil
}

func (s *fakeSink) Close() error { return nil }

type fakeNotifier struct {
	mu       sync.Mutex
	subjects []string
	bodies   []string
	err      error
}

func (n *fakeNotifier) Notify(_ context.Context, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return n.err
}

type fakeSeen struct {
	mu    sync.Mutex
	urls  map[string]bool
	added []string
}

func (f *fakeSeen) IsSeen(_ context.Context, u string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.urls[u], nil
}

func (f *fakeSeen) Add(_ context.Context, urls []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, urls...)
	return nil
}

// scriptedCrawler returns canned results per site URL.
type scriptedCrawler struct {
	results map[string][]models.CandidateJob
	errs    map[string]error
}

func (s *scriptedCrawler) Crawl(_ context.Context, site models.SiteConfig, _ string) ([]models.CandidateJob, error) {
	if err := s.errs[site.URL]; err != nil {
		return nil, err
	}
	return s.results[site.URL], nil
}

type stubEnricher struct{}

func (stubEnricher) Enrich(_ context.Context, cand models.CandidateJob) (models.JobRecord, error) {
	return models.JobRecord{JobID: "id_" + filepath.Base(cand.ApplicationURL), Title: "t", ApplicationURL: cand.ApplicationURL}, nil
}

func paginatedSite() models.SiteConfig {
	return models.SiteConfig{
		CompanyName:       "Contoso",
		URL:               "https://contoso.test/careers",
		WaitFor:           "body",
		SearchURLTemplate: "https://contoso.test/search?q={keyword}",
		PaginationParam:   "page",
		MaxPages:          50,
	}
}

func newEndToEnd(ext *pagedExtractor, opts Options) *Orchestrator {
	coord := navigator.NewCoordinator(nil, ext, navigator.Options{Now: func() time.Time { return fixedNow }})
	pipe := enrich.NewPipeline(ext, enrich.Options{Now: func() time.Time { return fixedNow }})
	opts.Now = func() time.Time { return fixedNow }
	opts.Retry = retry.Policy{MaxAttempts: 2}
	return New(coord, pipe, opts)
}

func TestRun_EndToEnd(t *testing.T) {
	ext := &pagedExtractor{pages: map[string][]string{
		"1": {"https://contoso.test/jobs/1", "https://contoso.test/jobs/2", "https://contoso.test/jobs/3"},
		"2": {"https://contoso.test/jobs/3", "https://contoso.test/jobs/4"},
	}}
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	out := t.TempDir()

	o := newEndToEnd(ext, Options{Keywords: []string{"dynamics"}, Sink: sink, Notifier: notifier, OutputDir: out})
	res, err := o.Run(context.Background(), []models.SiteConfig{paginatedSite()})
	require.NoError(t, err)

	require.Len(t, res.Records, 4)
	ids := make(map[string]bool)
	for _, rec := range res.Records {
		require.NotEmpty(t, rec.JobID)
		assert.True(t, strings.HasPrefix(rec.JobID, "contoso_"))
		assert.Equal(t, "$60000.0-85000.0 per year", rec.Salary)
		assert.Equal(t, models.StringList{"Power Apps", "Dataverse"}, rec.Skills)
		assert.Equal(t, "2024-02-28 12:00:00", rec.PostedDate)
		ids[rec.JobID] = true
	}
	assert.Len(t, ids, 4)
	assert.Len(t, ext.details, 4)

	assert.Equal(t, 4, res.Summary.Succeeded)
	assert.Equal(t, 4, res.Summary.Saved)
	assert.Equal(t, 4, res.Summary.Candidates)
	assert.Empty(t, res.Summary.Failures)
	assert.NotEmpty(t, res.Summary.RunID)

	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 4)

	require.Len(t, notifier.subjects, 1)
	assert.Equal(t, "Job Scraping Completed", notifier.subjects[0])
	assert.Contains(t, notifier.bodies[0], "Successful jobs: 4\nSaved jobs: 4\nFailed jobs: 0")

	require.Len(t, res.Files, 2)
	for _, f := range res.Files {
		_, err := os.Stat(f)
		assert.NoError(t, err)
	}
}

func TestRun_SiteFailuresAreRecorded(t *testing.T) {
	crawler := &scriptedCrawler{
		results: map[string][]models.CandidateJob{
			"https://ok.test": {{ApplicationURL: "https://ok.test/jobs/1"}, {ApplicationURL: "https://ok.test/jobs/1"}},
		},
		errs: map[string]error{"https://broken.test": models.ErrSiteFailure},
	}
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	o := New(crawler, stubEnricher{}, Options{Keywords: []string{"d365", "power apps"}, Notifier: notifier, SiteConcurrency: 2})

	res, err := o.Run(context.Background(), []models.SiteConfig{
		{CompanyName: "Broken", URL: "https://broken.test"},
		{CompanyName: "Empty", URL: "https://empty.test"},
		{CompanyName: "Ok", URL: "https://ok.test"},
	})
	require.NoError(t, err)

	//one record per site despite two keywords returning the same URL
	assert.Len(t, res.Records, 1)
	require.Len(t, res.Summary.Failures, 4)

	var crawlFailures, emptyFailures int
	for _, f := range res.Summary.Failures {
		assert.Equal(t, "crawl", f.Context)
		switch f.Site {
		case "https://broken.test":
			crawlFailures++
		case "https://empty.test":
			assert.Equal(t, "no jobs found", f.Error)
			emptyFailures++
		}
	}
	assert.Equal(t, 2, crawlFailures)
	assert.Equal(t, 2, emptyFailures)
	//notifier errors do not fail the run
	assert.Len(t, notifier.subjects, 1)

	//a second run reports only its own failures
	res, err = o.Run(context.Background(), []models.SiteConfig{{CompanyName: "Empty", URL: "https://empty.test"}})
	require.NoError(t, err)
	require.Len(t, res.Summary.Failures, 2)
	assert.Equal(t, "https://empty.test", res.Summary.Failures[0].Site)
}

func TestRun_PersistenceFailureKeepsRecords(t *testing.T) {
	ext := &pagedExtractor{pages: map[string][]string{"1": {"https://contoso.test/jobs/1"}}}
	sink := &fakeSink{fail: errors.New("connection refused")}
	notifier := &fakeNotifier{}
	out := t.TempDir()

	o := newEndToEnd(ext, Options{Sink: sink, Notifier: notifier, OutputDir: out})
	res, err := o.Run(context.Background(), []models.SiteConfig{paginatedSite()})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPersistenceFailure)
	assert.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)

	assert.Equal(t, 2, sink.calls)
	assert.Len(t, res.Records, 1)
	assert.Zero(t, res.Summary.Saved)
	assert.NotEmpty(t, res.Summary.SaveError)
	require.Len(t, res.Summary.Failures, 1)
	assert.Equal(t, "save", res.Summary.Failures[0].Context)
	require.NotEmpty(t, res.Files)
	assert.Len(t, notifier.subjects, 1)
}

func TestRun_SeenCacheSkipsKnownURLs(t *testing.T) {
	crawler := &scriptedCrawler{results: map[string][]models.CandidateJob{
		"https://ok.test": {{ApplicationURL: "https://ok.test/jobs/1"}, {ApplicationURL: "https://ok.test/jobs/2"}},
	}}
	seen := &fakeSeen{urls: map[string]bool{"https://ok.test/jobs/1": true}}
	o := New(crawler, stubEnricher{}, Options{Seen: seen})

	res, err := o.Run(context.Background(), []models.SiteConfig{{CompanyName: "Ok", URL: "https://ok.test"}})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "https://ok.test/jobs/2", res.Records[0].ApplicationURL)
	assert.Equal(t, 1, res.Summary.Skipped)
	assert.Equal(t, []string{"https://ok.test/jobs/2"}, seen.added)
}

func TestRun_CancelledStillReports(t *testing.T) {
	crawler := &scriptedCrawler{results: map[string][]models.CandidateJob{
		"https://ok.test": {{ApplicationURL: "https://ok.test/jobs/1"}},
	}}
	notifier := &fakeNotifier{}
	sink := &fakeSink{}
	o := New(crawler, stubEnricher{}, Options{Notifier: notifier, Sink: sink})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := o.Run(ctx, []models.SiteConfig{{CompanyName: "Ok", URL: "https://ok.test"}})
	require.NoError(t, err)
	assert.True(t, res.Summary.Cancelled)
	assert.Empty(t, res.Records)
	assert.Len(t, notifier.subjects, 1)
	assert.Equal(t, 1, sink.calls)
}
