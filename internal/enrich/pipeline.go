// Package enrich turns candidate jobs into normalized job records.
package enrich

import (
	"context"
	"time"

	"go-job-harvester/internal/dedup"
	"go-job-harvester/internal/extractor"
	"go-job-harvester/internal/filter"
	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/metrics"
	"go-job-harvester/internal/models"
	"go-job-harvester/internal/normalize"
)

type Options struct {
	Salary *normalize.SalaryParser
	// Guard, when set, rejects records outside the topical allow-list.
	Guard   *filter.Matcher
	Now     func() time.Time
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

// Pipeline enriches one candidate at a time and is safe for concurrent use.
type Pipeline struct {
	extractor extractor.Extractor
	salary    *normalize.SalaryParser
	guard     *filter.Matcher
	now       func() time.Time
	metrics   *metrics.Metrics
	log       logger.Logger
}

func NewPipeline(ext extractor.Extractor, opts Options) *Pipeline {
	if opts.Salary == nil {
		opts.Salary = normalize.NewSalaryParser(normalize.DefaultYearlyThreshold)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Pipeline{
		extractor: ext,
		salary:    opts.Salary,
		guard:     opts.Guard,
		now:       opts.Now,
		metrics:   opts.Metrics,
		log:       opts.Logger,
	}
}

// Enrich returns models.ErrNoApplicationURL for candidates it cannot fetch
// and models.ErrIrrelevant when the guard rejects the record. Both are skips,
// not failures. Extraction errors degrade to an empty extracted record.
func (p *Pipeline) Enrich(ctx context.Context, cand models.CandidateJob) (models.JobRecord, error) {
	if cand.ApplicationURL == "" {
		return models.JobRecord{}, models.ErrNoApplicationURL
	}

	job, err := p.extractor.ExtractDetail(ctx, extractor.Target{URL: cand.ApplicationURL})
	if err != nil {
		p.log.Warn("⚠️ Detail extraction failed, using list data only",
			logger.String("url", cand.ApplicationURL),
			logger.Error(err),
		)
		job = models.ExtractedJob{}
	} else if job.IsEmpty() {
		p.log.Debug("📭 Detail page yielded no job fields", logger.String("url", cand.ApplicationURL))
	}

	rec := p.Merge(cand, job)
	if p.guard != nil && !p.guard.IsRelevant(rec) {
		p.log.Debug("🚫 Record outside allow-list", logger.String("url", rec.ApplicationURL), logger.String("title", rec.Title))
		return rec, models.ErrIrrelevant
	}

	p.metrics.Record()
	p.log.Info("✅ Enriched job",
		logger.String("job_id", rec.JobID),
		logger.String("title", rec.Title),
	)
	return rec, nil
}

// Merge combines list-stage and detail-stage data. Extracted fields win;
// the application URL and posted date fall back to the candidate's.
func (p *Pipeline) Merge(cand models.CandidateJob, job models.ExtractedJob) models.JobRecord {
	now := p.now()

	rec := models.JobRecord{
		SourceJobID:      first(job.JobID, cand.SourceJobID),
		Title:            normalize.Text(job.Title),
		Description:      job.Description,
		Location:         normalize.Text(job.Location),
		Country:          normalize.Text(job.Country),
		State:            normalize.Text(job.State),
		City:             normalize.Text(job.City),
		JobType:          job.JobType,
		Currency:         job.Currency,
		MinSalary:        float64(job.MinSalary),
		MaxSalary:        float64(job.MaxSalary),
		ExperienceLevel:  job.ExperienceLevel,
		WorkSettings:     job.WorkSettings,
		Category:         job.Category,
		RoleCategory:     job.RoleCategory,
		Skills:           normalize.List(job.Skills),
		Benefits:         normalize.List(job.Benefits),
		Responsibilities: normalize.List(job.Responsibilities),
		Qualifications:   normalize.List(job.Qualifications),
		CompanyName:      first(normalize.Text(job.CompanyName), cand.CompanyName),
		CompanyLogo:      job.CompanyLogo,
		ApplicationURL:   first(job.ApplicationURL, cand.ApplicationURL),
		JobStatus:        job.JobStatus,
		ApprovalStatus:   job.ApprovalStatus,
		BrokenLink:       job.BrokenLink,
		IPBlocked:        job.IPBlocked,
	}

	rec.PostedDate = normalize.ParseDate(job.PostedDate, now)
	if rec.PostedDate == "" {
		rec.PostedDate = normalize.ParseDate(cand.PostedDate, now)
	}
	if rec.PostedDate == "" {
		rec.PostedDate = now.Format(normalize.DateLayout)
	}

	p.applySalary(&rec, job.Salary)
	rec.JobID = dedup.Key(rec, cand.CompanyName)
	return rec
}

func (p *Pipeline) applySalary(rec *models.JobRecord, raw string) {
	rec.Salary = normalize.Text(raw)
	parsed, ok := p.salary.Parse(raw)
	if !ok {
		return
	}
	rec.Salary = parsed.String()
	if rec.Currency == "" {
		rec.Currency = parsed.CurrencyCode()
	}
	if rec.MinSalary == 0 && rec.MaxSalary == 0 {
		rec.MinSalary = parsed.Min
		rec.MaxSalary = parsed.Max
	}
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
