package enrich

import (
	"context"
	"testing"
	"time"

	"go-job-harvester/internal/extractor"
	"go-job-harvester/internal/filter"
	"go-job-harvester/internal/models"
	"go-job-harvester/internal/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 22, 10, 0, 0, 0, time.UTC)

type detailExtractor struct {
	job   models.ExtractedJob
	err   error
	calls []extractor.Target
}

func (d *detailExtractor) ExtractList(context.Context, extractor.Target) (extractor.ListResult, error) {
	return extractor.ListResult{}, nil
}

func (d *detailExtractor) ExtractDetail(_ context.Context, target extractor.Target) (models.ExtractedJob, error) {
	d.calls = append(d.calls, target)
	return d.job, d.err
}

func newPipeline(ext extractor.Extractor, guard *filter.Matcher) *Pipeline {
	return NewPipeline(ext, Options{
		Salary: normalize.NewSalaryParser(normalize.DefaultYearlyThreshold),
		Guard:  guard,
		Now:    func() time.Time { return fixedNow },
	})
}

func TestEnrich_SkipsWithoutURL(t *testing.T) {
	ext := &detailExtractor{}
	_, err := newPipeline(ext, nil).Enrich(context.Background(), models.CandidateJob{Title: "No link"})
	assert.ErrorIs(t, err, models.ErrNoApplicationURL)
	assert.Empty(t, ext.calls)
}

func TestEnrich_MergesAndNormalizes(t *testing.T) {
	ext := &detailExtractor{job: models.ExtractedJob{
		JobID:          "R-1001",
		Title:          "  Power Apps   Developer ",
		CompanyName:    "Contoso Ltd",
		Location:       "Austin, Texas",
		Salary:         "60000 - 85000 USD",
		Skills:         models.StringList{"Power Apps", " power apps ", "Dataverse", ""},
		PostedDate:     "3 days ago",
		ApplicationURL: "https://ats.test/apply/1001",
	}}
	cand := models.CandidateJob{
		ApplicationURL: "https://careers.test/jobs/1001",
		PostedDate:     "2025-06-01 00:00:00",
		CompanyName:    "Contoso",
	}

	rec, err := newPipeline(ext, nil).Enrich(context.Background(), cand)
	require.NoError(t, err)

	require.Len(t, ext.calls, 1)
	assert.Equal(t, "https://careers.test/jobs/1001", ext.calls[0].URL)

	assert.Equal(t, "contoso_ltd_R-1001", rec.JobID)
	assert.Equal(t, "Power Apps Developer", rec.Title)
	assert.Equal(t, "https://ats.test/apply/1001", rec.ApplicationURL)
	assert.Equal(t, "2025-06-19 10:00:00", rec.PostedDate)
	assert.Equal(t, "$60000.0-85000.0 per year", rec.Salary)
	assert.Equal(t, "USD", rec.Currency)
	assert.Equal(t, 60000.0, rec.MinSalary)
	assert.Equal(t, 85000.0, rec.MaxSalary)
	assert.Equal(t, models.StringList{"Power Apps", "Dataverse"}, rec.Skills)
	assert.NotNil(t, rec.Benefits)
}

func TestEnrich_ExtractionFailureDegrades(t *testing.T) {
	ext := &detailExtractor{err: models.ErrExtractionFailure}
	cand := models.CandidateJob{
		ApplicationURL: "https://careers.test/jobs/7",
		PostedDate:     "2025-06-01 00:00:00",
		CompanyName:    "Fabrikam",
	}

	rec, err := newPipeline(ext, nil).Enrich(context.Background(), cand)
	require.NoError(t, err)
	assert.Equal(t, "https://careers.test/jobs/7", rec.ApplicationURL)
	assert.Equal(t, "2025-06-01 00:00:00", rec.PostedDate)
	assert.Equal(t, "Fabrikam", rec.CompanyName)
	assert.Empty(t, rec.Title)
	assert.Regexp(t, `^fabrikam_[0-9a-f]{10}$`, rec.JobID)
}

func TestMerge_PostedDateFallsBackToNow(t *testing.T) {
	p := newPipeline(&detailExtractor{}, nil)
	rec := p.Merge(models.CandidateJob{ApplicationURL: "https://x.test/1"}, models.ExtractedJob{PostedDate: "sometime"})
	assert.Equal(t, "2025-06-22 10:00:00", rec.PostedDate)
}

func TestMerge_SalaryKeepsRawWhenUnparseable(t *testing.T) {
	p := newPipeline(&detailExtractor{}, nil)
	rec := p.Merge(models.CandidateJob{ApplicationURL: "https://x.test/1"}, models.ExtractedJob{
		Salary:    "Competitive",
		Currency:  "GBP",
		MinSalary: 50000,
	})
	assert.Equal(t, "Competitive", rec.Salary)
	assert.Equal(t, "GBP", rec.Currency)
	assert.Equal(t, 50000.0, rec.MinSalary)
}

func TestMerge_FallbackKeyIgnoresDescription(t *testing.T) {
	p := newPipeline(&detailExtractor{}, nil)
	cand := models.CandidateJob{ApplicationURL: "https://x.test/1", CompanyName: "Contoso"}
	a := p.Merge(cand, models.ExtractedJob{Title: "Dev", Location: "Remote", Description: "one"})
	b := p.Merge(cand, models.ExtractedJob{Title: "Dev", Location: "Remote", Description: "two"})
	assert.Equal(t, a.JobID, b.JobID)
}

func TestEnrich_GuardRejectsOffTopic(t *testing.T) {
	guard := filter.NewMatcher(nil, 0)
	cand := models.CandidateJob{ApplicationURL: "https://careers.test/jobs/1", CompanyName: "Contoso"}

	ext := &detailExtractor{job: models.ExtractedJob{Title: "Java Developer", Description: "Spring Boot"}}
	_, err := newPipeline(ext, guard).Enrich(context.Background(), cand)
	assert.ErrorIs(t, err, models.ErrIrrelevant)

	ext = &detailExtractor{job: models.ExtractedJob{Title: "Dynamics 365 CE Developer"}}
	rec, err := newPipeline(ext, guard).Enrich(context.Background(), cand)
	require.NoError(t, err)
	assert.Equal(t, "Dynamics 365 CE Developer", rec.Title)
}
