package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go-job-harvester/internal/ai"
	"go-job-harvester/internal/browser"
	"go-job-harvester/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []ai.Request
}

func (f *fakeClient) Complete(_ context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

type staticFetcher struct {
	html string
	err  error
	hits int
}

func (f *staticFetcher) Fetch(context.Context, string) (string, error) {
	f.hits++
	return f.html, f.err
}

func TestParseList_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		jobs  int
		pages int
	}{
		{"wrapped", `{"jobs":[{"applicationUrl":"/jobs/1","title":"A"},{"applicationUrl":"/jobs/2"}],"numberOfPages":5}`, 2, 5},
		{"bare array", `[{"applicationUrl":"/jobs/1"}]`, 1, 0},
		{"fenced", "```json\n[{\"applicationUrl\":\"/jobs/1\",\"numberOfPages\":\"3\"}]\n```", 1, 3},
		{"double encoded", `"[{\"applicationUrl\":\"/jobs/1\"}]"`, 1, 0},
		{"prose around", `Here you go: {"jobs":[],"numberOfPages":0} hope it helps`, 0, 0},
		{"single object", `{"applicationUrl":"/jobs/9","title":"Solo"}`, 1, 0},
		{"empty entries dropped", `[{"applicationUrl":"","title":""},{"title":"Only title"}]`, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseList(tt.raw, "https://careers.test/search")
			require.NoError(t, err)
			assert.Len(t, res.Jobs, tt.jobs)
			assert.Equal(t, tt.pages, res.TotalPages)
		})
	}
}

func TestParseList_ResolvesURLsAndIDs(t *testing.T) {
	res, err := parseList(`{"jobs":[{"jobId":12345,"applicationUrl":"/jobs/1","postedDate":"2 days ago","companyName":"Contoso"}]}`, "https://careers.test/search?page=1")
	require.NoError(t, err)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, models.CandidateJob{
		ApplicationURL: "https://careers.test/jobs/1",
		PostedDate:     "2 days ago",
		CompanyName:    "Contoso",
		SourceJobID:    "12345",
	}, res.Jobs[0])
}

func TestParseList_Garbage(t *testing.T) {
	_, err := parseList("sorry, I cannot help", "")
	assert.ErrorIs(t, err, errNotJSON)
}

func TestParseDetail(t *testing.T) {
	raw := `[{"title":"old"},{"jobId":987,"title":"Power Apps Developer","skills":"Power Apps, Dataverse","minSalary":"60,000","maxSalary":85000,"brokenLink":"false","ipBlocked":null,"location":["Austin","Texas"]}]`
	job, err := parseDetail(raw)
	require.NoError(t, err)

	assert.Equal(t, "987", job.JobID)
	assert.Equal(t, "Power Apps Developer", job.Title)
	assert.Equal(t, models.StringList{"Power Apps", "Dataverse"}, job.Skills)
	assert.Equal(t, models.Amount(60000), job.MinSalary)
	assert.Equal(t, models.Amount(85000), job.MaxSalary)
	assert.False(t, job.BrokenLink)
	assert.Equal(t, "Austin, Texas", job.Location)
}

func TestParseDetail_EmptyAndInvalid(t *testing.T) {
	job, err := parseDetail(`{}`)
	require.NoError(t, err)
	assert.True(t, job.IsEmpty())

	job, err = parseDetail(`[]`)
	require.NoError(t, err)
	assert.True(t, job.IsEmpty())

	_, err = parseDetail(`42`)
	assert.Error(t, err)
}

func TestLLMExtractor_ExtractDetail(t *testing.T) {
	client := &fakeClient{reply: `{"title":"D365 Consultant","postedDate":"3 days ago"}`}
	fetcher := &staticFetcher{html: "<html><body><h1>D365 Consultant</h1><script>x()</script></body></html>"}
	e := New(Options{Client: client, Fetcher: fetcher})

	job, err := e.ExtractDetail(context.Background(), Target{URL: "https://careers.test/jobs/1"})
	require.NoError(t, err)
	assert.Equal(t, "D365 Consultant", job.Title)
	assert.Equal(t, "3 days ago", job.PostedDate)

	assert.Equal(t, 1, fetcher.hits)
	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0].System, DefaultDomain)
	assert.Contains(t, client.calls[0].User, "https://careers.test/jobs/1")
	assert.NotContains(t, client.calls[0].User, "x()")
}

func TestLLMExtractor_UsesProvidedHTML(t *testing.T) {
	client := &fakeClient{reply: `{"jobs":[{"applicationUrl":"/a"}],"numberOfPages":2}`}
	fetcher := &staticFetcher{}
	e := New(Options{Client: client, Fetcher: fetcher})

	res, err := e.ExtractList(context.Background(), Target{URL: "https://careers.test/list", HTML: "<a href='/a'>A</a>"})
	require.NoError(t, err)
	assert.Equal(t, 0, fetcher.hits)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, "https://careers.test/a", res.Jobs[0].ApplicationURL)
}

func TestLLMExtractor_FailuresWrapSentinel(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeClient
		fetcher *staticFetcher
	}{
		{"provider error", &fakeClient{err: errors.New("429")}, &staticFetcher{html: "<p>x</p>"}},
		{"fetch error", &fakeClient{}, &staticFetcher{err: errors.New("dns")}},
		{"unparseable", &fakeClient{reply: "no idea"}, &staticFetcher{html: "<p>x</p>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(Options{Client: tt.client, Fetcher: tt.fetcher})
			_, err := e.ExtractDetail(context.Background(), Target{URL: "https://careers.test/jobs/1"})
			assert.ErrorIs(t, err, models.ErrExtractionFailure)
		})
	}
}

func TestCollyFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Job</h1></body></html>"))
	}))
	defer srv.Close()

	f := NewCollyFetcher("", 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	html, err := f.Fetch(ctx, srv.URL+"/job")
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "<h1>Job</h1>"))

	_, err = f.Fetch(ctx, srv.URL+"/missing")
	assert.Error(t, err)
}

type contentPage struct {
	browser.Page
	closed bool
}

func (p *contentPage) Navigate(context.Context, string) error  { return nil }
func (p *contentPage) WaitVisible(string, time.Duration) error { return models.ErrNavigationTimeout }
func (p *contentPage) Content() (string, error)                { return "<h1>Rendered</h1>", nil }
func (p *contentPage) Close() error                            { p.closed = true; return nil }

type pageLauncher struct{ page *contentPage }

func (l pageLauncher) Open(context.Context) (browser.Page, error) { return l.page, nil }

func TestBrowserFetcher_ClosesPage(t *testing.T) {
	page := &contentPage{}
	f := NewBrowserFetcher(pageLauncher{page: page}, time.Second)

	html, err := f.Fetch(context.Background(), "https://careers.test/jobs/1")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Rendered</h1>", html)
	assert.True(t, page.closed)
}
