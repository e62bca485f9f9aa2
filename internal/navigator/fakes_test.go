package navigator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-job-harvester/internal/browser"
	"go-job-harvester/internal/extractor"
	"go-job-harvester/internal/models"
)

const (
	linkSel   = "a.job"
	cardSel   = ".card"
	modalSel  = ".modal"
	applySel  = ".modal a.apply"
	closeSel  = ".modal .close"
	nextSel   = "button.next"
	inputSel  = "#q"
	submitSel = "#go"
)

type card struct {
	apply    string
	navigate string
	broken   bool
}

type listing struct {
	links        []string
	cards        []card
	hasNext      bool
	nextDisabled bool
}

// fakePage simulates a listing site. With param set, the page shown follows
// the URL's page parameter; otherwise the next control and scrolling move
// through pages.
type fakePage struct {
	pages      []listing
	param      string
	cumulative bool

	url     string
	prevURL string
	current int
	modal   int

	navigated []string
	filled    []string
	pressed   []string
	clicked   []string
	shots     int
	closed    bool
	navErr    error
	closeErr  error
	backErr   error
}

func newFakePage(pages ...listing) *fakePage {
	return &fakePage{pages: pages, modal: -1}
}

func (p *fakePage) listing() listing {
	if p.current < 0 || p.current >= len(p.pages) {
		return listing{}
	}
	return p.pages[p.current]
}

func (p *fakePage) Navigate(_ context.Context, u string) error {
	if p.navErr != nil {
		return p.navErr
	}
	p.navigated = append(p.navigated, u)
	p.url = u
	if p.param != "" {
		p.current = pageOf(u, p.param) - 1
	}
	return nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) WaitVisible(selector string, _ time.Duration) error {
	if selector == ".never" {
		return models.ErrNavigationTimeout
	}
	return nil
}

func (p *fakePage) Count(selector string) (int, error) {
	switch selector {
	case cardSel:
		return len(p.listing().cards), nil
	case nextSel:
		if p.listing().hasNext {
			return 1, nil
		}
	}
	return 0, nil
}

func (p *fakePage) Attributes(selector, _ string) ([]string, error) {
	switch selector {
	case linkSel:
		if !p.cumulative {
			return p.listing().links, nil
		}
		var all []string
		for i := 0; i <= p.current && i < len(p.pages); i++ {
			all = append(all, p.pages[i].links...)
		}
		return all, nil
	case applySel, modalSel + " a":
		if p.modal < 0 {
			return nil, nil
		}
		if a := p.listing().cards[p.modal].apply; a != "" {
			return []string{a}, nil
		}
	}
	return nil, nil
}

func (p *fakePage) ClickNth(selector string, n int) error {
	if selector != cardSel {
		return fmt.Errorf("unexpected selector %s", selector)
	}
	c := p.listing().cards[n]
	switch {
	case c.broken:
		return errors.New("element detached")
	case c.navigate != "":
		p.prevURL = p.url
		p.url = c.navigate
	default:
		p.modal = n
	}
	return nil
}

func (p *fakePage) Click(selector string) error {
	p.clicked = append(p.clicked, selector)
	switch selector {
	case nextSel:
		p.current++
	case closeSel:
		if p.closeErr != nil {
			return p.closeErr
		}
		p.modal = -1
	}
	return nil
}

func (p *fakePage) Fill(selector, value string) error {
	p.filled = append(p.filled, selector+"="+value)
	return nil
}

func (p *fakePage) Press(selector, key string) error {
	p.pressed = append(p.pressed, selector+":"+key)
	return nil
}

func (p *fakePage) IsDisabled(string) (bool, error) { return p.listing().nextDisabled, nil }

func (p *fakePage) ScrollHeight() (int, error) { return 1000 * (p.current + 1), nil }

func (p *fakePage) ScrollToBottom() error {
	if p.current < len(p.pages)-1 {
		p.current++
	}
	return nil
}

func (p *fakePage) Content() (string, error) {
	return fmt.Sprintf("<html><body>page %d</body></html>", p.current+1), nil
}

func (p *fakePage) Back() error {
	if p.backErr != nil {
		return p.backErr
	}
	p.url = p.prevURL
	return nil
}

func (p *fakePage) Screenshot(string) error {
	p.shots++
	return nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

type fakeLauncher struct {
	page   *fakePage
	err    error
	opened int
}

func (l *fakeLauncher) Open(context.Context) (browser.Page, error) {
	l.opened++
	if l.err != nil {
		return nil, l.err
	}
	return l.page, nil
}

type fakeExtractor struct {
	mu    sync.Mutex
	list  func(extractor.Target) (extractor.ListResult, error)
	calls []extractor.Target
}

func (f *fakeExtractor) ExtractList(_ context.Context, target extractor.Target) (extractor.ListResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, target)
	f.mu.Unlock()
	return f.list(target)
}

func (f *fakeExtractor) ExtractDetail(context.Context, extractor.Target) (models.ExtractedJob, error) {
	return models.ExtractedJob{}, nil
}

func cands(urls ...string) []models.CandidateJob {
	out := make([]models.CandidateJob, len(urls))
	for i, u := range urls {
		out[i] = models.CandidateJob{ApplicationURL: u}
	}
	return out
}

func urlsOf(jobs []models.CandidateJob) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ApplicationURL
	}
	return out
}
