package navigator

import (
	"net/url"
	"strconv"
	"strings"

	"go-job-harvester/internal/models"
)

// SearchURL substitutes the query-escaped keyword for {keyword} or {query}.
func SearchURL(template, keyword string) string {
	escaped := url.QueryEscape(strings.TrimSpace(keyword))
	return strings.NewReplacer("{keyword}", escaped, "{query}", escaped).Replace(template)
}

// WithPage returns rawURL with its page query parameter set to page.
func WithPage(rawURL, param string, page int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(param, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// pageOf reads the current page number, 1 when absent.
func pageOf(rawURL, param string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(u.Query().Get(param))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}

// candidateSet keeps first-seen order and drops repeated or empty URLs.
type candidateSet struct {
	seen map[string]struct{}
	jobs []models.CandidateJob
}

func newCandidateSet() *candidateSet {
	return &candidateSet{seen: make(map[string]struct{})}
}

// add returns how many candidates were new.
func (s *candidateSet) add(cands ...models.CandidateJob) int {
	added := 0
	for _, c := range cands {
		if c.ApplicationURL == "" {
			continue
		}
		if _, ok := s.seen[c.ApplicationURL]; ok {
			continue
		}
		s.seen[c.ApplicationURL] = struct{}{}
		s.jobs = append(s.jobs, c)
		added++
	}
	return added
}
