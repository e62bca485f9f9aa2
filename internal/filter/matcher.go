package filter

import (
	"strings"
	"sync"
	"time"

	"go-job-harvester/internal/models"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Matcher is the topical relevance guard applied to enriched records.
type Matcher struct {
	keywords []string
	//the automaton keeps per-search state
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
	maxAge  time.Duration
	now     func() time.Time
}

// NewMatcher builds an Aho-Corasick automaton over the folded keywords.
// maxAgeDays <= 0 disables the recency check.
func NewMatcher(keywords []string, maxAgeDays int) *Matcher {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	m := &Matcher{now: time.Now}
	for _, k := range keywords {
		if folded := foldText(k); strings.TrimSpace(folded) != "" {
			m.keywords = append(m.keywords, folded)
		}
	}
	if len(m.keywords) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(m.keywords)
	}
	if maxAgeDays > 0 {
		m.maxAge = time.Duration(maxAgeDays) * 24 * time.Hour
	}
	return m
}

// MatchedKeywords returns the allow-list entries found in text.
func (m *Matcher) MatchedKeywords(text string) []string {
	if m.matcher == nil {
		return nil
	}
	m.mu.Lock()
	hits := m.matcher.Match([]byte(foldText(text)))
	m.mu.Unlock()
	out := make([]string, 0, len(hits))
	for _, i := range hits {
		if i < len(m.keywords) {
			out = append(out, strings.TrimSpace(m.keywords[i]))
		}
	}
	return out
}

// Matches reports whether title or description mention an allow-listed topic.
func (m *Matcher) Matches(title, description string) bool {
	return len(m.MatchedKeywords(title+" "+description)) > 0
}

// IsRelevant applies the keyword and recency checks to a record.
func (m *Matcher) IsRelevant(rec models.JobRecord) bool {
	if !m.Matches(rec.Title, rec.Description) {
		return false
	}
	if m.maxAge > 0 && !IsRecentJob(rec.PostedDate, m.now(), m.maxAge) {
		return false
	}
	return true
}
