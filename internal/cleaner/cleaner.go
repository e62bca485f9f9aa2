// Package cleaner shrinks rendered pages before they are sent to the extractor.
package cleaner

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

var (
	noiseSelector = "script, style, noscript, svg, iframe, template, link, meta"
	spaceRegex    = regexp.MustCompile(`\s+`)
	betweenTags   = regexp.MustCompile(`>\s+<`)
)

// Cleaner sanitizes HTML content using Bluemonday
type Cleaner struct {
	policy   *bluemonday.Policy
	maxChars int
}

// New creates a cleaner keeping structure, links and images. maxChars <= 0 disables truncation.
func New(maxChars int) *Cleaner {
	policy := bluemonday.NewPolicy()

	policy.AllowElements("p", "br", "div", "span", "section", "article", "main")
	policy.AllowElements("strong", "b", "em", "i", "u")
	policy.AllowElements("ul", "ol", "li", "dl", "dt", "dd")
	policy.AllowElements("h1", "h2", "h3", "h4", "h5", "h6", "title")
	policy.AllowElements("table", "tr", "td", "th", "time")
	policy.AllowAttrs("datetime").OnElements("time")

	policy.AllowAttrs("href").OnElements("a")
	policy.AllowAttrs("src", "alt").OnElements("img")
	policy.AllowRelativeURLs(true)
	policy.RequireParseableURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto")

	return &Cleaner{policy: policy, maxChars: maxChars}
}

// Clean strips non-content elements, resolves relative links against pageURL
// and sanitizes what is left.
func (c *Cleaner) Clean(rawHTML, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return c.collapse(c.policy.Sanitize(rawHTML))
	}
	doc.Find(noiseSelector).Remove()

	if base, err := url.Parse(pageURL); err == nil && base.IsAbs() {
		resolve := func(attr string) func(int, *goquery.Selection) {
			return func(_ int, s *goquery.Selection) {
				v, ok := s.Attr(attr)
				if !ok {
					return
				}
				if ref, err := url.Parse(strings.TrimSpace(v)); err == nil {
					s.SetAttr(attr, base.ResolveReference(ref).String())
				}
			}
		}
		doc.Find("a[href]").Each(resolve("href"))
		doc.Find("img[src]").Each(resolve("src"))
	}

	out, err := doc.Html()
	if err != nil {
		return ""
	}
	return c.collapse(c.policy.Sanitize(out))
}

// ForList returns the cleaned page truncated to the size budget.
func (c *Cleaner) ForList(rawHTML, pageURL string) string {
	return c.truncate(c.Clean(rawHTML, pageURL))
}

// ForDetail prefers the full cleaned page; when it is over budget the
// readability main-content extraction is used instead.
func (c *Cleaner) ForDetail(rawHTML, pageURL string) string {
	cleaned := c.Clean(rawHTML, pageURL)
	if c.maxChars <= 0 || len(cleaned) <= c.maxChars {
		return cleaned
	}
	if title, content := Readable(rawHTML, pageURL); content != "" {
		main := c.collapse(c.policy.Sanitize(content))
		if title != "" {
			main = "<h1>" + title + "</h1>" + main
		}
		return c.truncate(main)
	}
	return c.truncate(cleaned)
}

// Readable runs readability over the document. Empty strings mean it found nothing.
func Readable(documentHTML, pageURL string) (title, content string) {
	documentHTML = strings.TrimSpace(documentHTML)
	if documentHTML == "" {
		return "", ""
	}
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", ""
	}
	article, err := readability.FromReader(strings.NewReader(documentHTML), parsedURL)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(article.Title), strings.TrimSpace(article.Content)
}

// Text removes all HTML and returns plain text
func Text(html string) string {
	text := bluemonday.StrictPolicy().Sanitize(html)
	return strings.TrimSpace(spaceRegex.ReplaceAllString(text, " "))
}

func (c *Cleaner) collapse(s string) string {
	s = betweenTags.ReplaceAllString(s, "><")
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}

func (c *Cleaner) truncate(s string) string {
	if c.maxChars <= 0 || len(s) <= c.maxChars {
		return s
	}
	s = s[:c.maxChars]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
