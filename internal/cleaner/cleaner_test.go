package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const listingHTML = `<html><head><title>Careers</title><script>var x = 1;</script><style>.a{}</style></head>
<body>
  <nav><a href="/about">About</a></nav>
  <div class="results" onclick="steal()">
    <a href="/jobs/42">Power Platform Developer</a>
    <a href="https://other.test/jobs/7">D365 Consultant</a>
    <a href="javascript:alert(1)">Bad</a>
    <img src="/logo.png" alt="Contoso">
  </div>
  <noscript>enable js</noscript>
</body></html>`

func TestClean_StripsNoiseAndResolvesLinks(t *testing.T) {
	out := New(0).Clean(listingHTML, "https://careers.contoso.com/search?q=x")

	assert.NotContains(t, out, "var x")
	assert.NotContains(t, out, ".a{}")
	assert.NotContains(t, out, "enable js")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, `href="https://careers.contoso.com/jobs/42"`)
	assert.Contains(t, out, `href="https://other.test/jobs/7"`)
	assert.Contains(t, out, `src="https://careers.contoso.com/logo.png"`)
	assert.Contains(t, out, "Power Platform Developer")
}

func TestForList_Truncates(t *testing.T) {
	out := New(40).ForList(listingHTML, "https://careers.contoso.com")
	assert.LessOrEqual(t, len(out), 40)
}

func TestTruncate_KeepsValidUTF8(t *testing.T) {
	c := New(4)
	out := c.truncate("abcé")
	assert.Equal(t, "abc", out)
}

func TestForDetail_UsesReadabilityWhenOverBudget(t *testing.T) {
	body := strings.Repeat("<p>Filler paragraph about the company culture and benefits, with plenty of words.</p>", 30)
	doc := `<html><head><title>Senior Dynamics 365 Developer</title></head><body>
		<div id="sidebar">` + strings.Repeat(`<a href="/x">link</a>`, 200) + `</div>
		<article><h1>Senior Dynamics 365 Developer</h1>` + body + `</article></body></html>`

	c := New(3000)
	out := c.ForDetail(doc, "https://careers.contoso.com/jobs/1")
	assert.LessOrEqual(t, len(out), 3000)
	assert.Contains(t, out, "Filler paragraph")
}

func TestText(t *testing.T) {
	assert.Equal(t, "Hello world", Text("<p>Hello</p>\n\n<b>world</b>"))
}
