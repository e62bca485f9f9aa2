package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultKeywords is the topical allow-list: Dynamics 365 and Power Platform roles.
var DefaultKeywords = []string{
	"power platform",
	"power automate",
	"power apps",
	"powerapps",
	"dynamics 365",
	"d365",
	"dataverse",
	"crm",
	"erp",
}

// foldText strips accents, lower-cases and turns punctuation into single
// spaces, padded so keywords can be matched on whole words.
func foldText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		result = str
	}
	result = strings.ToLower(result)

	var b strings.Builder
	b.Grow(len(result) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range result {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}
