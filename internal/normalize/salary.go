package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultYearlyThreshold is the amount above which a salary without an
// explicit period is read as yearly.
const DefaultYearlyThreshold = 10000.0

var (
	salaryReplacements = []struct{ old, new string }{
		{",", ""},
		{"–", "-"},
		{"—", "-"},
		{" to ", "-"},
		{" or ", " | "},
		{"/", " per "},
		{"usd", "$"},
		{"us$", "$"},
		{"aud", "$aud"},
		{"gbp", "£"},
		{"eur", "€"},
	}

	periodRegex   = regexp.MustCompile(`\b(hours?|hourly|hrs?|days?|daily|months?|monthly|mos?|years?|yearly|yrs?|annum|annually|annual)\b`)
	currencyRegex = regexp.MustCompile(`[$£€]`)
	rangeRegex    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(k\b)?\s*-\s*(?:\$aud|[$£€])?\s*(\d+(?:\.\d+)?)\s*(k\b)?`)
	amountRegex   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(k\b)?`)
)

// Salary is a parsed compensation range. Min equals Max for single amounts.
type Salary struct {
	Currency string
	Min      float64
	Max      float64
	Period   string
	Range    bool
}

// String renders the canonical "{currency}{min}-{max} per {period}" form.
func (s Salary) String() string {
	var b strings.Builder
	b.WriteString(s.Currency)
	b.WriteString(formatAmount(s.Min))
	if s.Range {
		b.WriteString("-")
		b.WriteString(formatAmount(s.Max))
	}
	if s.Period != "" {
		b.WriteString(" per ")
		b.WriteString(s.Period)
	}
	return b.String()
}

// CurrencyCode maps the canonical symbol to an ISO code.
func (s Salary) CurrencyCode() string {
	switch s.Currency {
	case "$":
		return "USD"
	case "A$":
		return "AUD"
	case "£":
		return "GBP"
	case "€":
		return "EUR"
	}
	return ""
}

// SalaryParser normalizes free-text compensation strings.
type SalaryParser struct {
	// YearlyThreshold assumes a yearly period when no period keyword is
	// present and the largest amount exceeds it. Zero disables the rule.
	YearlyThreshold float64
}

func NewSalaryParser(yearlyThreshold float64) *SalaryParser {
	return &SalaryParser{YearlyThreshold: yearlyThreshold}
}

// Normalize returns the canonical salary string, or "" when nothing parses.
func (p *SalaryParser) Normalize(text string) string {
	s, ok := p.Parse(text)
	if !ok {
		return ""
	}
	return s.String()
}

// Parse extracts currency, bounds and period from text.
func (p *SalaryParser) Parse(text string) (Salary, bool) {
	text = strings.ToLower(text)
	for _, r := range salaryReplacements {
		text = strings.ReplaceAll(text, r.old, r.new)
	}
	text = strings.TrimSpace(text)
	//keep only the first alternative
	if i := strings.Index(text, "|"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if text == "" {
		return Salary{}, false
	}

	var out Salary
	if m := periodRegex.FindStringSubmatch(text); m != nil {
		out.Period = periodOf(m[1])
	}
	if strings.Contains(text, "$aud") {
		out.Currency = "A$"
	} else if c := currencyRegex.FindString(text); c != "" {
		out.Currency = c
	}

	parsed := false
	if strings.Contains(strings.ReplaceAll(text, " ", ""), "-") {
		if m := rangeRegex.FindStringSubmatch(text); m != nil {
			min, err1 := strconv.ParseFloat(m[1], 64)
			max, err2 := strconv.ParseFloat(m[3], 64)
			if err1 != nil || err2 != nil {
				return Salary{}, false
			}
			if m[4] != "" {
				max *= 1000
				if m[2] != "" || min < 1000 {
					min *= 1000
				}
			} else if m[2] != "" {
				min *= 1000
			}
			out.Min, out.Max, out.Range = min, max, true
			parsed = true
		}
	}
	if !parsed {
		m := amountRegex.FindStringSubmatch(text)
		if m == nil {
			return Salary{}, false
		}
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Salary{}, false
		}
		//a bare "401k" is a retirement plan, not pay
		if m[2] != "" && out.Currency != "" {
			amount *= 1000
		}
		out.Min, out.Max = amount, amount
	}
	if math.IsInf(out.Max, 0) || math.IsNaN(out.Max) {
		return Salary{}, false
	}

	if out.Period == "" && p.YearlyThreshold > 0 && math.Max(out.Min, out.Max) > p.YearlyThreshold {
		out.Period = "year"
	}
	return out, true
}

func periodOf(word string) string {
	switch {
	case strings.HasPrefix(word, "h"):
		return "hour"
	case strings.HasPrefix(word, "d"):
		return "day"
	case strings.HasPrefix(word, "m"):
		return "month"
	default:
		return "year"
	}
}

// formatAmount prints floats the way the jobs table has always stored them: 60000.0, 42.5.
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
