// Package normalize turns free-text job fields into canonical values.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the canonical timestamp format of JobRecord.PostedDate.
const DateLayout = "2006-01-02 15:04:05"

var (
	spaceRegex    = regexp.MustCompile(`\s+`)
	prefixRegex   = regexp.MustCompile(`(?i)^(?:re)?(?:posted|published|active|updated)(?:\s+on)?[:\s]+`)
	relativeRegex = regexp.MustCompile(`^(\d+|an?|one)\+?\s*(seconds?|secs?|minutes?|mins?|hours?|hrs?|h|days?|d|weeks?|wks?|w|months?|mos?|years?|yrs?)\s+ago$`)
)

// ParseDate converts "2 days ago", "today" or "June 22, 2025" into DateLayout,
// relative to now. Empty or unparseable input yields "".
func ParseDate(raw string, now time.Time) string {
	cleaned := spaceRegex.ReplaceAllString(strings.TrimSpace(raw), " ")
	cleaned = strings.TrimSpace(prefixRegex.ReplaceAllString(cleaned, ""))
	s := strings.ToLower(cleaned)
	if s == "" {
		return ""
	}

	switch s {
	case "now", "just now", "today", "just posted", "few seconds ago", "a few seconds ago":
		return now.Format(DateLayout)
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(DateLayout)
	}

	if m := relativeRegex.FindStringSubmatch(s); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		return shift(now, n, m[2]).Format(DateLayout)
	}

	t, err := dateparse.ParseIn(cleaned, now.Location())
	if err != nil {
		return ""
	}
	return t.Format(DateLayout)
}

func shift(now time.Time, n int, unit string) time.Time {
	switch {
	case strings.HasPrefix(unit, "s"):
		return now.Add(-time.Duration(n) * time.Second)
	case strings.HasPrefix(unit, "mi"):
		return now.Add(-time.Duration(n) * time.Minute)
	case strings.HasPrefix(unit, "h"):
		return now.Add(-time.Duration(n) * time.Hour)
	case strings.HasPrefix(unit, "d"):
		return now.AddDate(0, 0, -n)
	case strings.HasPrefix(unit, "w"):
		return now.AddDate(0, 0, -7*n)
	case strings.HasPrefix(unit, "mo"):
		return now.AddDate(0, -n, 0)
	default:
		return now.AddDate(-n, 0, 0)
	}
}
