package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go-job-harvester/internal/normalize"
)

// future dates within this skew are tolerated (site time zones)
const futureSkew = 48 * time.Hour

var (
	yearRegex  = regexp.MustCompile(`\b(20\d{2})\b`)
	digitRegex = regexp.MustCompile(`\d+`)
)

// IsRecentJob reports whether a posted date lies within maxAge of now.
// Dates that cannot be read are kept.
func IsRecentJob(posted string, now time.Time, maxAge time.Duration) bool {
	posted = strings.TrimSpace(posted)
	switch strings.ToLower(posted) {
	case "", "n/a", "recent":
		return true
	}

	//only a year is known, e.g. "Posted in 2025"
	if m := yearRegex.FindStringSubmatch(posted); m != nil && len(digitRegex.FindAllString(posted, -1)) == 1 {
		year, _ := strconv.Atoi(m[1])
		return year >= now.Year()-1 && year <= now.Year()
	}

	if t, ok := postedTime(posted, now); ok {
		age := now.Sub(t)
		return age <= maxAge && age >= -futureSkew
	}
	return true
}

func postedTime(posted string, now time.Time) (time.Time, bool) {
	//day-first before the month-first guess of the general parser
	if t, err := time.ParseInLocation("2/1/2006", posted, now.Location()); err == nil {
		return t, true
	}
	canonical := normalize.ParseDate(posted, now)
	if canonical == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(normalize.DateLayout, canonical, now.Location())
	return t, err == nil
}
