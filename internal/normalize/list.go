package normalize

import (
	"strings"

	"go-job-harvester/internal/models"
)

// List trims items and drops empties and case-insensitive repeats, keeping
// first-seen order. The result is never nil.
func List(items models.StringList) models.StringList {
	out := make(models.StringList, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.Join(strings.Fields(it), " ")
		key := strings.ToLower(it)
		if it == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

// Text collapses runs of whitespace.
func Text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
