// Package database persists job records through upsert sinks keyed by jobId.
package database

import (
	"context"
	"strings"
	"time"

	"go-job-harvester/internal/models"
	"go-job-harvester/internal/normalize"
)

// Sink is the persistence collaborator. Upsert returns how many rows were written.
type Sink interface {
	Upsert(ctx context.Context, records []models.JobRecord) (int, error)
	Close() error
}

// PrepareRows drops records without a title and collapses repeated jobIds,
// keeping the last record at the position of the first.
func PrepareRows(records []models.JobRecord) []models.JobRecord {
	out := make([]models.JobRecord, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.Title) == "" || rec.JobID == "" {
			continue
		}
		if i, ok := index[rec.JobID]; ok {
			out[i] = rec
			continue
		}
		index[rec.JobID] = len(out)
		out = append(out, rec)
	}
	return out
}

// postedAt parses the canonical date, nil when it does not parse.
func postedAt(s string) *time.Time {
	t, err := time.Parse(normalize.DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
