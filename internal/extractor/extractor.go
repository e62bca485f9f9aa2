// Package extractor turns listing and detail pages into structured job data
// through an LLM.
package extractor

import (
	"context"

	"go-job-harvester/internal/models"
)

// Target is the page to extract from. When HTML is set it is used as-is,
// otherwise URL is fetched.
type Target struct {
	URL  string
	HTML string
}

// ListResult is what list mode returns for one listing page.
type ListResult struct {
	Jobs []models.CandidateJob
	// TotalPages is the page count the listing reports, 0 when unknown.
	TotalPages int
}

// Extractor is the field extraction collaborator. Errors wrap
// models.ErrExtractionFailure; callers degrade them to empty results.
type Extractor interface {
	ExtractList(ctx context.Context, target Target) (ListResult, error)
	ExtractDetail(ctx context.Context, target Target) (models.ExtractedJob, error)
}
