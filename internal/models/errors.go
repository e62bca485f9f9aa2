package models

import "errors"

var (
	// ErrNavigationTimeout means a page never became ready in time. Callers proceed anyway.
	ErrNavigationTimeout = errors.New("navigation timeout")
	// ErrExtractionFailure means the extractor failed or returned unparseable output.
	ErrExtractionFailure = errors.New("extraction failure")
	// ErrSiteFailure marks an error that aborts one site/keyword traversal.
	ErrSiteFailure = errors.New("site failure")
	// ErrPersistenceFailure is returned when the sink rejects the batch after retries.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrNoApplicationURL marks a candidate that cannot be enriched.
	ErrNoApplicationURL = errors.New("candidate has no application url")
	// ErrIrrelevant marks a record rejected by the topical filter.
	ErrIrrelevant = errors.New("job outside topical allow-list")
)
