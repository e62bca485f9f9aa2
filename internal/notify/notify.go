// Package notify delivers the end-of-run summary.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/models"
)

const SummarySubject = "Job Scraping Completed"

// Notifier sends one message. Callers treat failures as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// Multi fans a message out to every configured channel.
type Multi struct {
	notifiers []Notifier
	log       logger.Logger
}

func NewMulti(log logger.Logger, notifiers ...Notifier) *Multi {
	if log == nil {
		log = logger.NewNop()
	}
	m := &Multi{log: log}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Len reports how many channels are configured.
func (m *Multi) Len() int {
	return len(m.notifiers)
}

// Notify tries every channel and joins their errors.
func (m *Multi) Notify(ctx context.Context, subject, body string) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, subject, body); err != nil {
			m.log.Warn("⚠️ Notification failed", logger.String("channel", fmt.Sprintf("%T", n)), logger.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildSummary renders the run report body.
func BuildSummary(s models.RunSummary) string {
	failures := s.Failures
	if failures == nil {
		failures = []models.FailureRecord{}
	}
	details, err := json.MarshalIndent(failures, "", "  ")
	if err != nil {
		details = []byte("[]")
	}
	body := fmt.Sprintf("The job scraping script has finished running.\n\n"+
		"Successful jobs: %d\nSaved jobs: %d\nFailed jobs: %d\n",
		s.Succeeded, s.Saved, len(s.Failures))
	if s.SaveError != "" {
		body += fmt.Sprintf("Save error: %s\n", s.SaveError)
	}
	if s.Cancelled {
		body += "Run was cancelled before completion.\n"
	}
	body += "\nFailed jobs details:\n" + string(details)
	return body
}
