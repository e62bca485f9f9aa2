// Package failures keeps the append-only log of site and keyword failures.
package failures

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-job-harvester/internal/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Recorder accumulates FailureRecords for the run summary and mirrors each
// one as a JSON line to an optional file.
type Recorder struct {
	mu      sync.Mutex
	records []models.FailureRecord
	sink    *zap.Logger
	file    *os.File
	now     func() time.Time
}

// NewRecorder appends to path. An empty path keeps failures in memory only.
func NewRecorder(path string) (*Recorder, error) {
	r := &Recorder{now: time.Now}
	if path == "" {
		return r, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create failures dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open failures file: %w", err)
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey:     "context",
		TimeKey:        "at",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	r.file = f
	r.sink = zap.New(zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.DebugLevel))
	return r, nil
}

// Record appends a failure. Safe for concurrent use.
func (r *Recorder) Record(where, site, keyword string, err error) models.FailureRecord {
	rec := models.FailureRecord{
		Context: where,
		Site:    site,
		Keyword: keyword,
		At:      r.now(),
	}
	if err != nil {
		rec.Error = err.Error()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if r.sink != nil {
		fields := []zap.Field{zap.String("error", rec.Error)}
		if site != "" {
			fields = append(fields, zap.String("site", site))
		}
		if keyword != "" {
			fields = append(fields, zap.String("keyword", keyword))
		}
		r.sink.Error(where, fields...)
	}
	return rec
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []models.FailureRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.FailureRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Reset clears the in-memory list between scheduled runs; the file keeps growing.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

func (r *Recorder) Close() error {
	if r.sink == nil {
		return nil
	}
	_ = r.sink.Sync()
	return r.file.Close()
}
