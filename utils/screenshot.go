package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go-job-harvester/internal/browser"
	"go-job-harvester/internal/logger"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ScreenShotDebugger saves full-page captures when a site traversal fails.
type ScreenShotDebugger struct {
	outputDir string
	log       logger.Logger
}

// NewScreenShotDebugger returns nil when dir is empty; a nil debugger is a no-op.
func NewScreenShotDebugger(dir string, log logger.Logger) *ScreenShotDebugger {
	if dir == "" {
		return nil
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ScreenShotDebugger{outputDir: dir, log: log}
}

func (s *ScreenShotDebugger) CaptureAndLog(page browser.Page, name, message string) (string, error) {
	if s == nil || page == nil {
		return "", nil
	}
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	s.log.Info("📸 "+message, logger.String("site", name))

	if err := page.Screenshot(path); err != nil {
		s.log.Warn("⚠️ Failed to capture screenshot", logger.Error(err))
		return "", err
	}

	s.log.Info("Screenshot saved", logger.String("path", path))
	return path, nil
}
