package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-job-harvester/internal/browser"
	"go-job-harvester/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shotPage struct {
	browser.Page
	paths []string
}

func (p *shotPage) Screenshot(path string) error {
	p.paths = append(p.paths, path)
	return os.WriteFile(path, []byte("png"), 0644)
}

func TestCaptureAndLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	d := NewScreenShotDebugger(dir, logger.NewNop())
	page := &shotPage{}

	path, err := d.CaptureAndLog(page, "Contoso Careers/listing", "listing failed")
	require.NoError(t, err)
	require.Len(t, page.paths, 1)
	assert.Equal(t, path, page.paths[0])
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Contoso_Careers_listing_"))
	assert.FileExists(t, path)
}

func TestCaptureAndLog_NilDebugger(t *testing.T) {
	var d *ScreenShotDebugger
	path, err := d.CaptureAndLog(&shotPage{}, "x", "y")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Nil(t, NewScreenShotDebugger("", nil))
}
