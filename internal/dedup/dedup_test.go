package dedup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_SourceID(t *testing.T) {
	rec := models.JobRecord{CompanyName: " Contoso Ltd ", SourceJobID: "R-123"}
	assert.Equal(t, "contoso_ltd_R-123", Key(rec, ""))
	assert.Equal(t, Key(rec, ""), Key(rec, ""))
}

func TestKey_FallbackHashIgnoresDescription(t *testing.T) {
	a := models.JobRecord{
		CompanyName:    "Fabrikam",
		Title:          "Power Platform Developer",
		Location:       "Remote",
		ApplicationURL: "https://fabrikam.test/jobs/1",
		Description:    "first description",
	}
	b := a
	b.Description = "rewritten description"

	keyA := Key(a, "")
	assert.Equal(t, keyA, Key(b, ""))
	assert.Regexp(t, `^fabrikam_[0-9a-f]{10}$`, keyA)

	c := a
	c.Location = "Seattle"
	assert.NotEqual(t, keyA, Key(c, ""))
}

func TestKey_FallbackCompany(t *testing.T) {
	rec := models.JobRecord{SourceJobID: "9"}
	assert.Equal(t, "northwind_traders_9", Key(rec, "Northwind Traders"))
}

func TestJobCache_PersistsAndExpires(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := NewJobCache(dir, 24*time.Hour, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, cache.Add(ctx, []string{"https://a.test/1"}))

	seen, err := cache.IsSeen(ctx, "https://a.test/1")
	require.NoError(t, err)
	assert.True(t, seen)

	reloaded, err := NewJobCache(dir, 24*time.Hour, logger.NewNop())
	require.NoError(t, err)
	seen, _ = reloaded.IsSeen(ctx, "https://a.test/1")
	assert.True(t, seen)

	stale := `[{"url":"https://a.test/old","timestamp":1}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seen_jobs.json"), []byte(stale), 0644))
	expired, err := NewJobCache(dir, 24*time.Hour, logger.NewNop())
	require.NoError(t, err)
	seen, _ = expired.IsSeen(ctx, "https://a.test/old")
	assert.False(t, seen)
}

func TestJobCache_CorruptFileIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seen_jobs.json"), []byte("{nope"), 0644))

	cache, err := NewJobCache(dir, time.Hour, logger.NewNop())
	require.NoError(t, err)
	seen, _ := cache.IsSeen(context.Background(), "x")
	assert.False(t, seen)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "test:seen", time.Hour)
	ctx := context.Background()

	seen, err := store.IsSeen(ctx, "https://a.test/1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Add(ctx, []string{"https://a.test/1", "https://a.test/2"}))
	seen, err = store.IsSeen(ctx, "https://a.test/2")
	require.NoError(t, err)
	assert.True(t, seen)

	mr.FastForward(2 * time.Hour)
	seen, err = store.IsSeen(ctx, "https://a.test/1")
	require.NoError(t, err)
	assert.False(t, seen)
}
