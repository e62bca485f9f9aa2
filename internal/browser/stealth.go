package browser

import (
	"context"
	"math/rand"
	"time"
)

// RandomDelay waits for a random duration in [min, max] or until ctx is done.
func RandomDelay(ctx context.Context, min, max time.Duration) {
	if max <= 0 {
		return
	}
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	Sleep(ctx, d)
}

// Sleep pauses for d unless ctx is cancelled first.
func Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
