package archive

import (
	"context"
	"time"
)

// Sleep blocks for d or until ctx is canceled, returning ctx.Err() in the
// latter case. Every inter-cycle and retry pause in the pipeline goes
// through here so shutdown is never delayed by a sleeping role.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
