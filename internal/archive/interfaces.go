package archive

import (
	"context"
	"time"
)

// Fetcher retrieves a URL and returns its parsed content. Fetch never
// returns an error: every failure mode (transport errors, bad statuses,
// unsupported content types, timeouts, retry exhaustion) is absorbed and
// surfaced as an empty Document plus a log record.
type Fetcher interface {
	Fetch(ctx context.Context, url string) *Document
}

// Queue provides bounded FIFO transfer of work items between the crawler
// and the downloader. Enqueue blocks while the queue is full; that is the
// pipeline's only backpressure mechanism.
type Queue interface {
	Enqueue(ctx context.Context, item WorkItem) error
	Dequeue(ctx context.Context) (WorkItem, error)
	TryDequeue() (WorkItem, bool)
}

// Store persists archive folders and files under a single root directory.
type Store interface {
	// EnsureFolder creates the named folder if it does not exist and
	// reports whether it was created. An already existing folder marks the
	// story as archived.
	EnsureFolder(name string) (created bool, err error)
	// Save writes data to dir/filename under the store root and returns
	// the written path.
	Save(dir, filename string, data []byte) (string, error)
}

// Clock returns the current time (swappable in tests).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces cycle IDs carried through log records.
type IDGenerator interface {
	NewID() (string, error)
}

// RetryPolicy bounds the fetch retry loop. It is a plain value threaded
// into the fetcher so retry behavior stays independently testable.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// Delay is the pause between consecutive attempts.
	Delay time.Duration
}
