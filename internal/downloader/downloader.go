// Package downloader implements the persistence role: it drains the work
// queue, fetches each item's URL, and writes the content to the archive
// store.
package downloader

import (
	"bytes"
	"context"
	"path"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ligain/ycrawler/internal/archive"
	"github.com/ligain/ycrawler/internal/metrics"
)

// Config controls the drain loop.
type Config struct {
	// EmptyQueueSleep is the pause taken when the queue is observed empty,
	// instead of busy-spinning.
	EmptyQueueSleep time.Duration
	// WriteWorkers bounds the file-writing pool; 0 means one per CPU.
	WriteWorkers int
}

// Downloader consumes work items and persists fetched pages. It is the
// sole consumer of the work queue. File writes run on a bounded worker
// pool so slow disk I/O does not stall the fetching of subsequent items.
type Downloader struct {
	cfg     Config
	fetcher archive.Fetcher
	queue   archive.Queue
	store   archive.Store
	logger  *zap.Logger
	writes  errgroup.Group
}

// New constructs a Downloader.
func New(
	cfg Config,
	fetcher archive.Fetcher,
	queue archive.Queue,
	store archive.Store,
	logger *zap.Logger,
) *Downloader {
	if cfg.EmptyQueueSleep <= 0 {
		cfg.EmptyQueueSleep = time.Second
	}
	if cfg.WriteWorkers <= 0 {
		cfg.WriteWorkers = runtime.NumCPU()
	}
	return &Downloader{
		cfg:     cfg,
		fetcher: fetcher,
		queue:   queue,
		store:   store,
		logger:  logger,
	}
}

// Run drains the queue until the context ends, then waits for in-flight
// writes. No error terminates the loop; dropped items are only visible in
// the log stream.
func (d *Downloader) Run(ctx context.Context) {
	d.writes.SetLimit(d.cfg.WriteWorkers)
	d.logger.Info("downloader started", zap.Int("write_workers", d.cfg.WriteWorkers))
	for {
		if ctx.Err() != nil {
			break
		}
		item, ok := d.queue.TryDequeue()
		if !ok {
			if err := archive.Sleep(ctx, d.cfg.EmptyQueueSleep); err != nil {
				break
			}
			continue
		}
		d.process(ctx, item)
	}
	_ = d.writes.Wait()
	d.logger.Info("downloader stopped", zap.Error(ctx.Err()))
}

func (d *Downloader) process(ctx context.Context, item archive.WorkItem) {
	target := path.Join(item.Dir, item.Filename)
	doc := d.fetcher.Fetch(ctx, item.URL)
	if doc.Empty() {
		d.logger.Error("empty content for file",
			zap.String("url", item.URL),
			zap.String("file", target))
		metrics.EmptySkips.Inc()
		return
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		d.logger.Error("serialize document",
			zap.String("url", item.URL),
			zap.Error(err))
		metrics.SaveFailures.Inc()
		return
	}
	content := buf.Bytes()

	d.logger.Info("saving content", zap.String("url", item.URL), zap.String("file", target))
	// Go blocks only when every write worker is busy, suspending the
	// drain loop until a slot frees.
	d.writes.Go(func() error {
		written, err := d.store.Save(item.Dir, item.Filename, content)
		if err != nil {
			d.logger.Error("error on saving file",
				zap.String("url", item.URL),
				zap.String("file", target),
				zap.Error(err))
			metrics.SaveFailures.Inc()
			return nil
		}
		d.logger.Info("processed url from download queue",
			zap.String("url", item.URL),
			zap.String("path", written))
		metrics.PagesSaved.Inc()
		return nil
	})
}
