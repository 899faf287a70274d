// Package crawler implements the discovery role: it polls the front page,
// spots new story threads, and enqueues archive work for the downloader.
package crawler

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ligain/ycrawler/internal/archive"
	"github.com/ligain/ycrawler/internal/metrics"
)

// Config controls the polling loop.
type Config struct {
	// BaseURL is the front page origin, also used to resolve relative
	// hrefs.
	BaseURL string
	// Interval is the pause between polling cycles.
	Interval time.Duration
}

// Crawler discovers new stories and produces work items. It is the sole
// producer for the work queue.
type Crawler struct {
	cfg     Config
	fetcher archive.Fetcher
	queue   archive.Queue
	store   archive.Store
	clock   archive.Clock
	ids     archive.IDGenerator
	logger  *zap.Logger

	// seen holds every front-page href already dispatched in this process
	// lifetime. It is mutated only by Run's own loop, before any discovery
	// goroutine starts, so it needs no lock. Membership is never rolled
	// back: a story whose discovery failed stays skipped.
	seen map[string]struct{}
}

// New constructs a Crawler.
func New(
	cfg Config,
	fetcher archive.Fetcher,
	queue archive.Queue,
	store archive.Store,
	clock archive.Clock,
	ids archive.IDGenerator,
	logger *zap.Logger,
) *Crawler {
	return &Crawler{
		cfg:     cfg,
		fetcher: fetcher,
		queue:   queue,
		store:   store,
		clock:   clock,
		ids:     ids,
		logger:  logger,
		seen:    make(map[string]struct{}),
	}
}

// Run polls the front page until the context ends. No error terminates the
// loop: a failed cycle logs and sleeps like any other.
func (c *Crawler) Run(ctx context.Context) {
	c.logger.Info("crawler started", zap.String("base_url", c.cfg.BaseURL))
	for {
		c.runCycle(ctx)
		if err := archive.Sleep(ctx, c.cfg.Interval); err != nil {
			c.logger.Info("crawler stopped", zap.Error(err))
			return
		}
	}
}

// runCycle performs one polling pass: fetch the front page, dispatch a
// discovery goroutine per unseen story, and join them all before returning
// so in-flight work stays bounded to one cycle's worth.
func (c *Crawler) runCycle(ctx context.Context) {
	log := c.logger.With(zap.String("cycle_id", c.newCycleID()))
	start := c.clock.Now()
	log.Info("cycle started", zap.String("url", c.cfg.BaseURL))
	metrics.CyclesTotal.Inc()

	newStories := 0
	front := c.fetcher.Fetch(ctx, c.cfg.BaseURL)
	if front.Empty() {
		log.Error("can not fetch main page", zap.String("url", c.cfg.BaseURL))
	} else {
		var g errgroup.Group
		for _, story := range front.StoryLinks() {
			if _, ok := c.seen[story.Href]; ok {
				continue
			}
			// Recorded synchronously, before the goroutine starts, so a
			// duplicate href later in this cycle cannot race a second
			// dispatch.
			c.seen[story.Href] = struct{}{}
			newStories++
			metrics.StoriesDiscovered.Inc()
			g.Go(func() error {
				c.discoverStory(ctx, log, story)
				return nil
			})
		}
		_ = g.Wait()
	}

	log.Info("cycle finished",
		zap.Duration("duration", c.clock.Now().Sub(start)),
		zap.Int("new_stories", newStories))
}

// discoverStory archives one story thread: it fetches the discussion page,
// derives the folder name from the title link, and enqueues the article
// page, the discussion page, and every outbound comment link. All failures
// abandon only this story.
func (c *Crawler) discoverStory(ctx context.Context, log *zap.Logger, story archive.Link) {
	discussionURL := absoluteURL(c.cfg.BaseURL, story.Href)
	log.Info("parsing comments page", zap.String("url", discussionURL))

	page := c.fetcher.Fetch(ctx, discussionURL)
	if page.Empty() {
		log.Error("empty content of comments page", zap.String("url", discussionURL))
		return
	}

	title, ok := page.TitleLink()
	if !ok {
		log.Error("comments page has no title link", zap.String("url", discussionURL))
		return
	}
	folder, err := archive.Slug(title, archive.SlugFromText)
	if err != nil {
		log.Error("derive folder name", zap.String("url", discussionURL), zap.Error(err))
		return
	}

	created, err := c.store.EnsureFolder(folder)
	if err != nil {
		log.Error("create archive folder", zap.String("folder", folder), zap.Error(err))
		return
	}
	if !created {
		metrics.StoriesSkipped.Inc()
		return
	}

	items := []archive.WorkItem{
		{Filename: archive.ArticleFilename, Dir: folder, URL: absoluteURL(c.cfg.BaseURL, title.Href)},
		{Filename: archive.CommentsFilename, Dir: folder, URL: discussionURL},
	}
	for _, link := range page.CommentLinks() {
		name, err := archive.Slug(link, archive.SlugFromHref)
		if err != nil {
			log.Error("derive comment link name", zap.String("href", link.Href), zap.Error(err))
			continue
		}
		items = append(items, archive.WorkItem{Filename: name, Dir: folder, URL: link.Href})
	}

	for _, item := range items {
		if err := c.queue.Enqueue(ctx, item); err != nil {
			log.Error("enqueue work item", zap.String("url", item.URL), zap.Error(err))
			return
		}
		log.Info("put url to download queue",
			zap.String("url", item.URL),
			zap.String("file", path.Join(item.Dir, item.Filename)))
	}
}

func (c *Crawler) newCycleID() string {
	id, err := c.ids.NewID()
	if err != nil {
		return "unknown"
	}
	return id
}
