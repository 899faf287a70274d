package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ligain/ycrawler/internal/clock/system"
	"github.com/ligain/ycrawler/internal/config"
	"github.com/ligain/ycrawler/internal/crawler"
	"github.com/ligain/ycrawler/internal/downloader"
	collyfetcher "github.com/ligain/ycrawler/internal/fetcher/colly"
	"github.com/ligain/ycrawler/internal/id/uuid"
	"github.com/ligain/ycrawler/internal/logging"
	"github.com/ligain/ycrawler/internal/metrics"
	"github.com/ligain/ycrawler/internal/queue/memory"
	"github.com/ligain/ycrawler/internal/storage/local"
)

// newCrawlCmd creates the 'crawl' subcommand, which runs the crawler and
// downloader roles until the process is interrupted.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Start the crawl and download loops",
		Long: `Starts the polling crawler and the queue-draining downloader and runs
both until interrupted. New stories found on the front page are archived
under the output directory, one folder per story.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := local.New(local.Config{BaseDir: cfg.Crawler.OutputDir}, logger)
	if err != nil {
		return fmt.Errorf("init archive store: %w", err)
	}

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Accept:    cfg.HTTP.Accept,
		Retry:     cfg.RetryPolicy(),
		Timeout:   cfg.FetchTimeout(),
	}, logger)

	queue := memory.NewQueue(cfg.Crawler.QueueCapacity)

	crawl := crawler.New(
		crawler.Config{
			BaseURL:  cfg.Crawler.BaseURL,
			Interval: cfg.Interval(),
		},
		fetcher, queue, store, system.New(), uuid.NewGenerator(), logger,
	)
	download := downloader.New(
		downloader.Config{
			EmptyQueueSleep: cfg.EmptyQueueSleep(),
			WriteWorkers:    cfg.Downloader.WriteWorkers,
		},
		fetcher, queue, store, logger,
	)

	if cfg.Metrics.Addr != "" {
		go func() {
			logger.Info("starting metrics server", zap.String("addr", cfg.Metrics.Addr))
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("starting ycrawler",
		zap.String("base_url", cfg.Crawler.BaseURL),
		zap.String("output_dir", cfg.Crawler.OutputDir),
		zap.Int("queue_capacity", cfg.Crawler.QueueCapacity))

	var g errgroup.Group
	g.Go(func() error {
		crawl.Run(ctx)
		return nil
	})
	g.Go(func() error {
		download.Run(ctx)
		return nil
	})
	_ = g.Wait()
	queue.Close()

	logger.Info("interrupted, shut down cleanly")
	return nil
}
