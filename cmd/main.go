package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/user/swordfinder/internal/adapters/http/api"
	"github.com/user/swordfinder/internal/adapters/repository"
	"github.com/user/swordfinder/internal/app"
	"github.com/user/swordfinder/internal/config"
	"github.com/user/swordfinder/internal/jobs"
	"github.com/user/swordfinder/internal/playbyplay"
	"github.com/user/swordfinder/internal/scheduler"
	"github.com/user/swordfinder/internal/domain/scoring"
	"github.com/user/swordfinder/internal/video"
	"github.com/user/swordfinder/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 5 * time.Minute // video processing is synchronous
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "failed to open store", logger.Error(err))
		return
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	policy := video.NewPolicy(cfg.DownloadAttempts, cfg.DownloadBackoff)

	manager := jobs.NewManager([]jobs.Runner{
		jobs.NewIngestJob(store, jobs.NewCSVEventSource(cfg.BulkSourcePath),
			jobs.WithIngestBatchSize(cfg.JobBatchSize)),
		jobs.NewPatchJob(store, jobs.NewCSVSource(cfg.BulkSourcePath),
			jobs.WithBatchSize(cfg.JobBatchSize)),
	})

	svc := app.NewService(store,
		app.WithLogger(log),
		app.WithEngine(scoring.NewEngine(scoring.WithTopN(cfg.TopN))),
		app.WithResolver(video.NewResolver(cfg.VideoPageBase,
			video.WithResolverHTTPClient(httpClient),
			video.WithResolverPolicy(policy),
		)),
		app.WithDownloader(video.NewDownloader(cfg.MediaDir,
			video.WithDownloaderPolicy(policy),
		)),
		app.WithPlayByPlay(playbyplay.NewClient(cfg.StatsAPIBase,
			playbyplay.WithHTTPClient(httpClient),
		)),
		app.WithJobManager(manager),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop(context.Background()) //nolint:errcheck // best effort on exit

	// Daily cache pre-warm.
	sched := scheduler.New(func(ctx context.Context, date string) error {
		_, err := svc.SwordsForDate(ctx, date)
		return err
	})
	if err := sched.Start(ctx, cfg.PrewarmSchedule); err != nil {
		log.Error(ctx, "failed to start scheduler", logger.Error(err))
		return
	}
	defer sched.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
