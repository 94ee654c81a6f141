package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/server"
	"canvas-notion-sync/internal/sync"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP trigger, optionally running on a cron schedule",
		Long: `Serve GET / , GET /health, GET|POST /sync?key=SYNC_SECRET_KEY and
GET /metrics. When SYNC_SCHEDULE holds a five-field cron spec, runs are also
started on that schedule; scheduled and triggered runs never overlap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), root)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	cfg, log := opts.cfg, opts.log

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.SecretKey == "" {
		log.Warn("SYNC_SECRET_KEY is empty; every /sync request will be rejected")
	}

	if cfg.SyncSchedule != "" {
		c, err := newScheduler(ctx, cfg.SyncSchedule, a.syncer, cfg.SyncTimeout, log)
		if err != nil {
			return err
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		log.Info("Scheduled sync enabled", logger.String("schedule", cfg.SyncSchedule))
	}

	srv := server.New(server.Config{
		Addr:        cfg.HTTPAddr,
		Secret:      cfg.SecretKey,
		SyncTimeout: cfg.SyncTimeout,
		Debug:       cfg.Debug,
		Metrics:     a.metrics.Handler(),
	}, a.syncer, log)
	return srv.Run(ctx)
}

// newScheduler registers one cron entry that runs a sync pass. A tick that
// lands while a run is active is skipped.
func newScheduler(ctx context.Context, spec string, runner server.Runner, timeout time.Duration, log logger.Logger) (*cron.Cron, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	_, err := c.AddFunc(spec, func() {
		runCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		_, err := runner.RunOnce(runCtx)
		switch {
		case errors.Is(err, sync.ErrRunInProgress):
			log.Info("Scheduled sync skipped, run already in progress")
		case err != nil:
			log.Error("Scheduled sync failed", logger.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_SCHEDULE %q: %w", spec, err)
	}
	return c, nil
}
