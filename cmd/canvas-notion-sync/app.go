package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"canvas-notion-sync/internal/config"
	"canvas-notion-sync/internal/digest"
	"canvas-notion-sync/internal/httpx"
	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/metrics"
	"canvas-notion-sync/internal/providers/canvas"
	"canvas-notion-sync/internal/providers/notion"
	"canvas-notion-sync/internal/ratelimit"
	"canvas-notion-sync/internal/runlock"
	"canvas-notion-sync/internal/sync"
)

const redisPingTimeout = 5 * time.Second

// app is the wired component graph shared by run and serve.
type app struct {
	syncer  *sync.Syncer
	metrics *metrics.Metrics
	close   func() error
}

func newCanvasClient(cfg config.Config) *canvas.Client {
	c := canvas.New(cfg.CanvasBaseURL, cfg.CanvasToken)
	if cfg.CanvasMaxAttempts > 1 {
		retry := httpx.DefaultRetryConfig()
		retry.MaxAttempts = cfg.CanvasMaxAttempts
		c.Retry = retry
	}
	c.PerPage = cfg.CanvasPerPage
	return c
}

func newApp(ctx context.Context, cfg config.Config, log logger.Logger) (*app, error) {
	src := newCanvasClient(cfg)
	dst := notion.New(cfg.NotionToken, cfg.NotionDatabaseID, notion.Options{
		Version:    cfg.NotionVersion,
		MaxRetries: cfg.NotionMaxRetries,
	})
	pacer := ratelimit.New(ratelimit.Policy{
		WriteInterval:   cfg.WriteInterval,
		CourseInterval:  cfg.CourseInterval,
		FailureCooldown: cfg.FailureCooldown,
	})
	m := metrics.New()

	lock := runlock.Chain{&runlock.Local{}}
	closeFn := func() error { return nil }
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		lock = append(lock, runlock.NewRedis(rdb, runlock.DefaultKey, cfg.RunLockTTL))
		closeFn = rdb.Close
		log.Info("Using Redis run lock", logger.String("addr", cfg.RedisAddr))
	}

	syncer := &sync.Syncer{
		Source: src,
		Upserter: &sync.Upserter{
			Dest:   dst,
			Fields: cfg.Fields,
			Pacer:  pacer,
			Log:    log.With(logger.String("component", "upsert")),
		},
		Digest: &digest.Builder{
			Source:        src,
			Dest:          dst,
			Fields:        cfg.Fields,
			CanvasBaseURL: cfg.CanvasBaseURL,
			PageID:        cfg.SyllabiPageID,
			MasterTitle:   cfg.MasterTitle,
			Pacer:         pacer,
			Log:           log.With(logger.String("component", "digest")),
		},
		Pacer:     pacer,
		Lock:      lock,
		Metrics:   m,
		Log:       log,
		OnlyDated: cfg.OnlyDated,
	}

	return &app{syncer: syncer, metrics: m, close: closeFn}, nil
}
