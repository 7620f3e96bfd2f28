package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"docugen-workers/internal/common/config"
	"docugen-workers/internal/common/database"
	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/common/observability"
	"docugen-workers/internal/docugen/audit"
	"docugen-workers/internal/docugen/cache"
	"docugen-workers/internal/docugen/catalog"
	"docugen-workers/internal/docugen/legal"
	"docugen-workers/internal/docugen/notify"
	"docugen-workers/internal/docugen/pipeline"
	generatedocument "docugen-workers/internal/workers/docugen/generate-document"
	"docugen-workers/pkg/registry"
)

// auditGuardTTL bounds how long the Redis marker short-circuits repeated
// audit writes for the same document hash.
const auditGuardTTL = 30 * 24 * time.Hour

type dependencies struct {
	generate generatedocument.Dependencies
}

// buildDependencies connects the stores enabled in cfg and assembles the
// pipeline. The returned cleanup closes every opened connection.
func buildDependencies(ctx context.Context, cfg *config.Config, obs *observability.Observability, zapLog *zap.Logger, log logger.Logger) (*dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*dependencies, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	opts := []pipeline.Option{pipeline.WithTracer(obs.Tracer())}

	// --- Redis: audit guard and document cache ---
	var rdb *database.RedisClient
	if cfg.DocuGen.AuditEnabled || cfg.DocuGen.CacheEnabled {
		err := retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { rdb.Close() })
		zapLog.Info("Redis connected successfully")
	}

	// --- PostgreSQL: audit trail ---
	if cfg.DocuGen.AuditEnabled {
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { pg.Close() })

		store := audit.NewPostgresStore(pg.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			return fail(fmt.Errorf("audit schema: %w", err))
		}
		opts = append(opts, pipeline.WithAuditStore(audit.NewRedisGuard(rdb.Client, store, auditGuardTTL, log)))
		zapLog.Info("PostgreSQL audit store ready")
	}

	// --- Elasticsearch: legal articles ---
	if cfg.DocuGen.ArticleSource == "elasticsearch" {
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return fail(err)
		}
		opts = append(opts, pipeline.WithArticleSource(
			legal.NewElasticsearchSource(es.Client, cfg.DocuGen.ArticleIndex, cfg.DocuGen.Breaker, log)))
		zapLog.Info("Elasticsearch article source ready", zap.String("index", cfg.DocuGen.ArticleIndex))
	}

	// --- Catalog and pipeline ---
	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.DocuGen.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.DocuGen.CatalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return fail(err)
	}
	zapLog.Info("Template catalog loaded",
		zap.String("version", cat.Version()),
		zap.Int("templates", len(cat.List())),
	)

	deps := &dependencies{}
	deps.generate.Pipeline = pipeline.New(cat, log, opts...)
	deps.generate.Telemetry = obs

	// --- Activity registry: input schema ---
	reg, err := registry.LoadRegistry(cfg.DocuGen.RegistryPath)
	if err != nil {
		zapLog.Warn("Activity registry unavailable, input schema validation disabled", zap.Error(err))
	} else if activity, ok := reg.ByTaskType(generatedocument.TaskType); ok {
		deps.generate.InputSchema = activity.InputSchema
	}

	if cfg.DocuGen.CacheEnabled {
		deps.generate.Cache = cache.New(rdb.Client, cfg.DocuGen.CacheDuration(), log)
	}

	// --- Notifications ---
	pub, err := notify.NewPublisher(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() { pub.Close() })
	deps.generate.Publisher = pub

	alerter, err := notify.NewReviewAlerterFromConfig(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	deps.generate.Alerter = alerter
	zapLog.Info("Notifications configured",
		zap.String("notifier", cfg.DocuGen.Notifier),
		zap.Bool("reviewAlerts", alerter != nil),
	)

	return deps, cleanup, nil
}
