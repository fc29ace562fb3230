// Command orchestrator is the CLI entrypoint for the research pipeline:
// populate-queue, clear-queue, process-batch, process-parallel,
// process-until-empty, loop, and report. Grounded on
// translation-service/cmd/main.go's bootstrap shape (load config, open
// db, migrate, wire services, run).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tesseract-hub/research-orchestrator/internal/config"
	"github.com/tesseract-hub/research-orchestrator/internal/db"
	"github.com/tesseract-hub/research-orchestrator/internal/dedup"
	"github.com/tesseract-hub/research-orchestrator/internal/embeddings"
	"github.com/tesseract-hub/research-orchestrator/internal/metrics"
	"github.com/tesseract-hub/research-orchestrator/internal/models"
	"github.com/tesseract-hub/research-orchestrator/internal/providers"
	"github.com/tesseract-hub/research-orchestrator/internal/querygen"
	"github.com/tesseract-hub/research-orchestrator/internal/queue"
	"github.com/tesseract-hub/research-orchestrator/internal/ratelimit"
	"github.com/tesseract-hub/research-orchestrator/internal/report"
	"github.com/tesseract-hub/research-orchestrator/internal/scorer"
	"github.com/tesseract-hub/research-orchestrator/internal/search"
	"github.com/tesseract-hub/research-orchestrator/internal/tracing"
	"github.com/tesseract-hub/research-orchestrator/internal/translate"
	"github.com/tesseract-hub/research-orchestrator/internal/vectorstore"
	"github.com/tesseract-hub/research-orchestrator/internal/worker"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("orchestrator exited with error")
		os.Exit(1)
	}
}

func run() error {
	verb := "loop"
	if len(os.Args) > 1 {
		verb = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg.App.LogLevel)

	shutdownTracing := tracing.Setup()
	defer shutdownTracing(context.Background())

	metrics.Register(prometheus.DefaultRegisterer)

	gormDB, err := db.Open(&cfg.Database, cfg.App.Environment)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	vectorStore := vectorstore.NewStore()
	q := queue.NewQueue(gormDB)

	registry := providers.NewRegistry(&cfg.Providers, cfg.Search.HTTPTimeout, cfg.Search.MaxRetries, log.WithField("component", "providers"))
	var toggles []models.ProviderToggle
	if err := gormDB.Find(&toggles).Error; err != nil {
		return fmt.Errorf("load provider toggles: %w", err)
	}
	for _, t := range toggles {
		registry.SetEnabled(t.Provider, t.Enabled)
	}
	sc := scorer.NewScorer(vectorStore, nil)
	limiter := ratelimit.NewLimiter(cfg.Search.MinInterCallDelay, cfg.Search.MaxRequestsPerMinute)
	executor := search.NewExecutor(registry, sc, limiter, log)

	translator := translate.NewService(
		cfg.Translate.GatewayURL, cfg.Translate.GatewayAPIKey,
		cfg.Translate.FreeModels, cfg.Translate.PremiumModels,
		cfg.Translate.ValidationMin, cfg.Search.HTTPTimeout, log,
	)

	embedder := embeddings.NewService(
		embeddings.NewHTTPCaller(cfg.Embedding.GatewayURL, cfg.Embedding.GatewayAPIKey, cfg.Search.HTTPTimeout),
		cfg.Embedding.Model, cfg.Embedding.Dimension, cfg.Embedding.TokenCap, cfg.Embedding.BatchSize,
	)

	deduper := dedup.NewDeduplicator(cfg.Dedup.JaccardThreshold, cfg.RAG.SimilarityThresholdDedup, vectorStore)

	pool := worker.NewPool(worker.Config{
		DB: gormDB, Queue: q, Executor: executor, Scorer: sc, Dedup: deduper,
		Translator: translator, Embedder: embedder, VectorStore: vectorStore,
		SearchOpts: search.Options{
			MinCalls: cfg.Search.MinCallsPerQuery, MaxCalls: cfg.Search.MaxCallsPerQuery,
			MinQuality: cfg.Search.MinQualityToStop, Adaptive: cfg.Search.AdaptiveEnabled,
			MaxResults: 10,
		},
		UseRAG: cfg.RAG.Enabled, MaxWorkers: cfg.Search.MaxWorkers, Log: log,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch verb {
	case "populate-queue":
		return populateQueue(ctx, gormDB, q, translator, cfg)
	case "clear-queue":
		n, err := q.Clear(ctx)
		if err != nil {
			return err
		}
		log.WithField("deleted", n).Info("queue cleared")
		return nil
	case "process-batch":
		n := cfg.Search.MaxWorkers
		if len(os.Args) > 2 {
			if parsed, err := strconv.Atoi(os.Args[2]); err == nil {
				n = parsed
			}
		}
		processed, err := pool.ProcessBatch(ctx, n)
		log.WithField("processed", processed).Info("batch complete")
		return err
	case "process-parallel":
		processed, err := pool.ProcessBatch(ctx, cfg.Search.MaxWorkers*4)
		log.WithField("processed", processed).Info("parallel batch complete")
		return err
	case "process-until-empty":
		return pool.ProcessUntilEmpty(ctx)
	case "report":
		snapshot, err := report.Build(ctx, gormDB, deduper, vectorStore)
		if err != nil {
			return err
		}
		printReport(log, snapshot)
		return nil
	case "loop":
		return loop(ctx, pool, q, cfg, log)
	default:
		return fmt.Errorf("unknown verb %q (want populate-queue|clear-queue|process-batch|process-parallel|process-until-empty|report|loop)", verb)
	}
}

func populateQueue(ctx context.Context, gormDB *gorm.DB, q *queue.Queue, translator *translate.Service, cfg *config.Config) error {
	var failures []models.Failure
	if err := gormDB.WithContext(ctx).Find(&failures).Error; err != nil {
		return fmt.Errorf("populate-queue: load failures: %w", err)
	}

	generator := querygen.NewGenerator(translator, "pt")

	total := 0
	for _, f := range failures {
		variants := generator.Generate(ctx, f, cfg.Search.Languages)
		n, err := q.Populate(ctx, f, variants, cfg.Providers.Order)
		if err != nil {
			return fmt.Errorf("populate-queue: failure %d: %w", f.ID, err)
		}
		total += n
	}
	logrus.WithField("queued", total).WithField("failures", len(failures)).Info("queue populated")
	return nil
}

func loop(ctx context.Context, pool *worker.Pool, q *queue.Queue, cfg *config.Config, log *logrus.Entry) error {
	ticker := time.NewTicker(cfg.Search.StuckRecoveryEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received, stopping loop")
			return nil
		case <-ticker.C:
			if n, err := q.RecoverStuck(ctx, cfg.Search.StuckRecoveryAfter); err != nil {
				log.WithError(err).Warn("stuck-item recovery failed")
			} else if n > 0 {
				log.WithField("recovered", n).Info("recovered stuck queue items")
			}
		default:
		}

		processed, err := pool.ProcessBatch(ctx, cfg.Search.MaxWorkers)
		if err != nil {
			return err
		}
		if processed == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
		}
	}
}

func printReport(log *logrus.Entry, snapshot report.Snapshot) {
	log.WithField("total_results", snapshot.URLs.TotalResults).
		WithField("valid_urls", snapshot.URLs.ValidURLs).
		WithField("invalid_urls", snapshot.URLs.InvalidURLs).
		Info("url audit")
	for _, lb := range snapshot.Languages {
		log.WithField("language", lb.Language).WithField("count", lb.Count).WithField("mean_score", lb.MeanScore).Info("language breakdown")
	}
	log.WithField("distinct_hashes", snapshot.DedupStats.DistinctHashes).
		WithField("duplicates_detected", snapshot.DedupStats.DuplicatesDetected).
		Info("dedup stats")
}

func newLogger(level string) *logrus.Entry {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if parsed, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(parsed)
	}
	return log.WithField("service", "research-orchestrator")
}
