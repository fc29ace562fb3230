// Package worker implements the Worker (C10): claims queue items,
// drives the Adaptive Search Executor, and runs each hit through the
// contamination guard, scorer, deduplicator, persistence and indexing
// pipeline. Grounded on search-service/internal/services/sync_service.go's
// worker-pool and per-item pipeline shape, adapted from sync jobs to
// queue items.
package worker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tesseract-hub/research-orchestrator/internal/dedup"
	"github.com/tesseract-hub/research-orchestrator/internal/embeddings"
	"github.com/tesseract-hub/research-orchestrator/internal/langdetect"
	"github.com/tesseract-hub/research-orchestrator/internal/metrics"
	"github.com/tesseract-hub/research-orchestrator/internal/models"
	"github.com/tesseract-hub/research-orchestrator/internal/providers"
	"github.com/tesseract-hub/research-orchestrator/internal/queue"
	"github.com/tesseract-hub/research-orchestrator/internal/scorer"
	"github.com/tesseract-hub/research-orchestrator/internal/search"
	"github.com/tesseract-hub/research-orchestrator/internal/tracing"
	"github.com/tesseract-hub/research-orchestrator/internal/translate"
	"github.com/tesseract-hub/research-orchestrator/internal/urlfilter"
	"github.com/tesseract-hub/research-orchestrator/internal/vectorstore"
)

// contaminationFloor is the minimum detector confidence below which the
// contamination guard does not reject a hit - the keyword detector is
// too weak below this to trust a rejection (mirrors langdetect's own
// ValidationThreshold rather than inventing a second constant).
const contaminationFloor = langdetect.ValidationThreshold

// Pool drives a bounded set of concurrent workers over the queue,
// mirroring sync_service.go's errgroup-based fan-out.
type Pool struct {
	db          *gorm.DB
	queue       *queue.Queue
	executor    *search.Executor
	scorer      *scorer.Scorer
	dedup       *dedup.Deduplicator
	translator  *translate.Service
	embedder    *embeddings.Service
	vectorStore *vectorstore.Store
	searchOpts  search.Options
	useRAG      bool
	maxWorkers  int
	log         *logrus.Entry
}

type Config struct {
	DB          *gorm.DB
	Queue       *queue.Queue
	Executor    *search.Executor
	Scorer      *scorer.Scorer
	Dedup       *dedup.Deduplicator
	Translator  *translate.Service
	Embedder    *embeddings.Service
	VectorStore *vectorstore.Store
	SearchOpts  search.Options
	UseRAG      bool
	MaxWorkers  int
	Log         *logrus.Entry
}

func NewPool(cfg Config) *Pool {
	return &Pool{
		db:          cfg.DB,
		queue:       cfg.Queue,
		executor:    cfg.Executor,
		scorer:      cfg.Scorer,
		dedup:       cfg.Dedup,
		translator:  cfg.Translator,
		embedder:    cfg.Embedder,
		vectorStore: cfg.VectorStore,
		searchOpts:  cfg.SearchOpts,
		useRAG:      cfg.UseRAG,
		maxWorkers:  cfg.MaxWorkers,
		log:         cfg.Log.WithField("component", "worker_pool"),
	}
}

// ProcessBatch claims and processes up to n queue items concurrently
// (bounded by maxWorkers), returning once every claimed item has
// reached a terminal status.
func (p *Pool) ProcessBatch(ctx context.Context, n int) (processed int, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxWorkers)

	var claimed int
	for claimed < n {
		item, claimErr := p.queue.Claim(gctx)
		if claimErr != nil {
			return processed, claimErr
		}
		if item == nil {
			break
		}
		claimed++

		item := item
		g.Go(func() error {
			p.processItem(gctx, *item)
			return nil
		})
	}

	if waitErr := g.Wait(); waitErr != nil {
		return processed, waitErr
	}
	return claimed, nil
}

// ProcessUntilEmpty repeatedly claims and processes items until the
// queue has no pending work left, honoring ctx cancellation for clean
// shutdown (the `process-until-empty` CLI verb's building block).
func (p *Pool) ProcessUntilEmpty(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := p.ProcessBatch(ctx, p.maxWorkers)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (p *Pool) processItem(ctx context.Context, item models.QueueItem) {
	ctx, span := tracing.StartSpan(ctx, "worker.process_item",
		attribute.Int("failure_id", item.FailureID),
		attribute.String("queue_item_id", item.ID.String()),
		attribute.String("language", item.Language),
		attribute.String("provider", item.Provider),
	)
	defer span.End()

	if err := validateQueueItem(item); err != nil {
		p.fail(ctx, item, err)
		return
	}

	queryText := item.QueryText
	if item.Language != "pt" {
		if detected, confidence := langdetect.Detect(queryText); detected == "pt" && confidence >= contaminationFloor {
			if translated, _ := p.translator.DetectAndTranslate(ctx, queryText, "pt", item.Language); translated != "" {
				queryText = translated
			}
		}
	}

	outcome := p.executor.Run(ctx, queryText, item.Language, p.searchOpts)

	inserted := 0
	for _, hit := range outcome.Hits {
		if err := p.ingestHit(ctx, item, hit); err != nil {
			p.log.WithError(err).WithField("url", hit.URL).Warn("failed to ingest hit")
			continue
		}
		inserted++
	}

	p.recordHistory(ctx, item, outcome, inserted)

	if err := p.queue.MarkDone(ctx, item.ID); err != nil {
		p.log.WithError(err).Error("failed to mark queue item done")
		return
	}
	metrics.ItemsProcessed.WithLabelValues(string(models.StatusDone)).Inc()
}

// validateQueueItem checks the required fields a queue item must carry
// before the executor is allowed to spend a provider call on it.
func validateQueueItem(item models.QueueItem) error {
	if item.QueryText == "" {
		return fmt.Errorf("invalid queue item: empty query text")
	}
	if item.Language == "" {
		return fmt.Errorf("invalid queue item: empty language")
	}
	if item.Provider == "" {
		return fmt.Errorf("invalid queue item: empty provider")
	}
	return nil
}

func (p *Pool) fail(ctx context.Context, item models.QueueItem, err error) {
	if markErr := p.queue.MarkError(ctx, item.ID, err.Error()); markErr != nil {
		p.log.WithError(markErr).Error("failed to mark queue item error")
	}
	metrics.ItemsProcessed.WithLabelValues(string(models.StatusError)).Inc()
}

// ingestHit runs one search hit through the full per-hit pipeline named
// in spec §4.10: URL/placeholder filtering, the contamination guard,
// scoring (RAG-aware when embeddings are available and enabled), dedup,
// idempotent persistence keyed by content hash, PT translation and
// vector-store indexing. The PT translation of title and description
// runs synchronously, before scoring, not in the background.
func (p *Pool) ingestHit(ctx context.Context, item models.QueueItem, hit providers.Hit) error {
	if !urlfilter.IsValid(hit.URL) {
		return fmt.Errorf("hit rejected: invalid or search-engine url %q", hit.URL)
	}

	if item.Language != "pt" && item.Language != langdetect.Unknown {
		if detected, confidence := langdetect.Detect(hit.Title + " " + hit.Description); detected != langdetect.Unknown {
			if confidence >= contaminationFloor && detected != item.Language {
				return fmt.Errorf("hit rejected: contamination guard, expected %s got %s", item.Language, detected)
			}
		}
	}

	// titlePT/descriptionPT hold only a validated translation, empty when
	// Translate couldn't produce or validate one - they are what gets
	// persisted. effectiveTitle/effectiveDescription fall back to the
	// original text and exist purely to give scoring, dedup and the
	// embedding a non-empty string to work with.
	var titlePT, descriptionPT string
	effectiveTitle, effectiveDescription := hit.Title, hit.Description
	if item.Language != "pt" {
		titlePT = p.translator.Translate(ctx, hit.Title, item.Language, "pt")
		descriptionPT = p.translator.Translate(ctx, hit.Description, item.Language, "pt")
		if titlePT != "" {
			effectiveTitle = titlePT
		}
		if descriptionPT != "" {
			effectiveDescription = descriptionPT
		}
	}

	candidate := scorer.Candidate{
		Title: hit.Title, Description: hit.Description,
		TitlePT: titlePT, DescriptionPT: descriptionPT,
		URL: hit.URL, Language: item.Language, Provider: item.Provider,
		Query: item.QueryText, Occurrences: 1, UseRAG: p.useRAG,
	}

	content := effectiveTitle + " " + effectiveDescription
	var embedding []float64
	if p.useRAG && p.embedder != nil {
		embedding = p.embedder.Embed(ctx, content)
	}

	var score float64
	if p.useRAG && embedding != nil {
		score = p.scorer.ScoreWithEmbedding(ctx, candidate, embedding)
	} else {
		score = p.scorer.Score(ctx, candidate)
	}

	if p.vectorStore != nil && embedding != nil && p.dedup.IsNew(effectiveTitle, effectiveDescription) {
		if matchedID, similarity, found := p.dedup.FindSemanticDuplicate(embedding); found {
			if err := p.bumpExistingResult(ctx, matchedID, score); err != nil {
				return fmt.Errorf("bump semantic duplicate %s (similarity %.2f): %w", matchedID, similarity, err)
			}
			return nil
		}
	}

	outcome := p.dedup.Process(effectiveTitle, effectiveDescription, hit.URL, score)
	finalScore := score + outcome.ScoreBoost
	if finalScore > 1 {
		finalScore = 1
	}

	result := models.Result{
		FailureID:       item.FailureID,
		Title:           hit.Title,
		Description:     hit.Description,
		URL:             hit.URL,
		ProviderType:    item.Provider,
		Language:        item.Language,
		Query:           item.QueryText,
		ConfidenceScore: finalScore,
		Occurrences:     1,
		OriginProvider:  item.Provider,
		ContentHash:     outcome.MatchedHash,
		URLValid:        true,
		TitlePT:         titlePT,
		DescriptionPT:   descriptionPT,
	}

	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_hash"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"occurrences":      gorm.Expr("results.occurrences + 1"),
			"confidence_score": finalScore,
			"updated_at":       gorm.Expr("now()"),
		}),
	}).Create(&result).Error
	if err != nil {
		return fmt.Errorf("persist result: %w", err)
	}

	if p.vectorStore != nil && embedding != nil {
		p.vectorStore.AddOne(vectorstore.CollectionResults, result.ID.String(), embedding, map[string]string{
			"failure_id":       strconv.Itoa(item.FailureID),
			"confidence_score": strconv.FormatFloat(finalScore, 'f', 4, 64),
		}, content)
	}

	return nil
}

// bumpExistingResult folds a semantically duplicate hit into the
// result FindSemanticDuplicate matched, rather than inserting a second
// row or a second vector-store entry for the same content.
func (p *Pool) bumpExistingResult(ctx context.Context, resultID string, score float64) error {
	return p.db.WithContext(ctx).Model(&models.Result{}).Where("id = ?", resultID).
		Updates(map[string]interface{}{
			"occurrences":      gorm.Expr("occurrences + 1"),
			"confidence_score": gorm.Expr("GREATEST(confidence_score, ?)", score),
			"updated_at":       gorm.Expr("now()"),
		}).Error
}

func (p *Pool) recordHistory(ctx context.Context, item models.QueueItem, outcome search.Outcome, found int) {
	entry := models.HistoryEntry{
		FailureID:    item.FailureID,
		Query:        item.QueryText,
		Language:     item.Language,
		Provider:     item.Provider,
		Status:       "done",
		ResultsFound: found,
		StopReason:   string(outcome.StopReason),
	}
	if err := p.db.WithContext(ctx).Create(&entry).Error; err != nil {
		p.log.WithError(err).Warn("failed to record history entry")
	}
}
