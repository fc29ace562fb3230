// Package report builds the language/URL audit plus the dedup stats and
// vector-store counts consumed by the `report` CLI verb - a feature present in
// app/relatorios/relatorio_idiomas.py and relatorio_urls.py that the
// distilled spec dropped but is worth carrying forward as an
// operator-facing diagnostic, not an HTTP endpoint.
package report

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tesseract-hub/research-orchestrator/internal/dedup"
	"github.com/tesseract-hub/research-orchestrator/internal/models"
	"github.com/tesseract-hub/research-orchestrator/internal/scorer"
	"github.com/tesseract-hub/research-orchestrator/internal/vectorstore"
)

// LanguageBreakdown is the per-language result count and mean
// confidence score.
type LanguageBreakdown struct {
	Language   string
	Count      int64
	MeanScore  float64
}

// URLAudit summarizes how many persisted results carry a valid vs.
// invalid URL, the quality signal relatorio_urls.py reports on.
type URLAudit struct {
	TotalResults int64
	ValidURLs    int64
	InvalidURLs  int64
}

// Snapshot is the full report payload.
type Snapshot struct {
	Languages    []LanguageBreakdown
	URLs         URLAudit
	DedupStats   dedup.Stats
	VectorCounts map[vectorstore.CollectionName]int
}

func Build(ctx context.Context, db *gorm.DB, deduper *dedup.Deduplicator, store *vectorstore.Store) (Snapshot, error) {
	var rows []struct {
		Language string
		Count    int64
		Mean     float64
	}
	if err := db.WithContext(ctx).Model(&models.Result{}).
		Select("language, count(*) as count, avg(confidence_score) as mean").
		Group("language").
		Scan(&rows).Error; err != nil {
		return Snapshot{}, fmt.Errorf("report: language breakdown: %w", err)
	}

	languages := make([]LanguageBreakdown, 0, len(rows))
	for _, r := range rows {
		languages = append(languages, LanguageBreakdown{Language: r.Language, Count: r.Count, MeanScore: r.Mean})
	}

	var total, valid int64
	if err := db.WithContext(ctx).Model(&models.Result{}).Count(&total).Error; err != nil {
		return Snapshot{}, fmt.Errorf("report: total count: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Result{}).Where("url_valid = ?", true).Count(&valid).Error; err != nil {
		return Snapshot{}, fmt.Errorf("report: valid count: %w", err)
	}

	snapshot := Snapshot{
		Languages: languages,
		URLs:      URLAudit{TotalResults: total, ValidURLs: valid, InvalidURLs: total - valid},
	}
	if deduper != nil {
		snapshot.DedupStats = deduper.Stats()
	}
	if store != nil {
		snapshot.VectorCounts = store.Stats()
	}
	return snapshot, nil
}

// QualitySnapshot wraps AppraiseQuality for a caller that already has a
// batch of recent scores/providers on hand. Build and the report CLI
// verb do not call it.
func QualitySnapshot(scores []float64, providers []string, minQuality float64) scorer.QualityAppraisal {
	return scorer.AppraiseQuality(scores, providers, minQuality)
}
