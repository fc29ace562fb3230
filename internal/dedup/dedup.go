// Package dedup implements the Deduplicator (C6): canonical hash,
// Jaccard-over-token-sets, and optional semantic dedup via the vector
// store. Process runs the hash check, then Jaccard; the semantic lookup
// (FindSemanticDuplicate) is a separate call the caller makes once both
// cheaper checks miss. Grounded on app/agente/deduplicador.py.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"

	"github.com/tesseract-hub/research-orchestrator/internal/vectorstore"
)

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
var spaceRe = regexp.MustCompile(`\s+`)

// Normalize lowercases, strips punctuation and collapses whitespace -
// the canonicalization both the hash and the Jaccard set use.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	stripped := nonWordRe.ReplaceAllString(lower, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(stripped, " "))
}

// ContentHash is the SHA-256 of normalized "title description", the
// uniqueness key for the Results table.
func ContentHash(title, description string) string {
	normalized := Normalize(title + " " + description)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Jaccard computes token-set similarity between two texts: |A∩B|/|A∪B|.
// J(a,a)=1 and J(a,b)=J(b,a) by construction.
func Jaccard(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]bool {
	tokens := strings.Fields(Normalize(text))
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

const (
	occurrenceBoostStep = 0.05
	occurrenceBoostCap  = 0.30
)

// Seen is the record kept for a content fingerprint already accepted.
type Seen struct {
	Title       string
	Description string
	URL         string
	Score       float64
}

// Deduplicator tracks hashes seen this run and exposes IsNew/Process,
// mirroring Deduplicador's hashes_vistos/contador_hashes bookkeeping.
type Deduplicator struct {
	threshold        float64
	semanticThreshold float64
	vectorStore      *vectorstore.Store

	mu        sync.Mutex
	seen      map[string]Seen
	occurrences map[string]int
}

func NewDeduplicator(jaccardThreshold, semanticThreshold float64, vectorStore *vectorstore.Store) *Deduplicator {
	return &Deduplicator{
		threshold:         jaccardThreshold,
		semanticThreshold: semanticThreshold,
		vectorStore:       vectorStore,
		seen:              make(map[string]Seen),
		occurrences:       make(map[string]int),
	}
}

func content(title, description string) string {
	return title + " " + description
}

// IsNew reports whether a candidate is not a duplicate of anything seen
// so far, without mutating state.
func (d *Deduplicator) IsNew(title, description string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	hash := ContentHash(title, description)
	if _, ok := d.seen[hash]; ok {
		return false
	}

	candidate := content(title, description)
	for _, s := range d.seen {
		if Jaccard(candidate, content(s.Title, s.Description)) >= d.threshold {
			return false
		}
	}
	return true
}

// Outcome is the result of Process: whether the candidate was a
// duplicate, its matched hash, and the score boost to apply.
type Outcome struct {
	IsDuplicate bool
	MatchedHash string
	ScoreBoost  float64
}

// Process records a candidate, boosting the surviving entry's
// occurrence count and returning the additive score boost to apply
// (+0.05 per extra occurrence, capped at +0.30).
func (d *Deduplicator) Process(title, description, url string, score float64) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	hash := ContentHash(title, description)
	candidate := content(title, description)

	if _, ok := d.seen[hash]; ok {
		d.occurrences[hash]++
		return Outcome{IsDuplicate: true, MatchedHash: hash, ScoreBoost: boost(d.occurrences[hash])}
	}

	for existingHash, s := range d.seen {
		if Jaccard(candidate, content(s.Title, s.Description)) >= d.threshold {
			d.occurrences[existingHash]++
			return Outcome{IsDuplicate: true, MatchedHash: existingHash, ScoreBoost: boost(d.occurrences[existingHash])}
		}
	}

	d.seen[hash] = Seen{Title: title, Description: description, URL: url, Score: score}
	d.occurrences[hash] = 1
	return Outcome{IsDuplicate: false, MatchedHash: hash}
}

// FindSemanticDuplicate queries the vector store for an existing result
// similar enough to count as a semantic duplicate (used when the
// cheaper hash/Jaccard checks miss but the vector store is enabled).
// The returned id is the matched vector-store entry's ID, not a
// content hash.
func (d *Deduplicator) FindSemanticDuplicate(embedding []float64) (hash string, similarity float64, found bool) {
	if d.vectorStore == nil || embedding == nil {
		return "", 0, false
	}
	matches := d.vectorStore.Query(vectorstore.CollectionResults, embedding, 3, nil)
	for _, m := range matches {
		if m.Similarity >= d.semanticThreshold {
			return m.Entry.ID, m.Similarity, true
		}
	}
	return "", 0, false
}

func boost(occurrences int) float64 {
	b := occurrenceBoostStep * float64(occurrences-1)
	if b > occurrenceBoostCap {
		return occurrenceBoostCap
	}
	if b < 0 {
		return 0
	}
	return b
}

// Stats mirrors get_estatisticas: distinct hashes, total occurrences,
// how many are actual duplicates, and the active threshold.
type Stats struct {
	DistinctHashes      int
	TotalOccurrences    int
	DuplicatesDetected  int
	Threshold           float64
}

func (d *Deduplicator) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := Stats{DistinctHashes: len(d.seen), Threshold: d.threshold}
	for _, count := range d.occurrences {
		stats.TotalOccurrences += count
		if count > 1 {
			stats.DuplicatesDetected++
		}
	}
	return stats
}

func (d *Deduplicator) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[string]Seen)
	d.occurrences = make(map[string]int)
}
