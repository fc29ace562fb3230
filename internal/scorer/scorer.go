// Package scorer implements the multi-factor confidence Scorer (C5).
// Structure and cache pattern are grounded on app/agente/avaliador.py;
// the weighted composition below follows spec.md's exact weights
// (relevance 55% / occurrences 15% / provider trust 20% / title-match
// 10%, plus the Brazil-domain multiplier and expansion curve) rather
// than avaliador.py's simpler 50/20/20/10 split - spec.md is the
// binding requirement, the Python file only grounds the shape.
package scorer

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/tesseract-hub/research-orchestrator/internal/vectorstore"
)

// Weighted composition constants (spec §4.5).
const (
	weightRelevance  = 0.55
	weightOccurrence = 0.15
	weightTrust      = 0.20
	weightTitle      = 0.10

	occurrenceCap = 10.0

	brazilDomainMultiplier = 1.20

	metaAnswerPenalty  = 0.30
	emptyResultPenalty = 0.20

	ragBoostCap = 0.20
	ragCutCap   = 0.30
)

// Expansion-curve breakpoints (§9 Open Question 2): tunable constants,
// not literals scattered through the curve logic.
const (
	expansionLowBreak  = 0.35
	expansionHighBreak = 0.75
	expansionLift      = 0.12
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true, "for": true, "to": true,
	"de": true, "da": true, "do": true, "com": true, "para": true, "uma": true, "um": true, "e": true,
	"and": true, "or": true, "is": true, "are": true, "que": true,
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

var metaAnswerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here\s+(are|is)\b`),
	regexp.MustCompile(`(?i)^voici\b`),
	regexp.MustCompile(`(?i)^aqu[ií]\s+tienes\b`),
	regexp.MustCompile(`(?i)^segue[m]?\s+abaixo\b`),
	regexp.MustCompile(`(?i)^aqui\s+est[aã]o\b`),
}

var emptyResultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)no\s+results?\s+found`),
	regexp.MustCompile(`(?i)nenhum\s+resultado`),
	regexp.MustCompile(`(?i)sem\s+resultados`),
	regexp.MustCompile(`(?i)page\s+not\s+found`),
	regexp.MustCompile(`(?i)404\s+not\s+found`),
}

var brazilMarkers = []string{".gov.br", ".org.br", ".com.br", "brasil", "brazil"}

var defaultTrustWeights = map[string]float64{
	"gov.br":     0.95,
	"serper":     0.80,
	"tavily":     0.78,
	"exa":        0.75,
	"jina":       0.75,
	"perplexity": 0.50,
	"unknown":    0.40,
}

// Candidate is the input the scorer consumes: a hit plus the
// originating query and any PT translations already computed.
type Candidate struct {
	Title           string
	Description     string
	TitlePT         string
	DescriptionPT   string
	URL             string
	Language        string
	Provider        string
	Query           string
	Occurrences     int
	UseRAG          bool
}

type cacheKey struct {
	url    string
	query  string
	useRAG bool
}

type Scorer struct {
	trustWeights map[string]float64
	vectorStore  *vectorstore.Store

	mu    sync.Mutex
	cache map[cacheKey]float64
}

func NewScorer(vectorStore *vectorstore.Store, trustWeights map[string]float64) *Scorer {
	weights := defaultTrustWeights
	if trustWeights != nil {
		weights = trustWeights
	}
	return &Scorer{
		trustWeights: weights,
		vectorStore:  vectorStore,
		cache:        make(map[cacheKey]float64),
	}
}

func extractKeywords(text string) []string {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 || stopWords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// relevance implements the design-level computation in spec §4.5:
// base from exact+partial keyword overlap, plus a phrase-presence
// bonus.
func relevance(query, content string) float64 {
	keywords := extractKeywords(query)
	if len(keywords) == 0 {
		return 0
	}

	contentLower := strings.ToLower(content)
	contentWords := make(map[string]bool)
	for _, w := range wordRe.FindAllString(contentLower, -1) {
		contentWords[w] = true
	}

	var exact, partial int
	for _, k := range keywords {
		if contentWords[k] {
			exact++
			continue
		}
		if strings.Contains(contentLower, k) {
			partial++
		}
	}

	base := 0.75 * float64(exact) / float64(len(keywords))
	partialBonus := 0.10 * float64(partial) / float64(len(keywords))

	var phraseBonus float64
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower != "" && strings.Contains(contentLower, queryLower) {
		phraseBonus = 0.25
	}

	score := base + partialBonus + phraseBonus
	if score > 1 {
		score = 1
	}
	return score
}

func titleMatch(query, title string) float64 {
	keywords := extractKeywords(query)
	if len(keywords) == 0 {
		return 0
	}
	titleLower := strings.ToLower(title)
	var hits int
	for _, k := range keywords {
		if strings.Contains(titleLower, k) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

func (s *Scorer) providerTrust(provider string) float64 {
	if w, ok := s.trustWeights[provider]; ok {
		return w
	}
	return s.trustWeights["unknown"]
}

func isMetaAnswer(title, description string) bool {
	for _, p := range metaAnswerPatterns {
		if p.MatchString(title) || p.MatchString(description) {
			return true
		}
	}
	return false
}

func isEmptyResult(title, description string) bool {
	for _, p := range emptyResultPatterns {
		if p.MatchString(title) || p.MatchString(description) {
			return true
		}
	}
	return false
}

func hasBrazilMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range brazilMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// expand applies a monotone curve that lifts the middle of the [0,1]
// range so mid-quality results are not all crushed into one narrow
// band (§9 Open Question 2).
func expand(score float64) float64 {
	if score <= expansionLowBreak || score >= expansionHighBreak {
		return score
	}
	mid := (expansionLowBreak + expansionHighBreak) / 2
	span := (expansionHighBreak - expansionLowBreak) / 2
	distanceFromMid := 1 - math.Abs(score-mid)/span
	return score + expansionLift*distanceFromMid
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Score computes the final confidence in [0,1] for one candidate.
func (s *Scorer) Score(ctx context.Context, c Candidate) float64 {
	key := cacheKey{url: c.URL, query: c.Query, useRAG: c.UseRAG}

	s.mu.Lock()
	if v, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return v
	}
	s.mu.Unlock()

	title, description := c.Title, c.Description
	if c.Language != "pt" {
		if c.TitlePT != "" {
			title = c.TitlePT
		}
		if c.DescriptionPT != "" {
			description = c.DescriptionPT
		}
	}
	content := title + " " + description

	rel := relevance(c.Query, content)
	occ := c.Occurrences
	if occ < 1 {
		occ = 1
	}
	occFactor := math.Sqrt(float64(occ)) / math.Sqrt(occurrenceCap)
	if occFactor > 1 {
		occFactor = 1
	}
	trust := s.providerTrust(c.Provider)
	tMatch := titleMatch(c.Query, title)

	composed := weightRelevance*rel + weightOccurrence*occFactor + weightTrust*trust + weightTitle*tMatch

	if hasBrazilMarker(c.URL) || hasBrazilMarker(content) {
		composed *= brazilDomainMultiplier
	}

	composed = expand(composed)

	if s.vectorStore != nil && c.UseRAG {
		composed = s.adjustWithRAG(content, composed)
	}

	meta := isMetaAnswer(title, description)
	empty := isEmptyResult(title, description)
	switch {
	case meta && empty:
		composed *= 0.05
	case meta:
		composed *= metaAnswerPenalty
	case empty:
		composed *= emptyResultPenalty
	}

	final := clamp01(composed)

	s.mu.Lock()
	s.cache[key] = final
	s.mu.Unlock()

	return final
}

// ScoreBatch scores a slice of candidates produced by one provider
// call, mirroring EmbedBatch's per-batch shape so a single provider
// response is scored as one unit instead of candidate-by-candidate.
func (s *Scorer) ScoreBatch(ctx context.Context, candidates []Candidate) []float64 {
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = s.Score(ctx, c)
	}
	return scores
}

// adjustWithRAG returns base unchanged: with no embedding at hand it
// cannot query C4. The ±0.2/−0.3 neighbor-based adjustment is applied
// by ScoreWithEmbedding.
func (s *Scorer) adjustWithRAG(content string, base float64) float64 {
	// Embedding lookup is the caller's responsibility in this design:
	// the scorer is handed pre-embedded text via the vector store's own
	// query surface when a caller opts in. Without an embedding here we
	// cannot query C4 meaningfully, so RAG adjustment is a no-op unless
	// the caller uses ScoreWithEmbedding.
	_ = content
	return base
}

// ScoreWithEmbedding is the RAG-aware entry point: callers that already
// have an embedding for the candidate content can pass it so the
// adjustment in spec §4.5 actually consults C4.
func (s *Scorer) ScoreWithEmbedding(ctx context.Context, c Candidate, embedding []float64) float64 {
	if s.vectorStore == nil || !c.UseRAG || embedding == nil {
		return s.Score(ctx, c)
	}

	base := s.Score(ctx, Candidate{
		Title: c.Title, Description: c.Description, TitlePT: c.TitlePT, DescriptionPT: c.DescriptionPT,
		URL: c.URL, Language: c.Language, Provider: c.Provider, Query: c.Query, Occurrences: c.Occurrences,
		UseRAG: false,
	})

	matches := s.vectorStore.Query(vectorstore.CollectionResults, embedding, 5, nil)
	if len(matches) == 0 {
		return base
	}

	var highQuality, lowQuality int
	for _, m := range matches {
		if m.Similarity < 0.5 {
			continue
		}
		scoreStr, ok := m.Entry.Metadata["confidence_score"]
		if !ok {
			continue
		}
		var sc float64
		if _, err := fmt.Sscanf(scoreStr, "%f", &sc); err != nil {
			continue
		}
		if sc >= 0.7 {
			highQuality++
		} else if sc <= 0.3 {
			lowQuality++
		}
	}

	adjustment := 0.0
	if highQuality >= 2 {
		adjustment = math.Min(ragBoostCap, 0.05*float64(highQuality))
	} else if lowQuality >= 2 {
		adjustment = -math.Min(ragCutCap, 0.08*float64(lowQuality))
	}

	return clamp01(base + adjustment)
}

// QualityAppraisal is the result of appraising a set of hits already
// gathered for one query, consumed by the Adaptive Search Executor.
type QualityAppraisal struct {
	OverallQuality float64
	Confidence     float64
	Diversity      float64
	Recommendation string
	Reason         string
}

const (
	RecommendStop     = "stop"
	RecommendMaybe    = "maybe"
	RecommendContinue = "continue"
)

// AppraiseQuality implements the quality-of-set appraisal in spec §4.5:
// diversity = min(1, distinct_providers/5); confidence blends mean
// score and 1-spread.
func AppraiseQuality(scores []float64, providers []string, minQuality float64) QualityAppraisal {
	if len(scores) == 0 {
		return QualityAppraisal{Recommendation: RecommendContinue, Reason: "no hits yet"}
	}

	var sum, max, min float64
	min = 1
	for _, sc := range scores {
		sum += sc
		if sc > max {
			max = sc
		}
		if sc < min {
			min = sc
		}
	}
	mean := sum / float64(len(scores))
	spread := max - min

	distinct := make(map[string]bool, len(providers))
	for _, p := range providers {
		distinct[p] = true
	}
	diversity := math.Min(1, float64(len(distinct))/5)
	confidence := clamp01(0.5*mean + 0.5*(1-spread))

	appraisal := QualityAppraisal{
		OverallQuality: mean,
		Confidence:     confidence,
		Diversity:      diversity,
	}

	switch {
	case mean >= minQuality && confidence >= 0.6:
		appraisal.Recommendation = RecommendStop
		appraisal.Reason = "quality threshold met with sufficient confidence"
	case mean >= minQuality*0.85:
		appraisal.Recommendation = RecommendMaybe
		appraisal.Reason = "approaching quality threshold"
	default:
		appraisal.Recommendation = RecommendContinue
		appraisal.Reason = "quality below threshold"
	}
	return appraisal
}
