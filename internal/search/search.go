// Package search implements the Adaptive Search Executor (C9): for one
// query, tries providers in order, appraising the accumulated hit
// quality after each call to decide whether to stop early, keep going,
// or (in non-adaptive mode) exhaust every configured call regardless of
// quality. Grounded on app/agente/orquestrador.py's
// buscar_com_qualidade_adaptativa.
package search

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/research-orchestrator/internal/providers"
	"github.com/tesseract-hub/research-orchestrator/internal/ratelimit"
	"github.com/tesseract-hub/research-orchestrator/internal/scorer"
)

// StopReason records why the executor stopped calling providers.
type StopReason string

const (
	StopMinNotReached      StopReason = "min_not_reached"
	StopQualitySatisfied   StopReason = "quality_satisfied"
	StopMaybeAfterMinimum  StopReason = "maybe_after_minimum"
	StopMaxCallsReached    StopReason = "max_calls_reached"
	StopProvidersExhausted StopReason = "providers_exhausted"
)

// Options configures one adaptive run, mirroring orquestrador.py's
// min/max call bounds and the minimum-quality threshold that gates
// early stopping.
type Options struct {
	MinCalls    int
	MaxCalls    int
	MinQuality  float64
	Adaptive    bool
	MaxResults  int
}

// CallResult records the outcome of one provider call for reporting.
type CallResult struct {
	Provider string
	Status   providers.Status
	Hits     []providers.Hit
	Err      error
}

// Outcome is the full result of an adaptive run: every hit gathered,
// the per-call trace, and why the executor stopped.
type Outcome struct {
	Hits       []providers.Hit
	Calls      []CallResult
	Appraisal  scorer.QualityAppraisal
	StopReason StopReason
}

type Executor struct {
	registry *providers.Registry
	scorer   *scorer.Scorer
	limiter  *ratelimit.Limiter
	log      *logrus.Entry
}

// NewExecutor builds an executor that paces its provider calls through
// limiter (spec §4.9 step 5's fixed inter-call delay, enforced once per
// call rather than once per queue item). limiter may be nil, in which
// case calls run back-to-back.
func NewExecutor(registry *providers.Registry, sc *scorer.Scorer, limiter *ratelimit.Limiter, log *logrus.Entry) *Executor {
	return &Executor{registry: registry, scorer: sc, limiter: limiter, log: log.WithField("component", "search_executor")}
}

// Run executes the adaptive loop for one (query, language) pair,
// honoring min/max call bounds and, when Adaptive is set, stopping as
// soon as AppraiseQuality recommends stopping or, once past the
// minimum call count, recommends "maybe".
func (e *Executor) Run(ctx context.Context, query, language string, opts Options) Outcome {
	order := e.registry.Ordered()

	var (
		hits     []providers.Hit
		calls    []CallResult
		scores   []float64
		provUsed []string
	)

	stopReason := StopProvidersExhausted

	for i, p := range order {
		if i >= opts.MaxCalls {
			stopReason = StopMaxCallsReached
			break
		}

		if p.IsDegraded() {
			e.log.WithField("provider", p.Name()).Debug("skipping degraded provider")
			continue
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				stopReason = StopProvidersExhausted
				break
			}
		}

		providerHits, status, err := p.Search(ctx, query, language, opts.MaxResults)
		calls = append(calls, CallResult{Provider: p.Name(), Status: status, Hits: providerHits, Err: err})

		if status == providers.StatusOK {
			hits = append(hits, providerHits...)
			candidates := make([]scorer.Candidate, len(providerHits))
			for j, h := range providerHits {
				candidates[j] = scorer.Candidate{
					Title: h.Title, Description: h.Description, URL: h.URL,
					Language: language, Provider: p.Name(), Query: query, Occurrences: 1,
				}
			}
			scores = append(scores, e.scorer.ScoreBatch(ctx, candidates)...)
			for range providerHits {
				provUsed = append(provUsed, p.Name())
			}
		}

		callsMade := len(calls)
		if callsMade < opts.MinCalls {
			continue
		}

		if !opts.Adaptive {
			continue
		}

		appraisal := scorer.AppraiseQuality(scores, provUsed, opts.MinQuality)
		switch {
		case appraisal.Recommendation == scorer.RecommendStop:
			stopReason = StopQualitySatisfied
			return Outcome{Hits: hits, Calls: calls, Appraisal: appraisal, StopReason: stopReason}
		case appraisal.Recommendation == scorer.RecommendMaybe && callsMade > opts.MinCalls:
			stopReason = StopMaybeAfterMinimum
			return Outcome{Hits: hits, Calls: calls, Appraisal: appraisal, StopReason: stopReason}
		}
	}

	appraisal := scorer.AppraiseQuality(scores, provUsed, opts.MinQuality)
	if len(calls) < opts.MinCalls {
		stopReason = StopMinNotReached
	}
	return Outcome{Hits: hits, Calls: calls, Appraisal: appraisal, StopReason: stopReason}
}

// RunWithDeadline wraps Run with a hard wall-clock budget, bounding how
// long a single run can take. The worker pool calls Run, not this.
func (e *Executor) RunWithDeadline(ctx context.Context, query, language string, opts Options, deadline time.Duration) Outcome {
	dctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	return e.Run(dctx, query, language, opts)
}
