package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/seren-labs/serenade/internal/core/domain"
	"github.com/seren-labs/serenade/internal/core/ports"
)

// Orchestrator runs the retrieval pipeline for one query in strict
// sequence: classify, score, select, sequence. It serves from an immutable
// catalog snapshot; a rebuild swaps in a fresh snapshot atomically and is
// never visible to in-flight readers.
type Orchestrator struct {
	classifier ports.EmotionClassifier
	store      ports.FeatureStore
	extractor  ports.FeatureExtractor
	matcher    *Matcher
	selector   *Selector
	sequencer  *Sequencer
	log        zerolog.Logger

	defaultK int
	catalog  atomic.Pointer[catalog]
}

// catalog is the in-memory read view of the feature store: every segment
// with its descriptors projected once at load time.
type catalog struct {
	candidates []Candidate
}

// NewOrchestrator wires the pipeline. The extractor is only consulted for
// status reporting; serving reads precomputed vectors from the store.
func NewOrchestrator(
	classifier ports.EmotionClassifier,
	store ports.FeatureStore,
	extractor ports.FeatureExtractor,
	matcher *Matcher,
	selector *Selector,
	sequencer *Sequencer,
	defaultK int,
	log zerolog.Logger,
) *Orchestrator {
	if defaultK < 1 {
		defaultK = 5
	}
	o := &Orchestrator{
		classifier: classifier,
		store:      store,
		extractor:  extractor,
		matcher:    matcher,
		selector:   selector,
		sequencer:  sequencer,
		defaultK:   defaultK,
		log:        log,
	}
	o.catalog.Store(&catalog{})
	return o
}

// Reload builds a fresh catalog snapshot from the store and swaps it in.
// Segments whose vectors cannot be projected are skipped, not fatal.
func (o *Orchestrator) Reload(ctx context.Context) error {
	segments, err := o.store.All(ctx)
	if err != nil {
		return fmt.Errorf("service: load feature store: %w", err)
	}

	next := &catalog{candidates: make([]Candidate, 0, len(segments))}
	for _, seg := range segments {
		desc, err := o.matcher.Project(seg.Vector)
		if err != nil {
			o.log.Warn().Err(err).Str("segment", seg.ID()).Msg("skipping unprojectable segment")
			continue
		}
		next.candidates = append(next.candidates, Candidate{Segment: seg, Descriptors: desc})
	}

	o.catalog.Store(next)
	o.log.Info().Int("segments", len(next.candidates)).Msg("catalog loaded")
	return nil
}

// Recommend answers one text query. k <= 0 uses the configured default; a
// non-nil rng makes the top-K pick reproducible.
func (o *Orchestrator) Recommend(ctx context.Context, text string, k int, rng *rand.Rand) (domain.Recommendation, error) {
	emotion, err := o.classifier.Detect(text)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("service: classify query: %w", err)
	}

	if k <= 0 {
		k = o.defaultK
	}

	snapshot := o.catalog.Load()
	if len(snapshot.candidates) == 0 {
		return domain.Recommendation{}, fmt.Errorf("service: empty library: %w", domain.ErrNoEligibleCandidates)
	}

	query := o.matcher.QueryDescriptors(emotion, domain.StageMatch)
	ranked := make([]Candidate, len(snapshot.candidates))
	for i, c := range snapshot.candidates {
		c.Score = o.matcher.ScoreDescriptors(query, c.Descriptors, c.Segment.Vector.Space)
		ranked[i] = c
	}
	sortByScore(ranked)

	match, err := o.selector.Select(ranked, k, domain.StageMatch, rng)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("service: select match segment: %w", err)
	}

	sequence, err := o.sequencer.Sequence(match, ranked)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("service: build stage sequence: %w", err)
	}

	rec := domain.Recommendation{
		Emotion:              emotion,
		Segment:              match.Segment,
		Score:                match.Score,
		Sequence:             sequence,
		UsedFallbackStrategy: match.Segment.Vector.Space == domain.SpaceHeuristic,
	}

	o.log.Info().
		Str("emotion", emotion.Top.String()).
		Float64("confidence", emotion.Confidence).
		Str("segment", match.Segment.ID()).
		Float64("score", match.Score).
		Bool("cross_source", sequence.CrossSourceFallback).
		Msg("recommendation served")

	return rec, nil
}

// Status describes the serving library and extraction health.
type Status struct {
	TotalSegments    int                          `json:"total_segments"`
	ByDurationClass  map[domain.DurationClass]int `json:"by_duration_class"`
	EmbeddingActive  bool                         `json:"embedding_active"`
	StrategyDegraded bool                         `json:"strategy_degraded"`
}

func (o *Orchestrator) Status(ctx context.Context) (Status, error) {
	counts, err := o.store.CountsByDurationClass(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("service: store counts: %w", err)
	}
	var total int
	for _, n := range counts {
		total += n
	}
	degraded := o.extractor != nil && o.extractor.Degraded()
	return Status{
		TotalSegments:    total,
		ByDurationClass:  counts,
		EmbeddingActive:  !degraded,
		StrategyDegraded: degraded,
	}, nil
}
