package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/seren-labs/serenade/internal/analysis"
	"github.com/seren-labs/serenade/internal/core/domain"
	"github.com/seren-labs/serenade/internal/core/ports"
)

// Extractor owns the two extraction strategies and the state machine
// between them. It starts on the embedding strategy and downgrades to the
// heuristic strategy exactly once, for the rest of the process lifetime,
// when the embedding path reports itself unavailable. A failure on a single
// input falls back for that input only.
type Extractor struct {
	embedder ports.Embedder
	log      zerolog.Logger
	cache    *gocache.Cache
	degraded atomic.Bool
}

// NewExtractor builds the extractor. A nil embedder starts the extractor in
// the degraded state immediately.
func NewExtractor(embedder ports.Embedder, log zerolog.Logger, cacheTTL time.Duration) *Extractor {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	e := &Extractor{
		embedder: embedder,
		log:      log,
		cache:    gocache.New(cacheTTL, cacheTTL/2),
	}
	if embedder == nil {
		e.degraded.Store(true)
		log.Warn().Msg("no embedding backend configured, using heuristic strategy")
	}
	return e
}

// Degraded reports whether the one-way downgrade has happened.
func (e *Extractor) Degraded() bool {
	return e.degraded.Load()
}

// Extract produces a space-tagged feature vector for the clip. Repeated
// calls for the same source identity under the same strategy hit the cache.
func (e *Extractor) Extract(ctx context.Context, sourceID string, clip domain.AudioClip) (domain.FeatureVector, bool, error) {
	if !e.degraded.Load() {
		key := cacheKey(sourceID, domain.SpaceEmbedding)
		if hit, ok := e.cache.Get(key); ok {
			return hit.(domain.FeatureVector), false, nil
		}

		values, err := e.embedder.Embed(ctx, clip)
		switch {
		case err == nil:
			vec := domain.FeatureVector{Space: domain.SpaceEmbedding, Values: values}
			e.cache.SetDefault(key, vec)
			return vec, false, nil
		case errors.Is(err, domain.ErrExtractionUnavailable):
			// One-way transition; log the downgrade only once.
			if e.degraded.CompareAndSwap(false, true) {
				e.log.Warn().Err(err).Msg("embedding strategy unavailable, permanently downgrading to heuristic extraction")
			}
		case errors.Is(err, domain.ErrExtractionFailed):
			e.log.Debug().Err(err).Str("source", sourceID).Msg("embedding failed for input, using heuristic fallback")
			vec, herr := e.heuristic(sourceID, clip)
			return vec, true, herr
		default:
			return domain.FeatureVector{}, false, fmt.Errorf("extractor: embed %s: %w", sourceID, err)
		}
	}

	vec, err := e.heuristic(sourceID, clip)
	return vec, true, err
}

func (e *Extractor) heuristic(sourceID string, clip domain.AudioClip) (domain.FeatureVector, error) {
	key := cacheKey(sourceID, domain.SpaceHeuristic)
	if hit, ok := e.cache.Get(key); ok {
		return hit.(domain.FeatureVector), nil
	}

	feats, err := analysis.Analyze(clip.Samples, clip.SampleRate)
	if err != nil {
		return domain.FeatureVector{}, fmt.Errorf("extractor: analyze %s: %w: %v", sourceID, domain.ErrExtractionFailed, err)
	}
	vec := domain.FeatureVector{Space: domain.SpaceHeuristic, Values: feats.HeuristicVector()}
	e.cache.SetDefault(key, vec)
	return vec, nil
}

func cacheKey(sourceID string, space domain.Space) string {
	return sourceID + "|" + string(space)
}
