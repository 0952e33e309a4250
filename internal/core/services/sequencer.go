package services

import (
	"fmt"
	"math"

	"github.com/seren-labs/serenade/internal/core/domain"
)

// Sequencer assembles the ISO three-stage sequence around a chosen match
// segment: stay with the current affect, then guide, then reach the calmer
// target. The target's intensity proxy never exceeds the match segment's.
type Sequencer struct {
	selector *Selector
}

func NewSequencer(selector *Selector) *Sequencer {
	return &Sequencer{selector: selector}
}

// Sequence picks guide and target material for the given match candidate.
// Same-source material is preferred; when none qualifies the best-scoring
// candidate from any source is used and the cross-source flag is set.
func (q *Sequencer) Sequence(match Candidate, ranked []Candidate) (domain.StageSequence, error) {
	guides := q.selector.Eligible(ranked, domain.StageGuide)
	targets := q.selector.Eligible(ranked, domain.StageTarget)

	guide, guideCross, ok := pickStage(match, guides, match.Descriptors.Intensity, false, "")
	if !ok {
		return domain.StageSequence{}, fmt.Errorf("sequencer: no guide material: %w", domain.ErrSequencingImpossible)
	}

	// De-escalation is a hard invariant for the target stage: its energy
	// proxy must not exceed the match segment's, even when the guide stage
	// had to settle for hotter material.
	ceiling := math.Min(guide.Descriptors.Intensity, match.Descriptors.Intensity)
	target, targetCross, ok := pickStage(match, targets, ceiling, true, guide.Segment.ID())
	if !ok {
		return domain.StageSequence{}, fmt.Errorf("sequencer: no target material at or below match intensity: %w", domain.ErrSequencingImpossible)
	}

	return domain.StageSequence{
		Match:               match.Segment,
		Guide:               guide.Segment,
		Target:              target.Segment,
		CrossSourceFallback: guideCross || targetCross,
	}, nil
}

// pickStage chooses the best-scoring candidate whose intensity does not
// exceed the ceiling, preferring the match segment's own source. The match
// segment and excludeID are never picked, so one segment cannot fill two
// stages. When the ceiling is not strict and nothing sits below it, the
// calmest candidate wins instead.
func pickStage(match Candidate, candidates []Candidate, intensityCeiling float64, strict bool, excludeID string) (Candidate, bool, bool) {
	pool := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		id := c.Segment.ID()
		if id == match.Segment.ID() || id == excludeID {
			continue
		}
		pool = append(pool, c)
	}
	if len(pool) == 0 {
		return Candidate{}, false, false
	}

	best := func(pool []Candidate) (Candidate, bool) {
		var chosen Candidate
		found := false
		for _, c := range pool {
			if c.Descriptors.Intensity > intensityCeiling {
				continue
			}
			if !found || c.Score > chosen.Score {
				chosen = c
				found = true
			}
		}
		return chosen, found
	}

	var sameSource []Candidate
	for _, c := range pool {
		if c.Segment.SourceID == match.Segment.SourceID {
			sameSource = append(sameSource, c)
		}
	}

	if c, ok := best(sameSource); ok {
		return c, false, true
	}
	if c, ok := best(pool); ok {
		return c, true, true
	}

	if strict {
		return Candidate{}, false, false
	}

	// Guide has no hard intensity invariant of its own; fall back to the
	// calmest candidate so a sequence still exists when everything runs
	// hotter than the match.
	calmest := pool[0]
	for _, c := range pool[1:] {
		if c.Descriptors.Intensity < calmest.Descriptors.Intensity {
			calmest = c
		}
	}
	return calmest, calmest.Segment.SourceID != match.Segment.SourceID, true
}
