package services

import (
	"errors"
	"testing"

	"github.com/seren-labs/serenade/internal/core/domain"
)

func stageCandidate(source string, class domain.DurationClass, intensity, score float64) Candidate {
	c := makeCandidate(source, 0, class, 0.25, score)
	c.Descriptors.Intensity = intensity
	return c
}

func TestSequencePrefersSameSource(t *testing.T) {
	seq := NewSequencer(NewSelector(DefaultSelectorConfig()))

	match := stageCandidate("a", domain.Duration1Min, 0.7, 0.95)
	ranked := []Candidate{
		match,
		stageCandidate("a", domain.Duration3Min, 0.5, 0.60),
		stageCandidate("b", domain.Duration5Min, 0.4, 0.90),
		stageCandidate("a", domain.Duration20Min, 0.3, 0.50),
		stageCandidate("b", domain.Duration30Min, 0.2, 0.85),
	}

	got, err := seq.Sequence(match, ranked)
	if err != nil {
		t.Fatalf("Sequence returned error: %v", err)
	}
	if got.Guide.SourceID != "a" {
		t.Errorf("guide source = %s, want the match source despite a better-scoring alternative", got.Guide.SourceID)
	}
	if got.Target.SourceID != "a" {
		t.Errorf("target source = %s, want the match source", got.Target.SourceID)
	}
	if got.CrossSourceFallback {
		t.Error("cross-source flag set although all stages came from the match source")
	}
}

func TestSequenceCrossSourceFallback(t *testing.T) {
	seq := NewSequencer(NewSelector(DefaultSelectorConfig()))

	match := stageCandidate("a", domain.Duration1Min, 0.7, 0.95)
	ranked := []Candidate{
		match,
		stageCandidate("b", domain.Duration5Min, 0.4, 0.90),
		stageCandidate("b", domain.Duration30Min, 0.2, 0.85),
	}

	got, err := seq.Sequence(match, ranked)
	if err != nil {
		t.Fatalf("Sequence returned error: %v", err)
	}
	if !got.CrossSourceFallback {
		t.Error("cross-source flag not set although no same-source material existed")
	}
	if got.Guide.SourceID != "b" || got.Target.SourceID != "b" {
		t.Errorf("sequence = guide %s, target %s; want material from source b", got.Guide.SourceID, got.Target.SourceID)
	}
}

func TestSequenceTargetNeverExceedsMatchIntensity(t *testing.T) {
	seq := NewSequencer(NewSelector(DefaultSelectorConfig()))

	match := stageCandidate("a", domain.Duration1Min, 0.5, 0.95)
	ranked := []Candidate{
		match,
		stageCandidate("a", domain.Duration5Min, 0.45, 0.80),
		// Every target-eligible candidate runs hotter than the match.
		stageCandidate("a", domain.Duration20Min, 0.8, 0.90),
		stageCandidate("b", domain.Duration30Min, 0.9, 0.95),
	}

	if _, err := seq.Sequence(match, ranked); !errors.Is(err, domain.ErrSequencingImpossible) {
		t.Errorf("error = %v, want ErrSequencingImpossible when no target sits at or below match intensity", err)
	}
}

func TestSequenceGuideFallsBackToCalmest(t *testing.T) {
	seq := NewSequencer(NewSelector(DefaultSelectorConfig()))

	match := stageCandidate("a", domain.Duration1Min, 0.3, 0.95)
	ranked := []Candidate{
		match,
		// All guide material runs hotter than the match; the calmest wins.
		stageCandidate("a", domain.Duration5Min, 0.6, 0.90),
		stageCandidate("a", domain.Duration3Min, 0.5, 0.40),
		stageCandidate("a", domain.Duration20Min, 0.25, 0.70),
	}

	got, err := seq.Sequence(match, ranked)
	if err != nil {
		t.Fatalf("Sequence returned error: %v", err)
	}
	if got.Guide.DurationClass != domain.Duration3Min {
		t.Errorf("guide = %s, want the calmest guide candidate", got.Guide.ID())
	}
}

func TestSequenceHotGuideKeepsMatchCeiling(t *testing.T) {
	seq := NewSequencer(NewSelector(DefaultSelectorConfig()))

	// The only guide runs hotter than the match; the target ceiling must
	// stay at the match intensity, not inherit the guide's.
	match := stageCandidate("a", domain.Duration1Min, 0.3, 0.95)
	hotGuide := stageCandidate("a", domain.Duration5Min, 0.5, 0.90)

	ranked := []Candidate{
		match,
		hotGuide,
		stageCandidate("a", domain.Duration20Min, 0.4, 0.90),
		stageCandidate("a", domain.Duration30Min, 0.25, 0.40),
	}
	got, err := seq.Sequence(match, ranked)
	if err != nil {
		t.Fatalf("Sequence returned error: %v", err)
	}
	if got.Target.DurationClass != domain.Duration30Min {
		t.Errorf("target = %s, want the one candidate at or below match intensity", got.Target.ID())
	}

	// With nothing under the match intensity the sequence must fail, not
	// quietly escalate.
	ranked = []Candidate{
		match,
		hotGuide,
		stageCandidate("a", domain.Duration20Min, 0.4, 0.90),
	}
	if _, err := seq.Sequence(match, ranked); !errors.Is(err, domain.ErrSequencingImpossible) {
		t.Errorf("error = %v, want ErrSequencingImpossible when only hotter targets remain", err)
	}
}

func TestSequenceGuideAndTargetAreDistinct(t *testing.T) {
	seq := NewSequencer(NewSelector(DefaultSelectorConfig()))

	// A 10min segment is eligible for both stages and scores best; it may
	// fill only one of them.
	match := stageCandidate("a", domain.Duration1Min, 0.6, 0.95)
	shared := stageCandidate("a", domain.Duration10Min, 0.4, 0.90)
	ranked := []Candidate{
		match,
		shared,
		stageCandidate("a", domain.Duration20Min, 0.3, 0.50),
	}

	got, err := seq.Sequence(match, ranked)
	if err != nil {
		t.Fatalf("Sequence returned error: %v", err)
	}
	if got.Guide.ID() != shared.Segment.ID() {
		t.Fatalf("guide = %s, want the best-scoring mid-length candidate", got.Guide.ID())
	}
	if got.Target.ID() == got.Guide.ID() {
		t.Fatalf("target %s duplicates the guide segment", got.Target.ID())
	}
	if got.Target.DurationClass != domain.Duration20Min {
		t.Errorf("target = %s, want the remaining long candidate", got.Target.ID())
	}
}

func TestSequenceWithoutStageMaterial(t *testing.T) {
	seq := NewSequencer(NewSelector(DefaultSelectorConfig()))
	match := stageCandidate("a", domain.Duration1Min, 0.7, 0.95)

	if _, err := seq.Sequence(match, []Candidate{match}); !errors.Is(err, domain.ErrSequencingImpossible) {
		t.Errorf("error = %v, want ErrSequencingImpossible with no guide or target material", err)
	}
}
