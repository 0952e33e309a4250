package services

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/seren-labs/serenade/internal/core/domain"
)

// Candidate is a ranked retrieval entry with its projected descriptors
// attached, so eligibility and sequencing never re-project.
type Candidate struct {
	Segment     domain.Segment
	Score       float64
	Descriptors domain.Descriptors
}

// SelectorConfig holds the tunable eligibility parameters. Defaults mirror
// the observed system: intro segments carry ratio 0.25, guide material is
// mid-length, target material long enough to fall asleep to.
type SelectorConfig struct {
	IntroRatioThreshold float64
	GuideClasses        []domain.DurationClass
	TargetClasses       []domain.DurationClass
}

func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		IntroRatioThreshold: 0.25,
		GuideClasses:        []domain.DurationClass{domain.Duration3Min, domain.Duration5Min, domain.Duration10Min},
		TargetClasses:       []domain.DurationClass{domain.Duration10Min, domain.Duration20Min, domain.Duration30Min},
	}
}

// Selector applies stage eligibility filtering and then picks uniformly at
// random among the top K eligible candidates, so repeated identical queries
// do not always return the same segment.
type Selector struct {
	cfg SelectorConfig
}

func NewSelector(cfg SelectorConfig) *Selector {
	if cfg.IntroRatioThreshold <= 0 {
		cfg.IntroRatioThreshold = DefaultSelectorConfig().IntroRatioThreshold
	}
	if len(cfg.GuideClasses) == 0 {
		cfg.GuideClasses = DefaultSelectorConfig().GuideClasses
	}
	if len(cfg.TargetClasses) == 0 {
		cfg.TargetClasses = DefaultSelectorConfig().TargetClasses
	}
	return &Selector{cfg: cfg}
}

// Eligible filters candidates for a stage. MATCH follows the ISO
// synchrony-first rule and admits only segments drawn from the leading
// portion of their source; GUIDE and TARGET filter on duration class.
func (s *Selector) Eligible(ranked []Candidate, stage domain.Stage) []Candidate {
	var out []Candidate
	for _, c := range ranked {
		if s.eligible(c.Segment, stage) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Selector) eligible(seg domain.Segment, stage domain.Stage) bool {
	switch stage {
	case domain.StageMatch:
		return seg.IntroRatio >= s.cfg.IntroRatioThreshold
	case domain.StageGuide:
		return containsClass(s.cfg.GuideClasses, seg.DurationClass)
	case domain.StageTarget:
		return containsClass(s.cfg.TargetClasses, seg.DurationClass)
	default:
		return false
	}
}

func containsClass(classes []domain.DurationClass, c domain.DurationClass) bool {
	for _, x := range classes {
		if x == c {
			return true
		}
	}
	return false
}

// Select filters ranked candidates for the stage and picks one of the top
// min(k, n) by score. Passing a non-nil rng makes the pick reproducible; a
// nil rng gets a time-seeded source for genuine per-call variation.
func (s *Selector) Select(ranked []Candidate, k int, stage domain.Stage, rng *rand.Rand) (Candidate, error) {
	if k < 1 {
		return Candidate{}, fmt.Errorf("selector: k must be >= 1, got %d: %w", k, domain.ErrInvalidInput)
	}

	eligible := s.Eligible(ranked, stage)
	if len(eligible) == 0 {
		return Candidate{}, fmt.Errorf("selector: stage %s: %w", stage, domain.ErrNoEligibleCandidates)
	}

	sortByScore(eligible)
	if k > len(eligible) {
		k = len(eligible)
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return eligible[rng.Intn(k)], nil
}

// sortByScore orders descending by score with segment id as tie-break, so
// the top-K window is stable across calls.
func sortByScore(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Segment.ID() < candidates[j].Segment.ID()
	})
}
