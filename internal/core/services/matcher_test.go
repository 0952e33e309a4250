package services

import (
	"math"
	"testing"

	"github.com/seren-labs/serenade/internal/core/domain"
)

func TestScoreDescriptorsBounds(t *testing.T) {
	m := NewMatcher(DefaultEmbeddingCosineWeight, DefaultHeuristicCosineWeight)

	tests := []struct {
		name  string
		query domain.Descriptors
		cand  domain.Descriptors
	}{
		{
			name:  "calm vs calm",
			query: domain.Descriptors{Tempo: 0.2, Tonality: 0.7, Dynamics: 0.2, Intensity: 0.25, Complexity: 0.3, Texture: 0.15},
			cand:  domain.Descriptors{Tempo: 0.25, Tonality: 0.6, Dynamics: 0.3, Intensity: 0.3, Complexity: 0.2, Texture: 0.2},
		},
		{
			name:  "calm vs agitated",
			query: domain.Descriptors{Tempo: 0.2, Tonality: 0.7, Dynamics: 0.2, Intensity: 0.25, Complexity: 0.3, Texture: 0.15},
			cand:  domain.Descriptors{Tempo: 0.9, Tonality: 0.1, Dynamics: 0.9, Intensity: 0.95, Complexity: 0.8, Texture: 0.9},
		},
		{
			name:  "axis-disjoint",
			query: domain.Descriptors{Tempo: 1},
			cand:  domain.Descriptors{Texture: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, space := range []domain.Space{domain.SpaceEmbedding, domain.SpaceHeuristic} {
				got := m.ScoreDescriptors(tc.query, tc.cand, space)
				if got < 0 || got > 1 {
					t.Errorf("score in space %s = %v, want within [0,1]", space, got)
				}
			}
		})
	}
}

func TestScoreDescriptorsSelfSimilarity(t *testing.T) {
	m := NewMatcher(DefaultEmbeddingCosineWeight, DefaultHeuristicCosineWeight)

	d := domain.Descriptors{Tempo: 0.4, Tonality: 0.6, Dynamics: 0.5, Intensity: 0.3, Complexity: 0.7, Texture: 0.2}
	got := m.ScoreDescriptors(d, d, domain.SpaceEmbedding)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("self-similarity = %v, want 1.0", got)
	}
}

func TestScoreDescriptorsZeroVector(t *testing.T) {
	m := NewMatcher(DefaultEmbeddingCosineWeight, DefaultHeuristicCosineWeight)

	nonZero := domain.Descriptors{Tempo: 0.5, Intensity: 0.5}
	if got := m.ScoreDescriptors(domain.Descriptors{}, nonZero, domain.SpaceHeuristic); got != 0.0 {
		t.Errorf("zero query score = %v, want 0.0", got)
	}
	if got := m.ScoreDescriptors(nonZero, domain.Descriptors{}, domain.SpaceHeuristic); got != 0.0 {
		t.Errorf("zero candidate score = %v, want 0.0", got)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	m := NewMatcher(DefaultEmbeddingCosineWeight, DefaultHeuristicCosineWeight)

	fv := domain.FeatureVector{
		Space:  domain.SpaceHeuristic,
		Values: []float64{0.3, 0.5, 0.4, 0.6, 0.7, 0.2, 0.45},
	}
	query := domain.Descriptors{Tempo: 0.4, Tonality: 0.6, Dynamics: 0.5, Intensity: 0.3, Complexity: 0.7, Texture: 0.2}

	first, err := m.Score(query, fv)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := m.Score(query, fv)
		if err != nil {
			t.Fatalf("Score returned error on run %d: %v", i, err)
		}
		if got != first {
			t.Fatalf("run %d score = %v, want %v", i, got, first)
		}
	}
}

func TestProjectHeuristicLayout(t *testing.T) {
	m := NewMatcher(DefaultEmbeddingCosineWeight, DefaultHeuristicCosineWeight)

	fv := domain.FeatureVector{
		Space:  domain.SpaceHeuristic,
		Values: []float64{0.10, 0.20, 0.30, 0.40, 0.50, 0.60, 0.70},
	}
	got, err := m.Project(fv)
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	want := domain.Descriptors{
		Tempo:      0.10,
		Tonality:   0.60,
		Dynamics:   0.70,
		Intensity:  0.20,
		Complexity: 0.30,
		Texture:    0.40,
	}
	if got != want {
		t.Errorf("Project = %+v, want %+v", got, want)
	}
}

func TestProjectEmbeddingStaysInRange(t *testing.T) {
	m := NewMatcher(DefaultEmbeddingCosineWeight, DefaultHeuristicCosineWeight)

	values := make([]float64, 512)
	for i := range values {
		values[i] = math.Sin(float64(i) * 0.37)
	}
	got, err := m.Project(domain.FeatureVector{Space: domain.SpaceEmbedding, Values: values})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	for i, v := range got.Slice() {
		if v < 0 || v > 1 {
			t.Errorf("descriptor axis %d = %v, want within [0,1]", i, v)
		}
	}
}

func TestProjectRejectsMalformedVectors(t *testing.T) {
	m := NewMatcher(DefaultEmbeddingCosineWeight, DefaultHeuristicCosineWeight)

	tests := []struct {
		name string
		fv   domain.FeatureVector
	}{
		{"short heuristic", domain.FeatureVector{Space: domain.SpaceHeuristic, Values: []float64{1, 2}}},
		{"empty embedding", domain.FeatureVector{Space: domain.SpaceEmbedding}},
		{"no space", domain.FeatureVector{Values: []float64{1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := m.Project(tc.fv); err == nil {
				t.Error("Project accepted a malformed vector")
			}
		})
	}
}

func TestQueryDescriptorsFallsBackToTopCategory(t *testing.T) {
	m := NewMatcher(DefaultEmbeddingCosineWeight, DefaultHeuristicCosineWeight)

	ev := domain.EmotionVector{Top: domain.Fear}
	got := m.QueryDescriptors(ev, domain.StageMatch)
	if want := stageProfile(domain.Fear, domain.StageMatch); got != want {
		t.Errorf("zero-weight query = %+v, want top-category profile %+v", got, want)
	}
}

func TestStageProfilesDeEscalate(t *testing.T) {
	for _, cat := range domain.Categories() {
		match := stageProfile(cat, domain.StageMatch)
		guide := stageProfile(cat, domain.StageGuide)
		target := stageProfile(cat, domain.StageTarget)

		if target.Intensity > guide.Intensity {
			t.Errorf("%s: target intensity %v exceeds guide %v", cat, target.Intensity, guide.Intensity)
		}
		if guide.Intensity > match.Intensity {
			t.Errorf("%s: guide intensity %v exceeds match %v", cat, guide.Intensity, match.Intensity)
		}
	}
}
