package services

import (
	"fmt"
	"math"

	"github.com/seren-labs/serenade/internal/analysis"
	"github.com/seren-labs/serenade/internal/core/domain"
)

// Matcher scores candidate feature vectors against a query emotion. Both
// sides are first projected into the shared six-axis descriptor space; raw
// embedding and heuristic vectors are never compared directly.
//
// The blended score is w*cosine + (1-w)*(1 - distance), with cosine rescaled
// from [-1,1] to [0,1] and the euclidean distance between unit vectors
// divided by its maximum of 2. The cosine weight differs per space:
// embedding projections lean harder on cosine, matching the observed system.
type Matcher struct {
	embeddingCosineWeight float64
	heuristicCosineWeight float64
}

const (
	// DefaultEmbeddingCosineWeight and DefaultHeuristicCosineWeight are the
	// documented blend defaults; both are configurable.
	DefaultEmbeddingCosineWeight = 0.8
	DefaultHeuristicCosineWeight = 0.7
)

func NewMatcher(embeddingCosineWeight, heuristicCosineWeight float64) *Matcher {
	if embeddingCosineWeight <= 0 || embeddingCosineWeight > 1 {
		embeddingCosineWeight = DefaultEmbeddingCosineWeight
	}
	if heuristicCosineWeight <= 0 || heuristicCosineWeight > 1 {
		heuristicCosineWeight = DefaultHeuristicCosineWeight
	}
	return &Matcher{
		embeddingCosineWeight: embeddingCosineWeight,
		heuristicCosineWeight: heuristicCosineWeight,
	}
}

// QueryDescriptors derives the query-side descriptor vector for a stage: the
// weight-averaged stage profiles of every category the classifier activated.
func (m *Matcher) QueryDescriptors(ev domain.EmotionVector, stage domain.Stage) domain.Descriptors {
	var total float64
	for _, w := range ev.Weights {
		total += w
	}
	if total <= 0 {
		return stageProfile(ev.Top, stage)
	}

	var out domain.Descriptors
	for i, w := range ev.Weights {
		if w <= 0 {
			continue
		}
		p := stageProfile(domain.Category(i), stage)
		frac := w / total
		out.Tempo += frac * p.Tempo
		out.Tonality += frac * p.Tonality
		out.Dynamics += frac * p.Dynamics
		out.Intensity += frac * p.Intensity
		out.Complexity += frac * p.Complexity
		out.Texture += frac * p.Texture
	}
	return out
}

// Project maps a space-tagged feature vector into the descriptor space.
func (m *Matcher) Project(fv domain.FeatureVector) (domain.Descriptors, error) {
	switch fv.Space {
	case domain.SpaceHeuristic:
		if len(fv.Values) != domain.HeuristicLen {
			return domain.Descriptors{}, fmt.Errorf("matcher: heuristic vector has %d values, want %d", len(fv.Values), domain.HeuristicLen)
		}
		return domain.Descriptors{
			Tempo:      fv.Values[0],
			Tonality:   fv.Values[5],
			Dynamics:   fv.Values[6],
			Intensity:  fv.Values[1],
			Complexity: fv.Values[2],
			Texture:    fv.Values[3],
		}, nil
	case domain.SpaceEmbedding:
		if len(fv.Values) == 0 {
			return domain.Descriptors{}, fmt.Errorf("matcher: empty embedding vector")
		}
		return projectEmbedding(fv.Values), nil
	default:
		return domain.Descriptors{}, fmt.Errorf("matcher: vector carries no declared space")
	}
}

// projectEmbedding reduces a high-dimensional embedding to descriptor
// proxies through its distribution statistics. The embedding itself is
// opaque; only the shape of its value distribution is interpreted.
func projectEmbedding(values []float64) domain.Descriptors {
	n := float64(len(values))

	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	std := math.Sqrt(variance)
	rms := math.Sqrt(sumSq / n)
	energy := sumSq

	var skew, kurt float64
	if std > 0 {
		for _, v := range values {
			z := (v - mean) / std
			skew += z * z * z
			kurt += z * z * z * z
		}
		skew /= n
		kurt = kurt/n - 3
	}

	// Spectral centroid of the value series, treating the embedding as a
	// signal: index-weighted center of its magnitude spectrum.
	mag := analysis.Spectrum(values)
	var magSum, weighted float64
	for i, x := range mag {
		magSum += x
		weighted += float64(i) * x
	}
	var centroid float64
	if magSum > 0 {
		centroid = weighted / magSum
	}

	clamp := func(v float64) float64 { return math.Max(0, math.Min(v, 1)) }
	return domain.Descriptors{
		Tempo:      clamp(math.Abs(energy) / 10),
		Tonality:   clamp(math.Abs(centroid) / 100),
		Dynamics:   clamp(std * 2),
		Intensity:  clamp(rms * 5),
		Complexity: clamp(math.Abs(skew) / 2),
		Texture:    clamp(math.Abs(kurt) / 5),
	}
}

// Score computes the blended similarity between a query descriptor vector
// and a candidate feature vector. The result is always in [0,1]; a
// zero-magnitude vector on either side scores 0.0.
func (m *Matcher) Score(query domain.Descriptors, fv domain.FeatureVector) (float64, error) {
	cand, err := m.Project(fv)
	if err != nil {
		return 0, err
	}
	return m.ScoreDescriptors(query, cand, fv.Space), nil
}

// ScoreDescriptors scores two already-projected vectors. Pure and
// deterministic: identical inputs always produce the identical score.
func (m *Matcher) ScoreDescriptors(query, cand domain.Descriptors, space domain.Space) float64 {
	q := normalize(query.Slice())
	c := normalize(cand.Slice())
	if q == nil || c == nil {
		return 0.0
	}

	var dot, dist float64
	for i := range q {
		dot += q[i] * c[i]
		d := q[i] - c[i]
		dist += d * d
	}
	cosine := (dot + 1) / 2         // [-1,1] -> [0,1]
	euclid := 1 - math.Sqrt(dist)/2 // unit vectors are at most 2 apart

	w := m.heuristicCosineWeight
	if space == domain.SpaceEmbedding {
		w = m.embeddingCosineWeight
	}
	score := w*cosine + (1-w)*euclid
	return math.Max(0, math.Min(score, 1))
}

// normalize returns the unit vector, or nil for a zero-magnitude input.
func normalize(v []float64) []float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	if sumSq == 0 {
		return nil
	}
	norm := math.Sqrt(sumSq)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
