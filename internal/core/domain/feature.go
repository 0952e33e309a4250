package domain

// Space declares which extraction strategy produced a feature vector.
// Vectors from different spaces are never compared directly; they must go
// through the descriptor projection first.
type Space string

const (
	SpaceEmbedding Space = "EMBEDDING"
	SpaceHeuristic Space = "HEURISTIC"
)

// FeatureVector is a segment's audio representation together with the space
// tag that says how to interpret it. Embedding vectors are high-dimensional
// model outputs; heuristic vectors hold the fixed descriptor layout of
// HeuristicOrder.
type FeatureVector struct {
	Space  Space
	Values []float64
}

// HeuristicOrder documents the layout of a heuristic vector. All entries are
// normalized to [0,1] at extraction time.
//
//	0: tempo estimate / 200 BPM
//	1: RMS energy * 10
//	2: brightness (high-frequency energy ratio)
//	3: warmth (low-frequency energy ratio)
//	4: rhythm regularity
//	5: spectral centroid / 8 kHz
//	6: dynamic range / 2
const HeuristicLen = 7

// Descriptors is the shared six-axis space both strategies project into
// before similarity is computed. Every axis lives in [0,1].
type Descriptors struct {
	Tempo      float64
	Tonality   float64
	Dynamics   float64
	Intensity  float64
	Complexity float64
	Texture    float64
}

// Slice returns the axes in their fixed order.
func (d Descriptors) Slice() []float64 {
	return []float64{d.Tempo, d.Tonality, d.Dynamics, d.Intensity, d.Complexity, d.Texture}
}

// AudioClip is a decoded mono waveform handed over by the decoding
// collaborator.
type AudioClip struct {
	Samples    []float64
	SampleRate int
}
