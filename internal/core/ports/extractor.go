package ports

import (
	"context"

	"github.com/seren-labs/serenade/internal/core/domain"
)

// Embedder is the opaque pretrained model boundary: decoded audio in,
// high-dimensional vector out, or a typed failure.
//
// Implementations distinguish two failure modes: wrapping
// domain.ErrExtractionUnavailable when the model itself is unreachable, and
// domain.ErrExtractionFailed when only this input could not be processed.
type Embedder interface {
	Embed(ctx context.Context, clip domain.AudioClip) ([]float64, error)
}

// Decoder is the external decoding collaborator. It returns the leading
// portion of a source as a mono waveform, or an error wrapping
// domain.ErrDecodeFailed.
type Decoder interface {
	// Duration reports the source's total length in seconds.
	Duration(ctx context.Context, sourcePath string) (float64, error)
	// Decode extracts [offset, offset+length) seconds of audio.
	Decode(ctx context.Context, sourcePath string, offsetSeconds, lengthSeconds float64) (domain.AudioClip, error)
}

// FeatureExtractor produces a space-tagged feature vector for a clip.
// usedFallback reports whether the heuristic strategy served this call even
// though the embedding strategy was preferred.
type FeatureExtractor interface {
	Extract(ctx context.Context, sourceID string, clip domain.AudioClip) (vec domain.FeatureVector, usedFallback bool, err error)
	// Degraded reports whether the extractor has permanently downgraded to
	// the heuristic strategy.
	Degraded() bool
}
