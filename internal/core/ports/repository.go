package ports

import (
	"context"

	"github.com/seren-labs/serenade/internal/core/domain"
)

// FeatureStore is the persistent mapping from segment identity to feature
// vector and metadata. It is append-only during library construction and
// read-only during retrieval; the store serializes its own append path so
// no two writers ever race on one segment identity.
type FeatureStore interface {
	Append(ctx context.Context, seg domain.Segment) error
	All(ctx context.Context) ([]domain.Segment, error)
	CountsByDurationClass(ctx context.Context) (map[domain.DurationClass]int, error)
	Close() error
}
