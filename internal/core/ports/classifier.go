package ports

import "github.com/seren-labs/serenade/internal/core/domain"

// EmotionClassifier maps free-form text to a point in the emotion space.
// Implementations must be deterministic: identical input yields identical
// output, with ties broken by category priority order.
type EmotionClassifier interface {
	Detect(text string) (domain.EmotionVector, error)
}
