package domain

// Category is one of the 27 recognized emotion categories. The ordinal
// order doubles as the tie-break priority when two categories score
// identically, so detection stays reproducible for identical input.
type Category int

const (
	Admiration Category = iota
	Amusement
	Anger
	Annoyance
	Approval
	Caring
	Confusion
	Curiosity
	Desire
	Disappointment
	Disapproval
	Disgust
	Embarrassment
	Excitement
	Fear
	Gratitude
	Grief
	Joy
	Love
	Nervousness
	Optimism
	Pride
	Realization
	Relief
	Remorse
	Sadness
	Surprise

	// NumCategories is the fixed dimensionality of the emotion space.
	NumCategories = 27
)

var categoryNames = [NumCategories]string{
	"admiration", "amusement", "anger", "annoyance", "approval", "caring",
	"confusion", "curiosity", "desire", "disappointment", "disapproval",
	"disgust", "embarrassment", "excitement", "fear", "gratitude", "grief",
	"joy", "love", "nervousness", "optimism", "pride", "realization",
	"relief", "remorse", "sadness", "surprise",
}

func (c Category) String() string {
	if c < 0 || c >= NumCategories {
		return "unknown"
	}
	return categoryNames[c]
}

// Categories returns every category in priority order.
func Categories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// EmotionVector is the result of classifying one query text: a point in the
// 27-dimensional emotion space plus the dominant category and a confidence.
// Weights are non-negative and need not sum to 1. The value is created per
// query and never persisted.
type EmotionVector struct {
	Weights    [NumCategories]float64
	Top        Category
	Confidence float64
}
