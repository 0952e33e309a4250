// Package lexicon implements emotion detection over a fixed keyword
// lexicon. It is deliberately model-free: deterministic, dependency-free
// and fast enough to run on every query.
package lexicon

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/seren-labs/serenade/internal/core/domain"
)

const (
	wholeMatchScore = 2.0
	partialScore    = 1.0

	baseConfidence = 0.85
	confidenceStep = 0.03
	maxConfidence  = 0.95
	// floorConfidence is reported when nothing in the lexicon matched and
	// the default category is returned.
	floorConfidence = 0.25
)

// defaultCategory answers inputs with no lexical match at all. Nervousness
// is the anxiety-class default of the observed system.
const defaultCategory = domain.Nervousness

// Classifier is the lexicon-backed emotion classifier. Construct it once at
// process start and share it by reference; it holds no mutable state.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Detect maps text to the 27-dimensional emotion space. Empty or
// whitespace-only input is rejected with domain.ErrInvalidInput rather than
// defaulting to an arbitrary emotion.
func (c *Classifier) Detect(text string) (domain.EmotionVector, error) {
	cleaned := cleanInput(text)
	if cleaned == "" {
		return domain.EmotionVector{}, fmt.Errorf("lexicon: empty query text: %w", domain.ErrInvalidInput)
	}
	padded := " " + cleaned + " "

	var ev domain.EmotionVector
	topScore := 0.0
	top := defaultCategory
	found := false

	// Categories are walked in priority order, so an earlier category wins
	// score ties deterministically.
	for _, cat := range domain.Categories() {
		score := 0.0
		for _, kw := range keywords[cat] {
			if strings.Contains(padded, " "+kw+" ") {
				score += wholeMatchScore
			} else if strings.Contains(cleaned, kw) {
				score += partialScore
			}
		}
		ev.Weights[cat] = score
		if score > topScore {
			topScore = score
			top = cat
			found = true
		}
	}

	ev.Top = top
	if found {
		ev.Confidence = baseConfidence + confidenceStep*topScore
		if ev.Confidence > maxConfidence {
			ev.Confidence = maxConfidence
		}
	} else {
		ev.Weights[defaultCategory] = partialScore
		ev.Confidence = floorConfidence
	}
	return ev, nil
}

// cleanInput lowercases and strips everything but letters, digits and
// spaces, collapsing runs of whitespace.
func cleanInput(text string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
		// Punctuation is dropped entirely, so "can't" matches "cant".
	}
	return strings.TrimSpace(b.String())
}
