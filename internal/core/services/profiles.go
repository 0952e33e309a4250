package services

import "github.com/seren-labs/serenade/internal/core/domain"

// Each emotion category maps onto one of five musical archetypes, and every
// archetype carries a descriptor profile per ISO stage: the match profile
// mirrors the affect's arousal, the guide profile sits in between, and the
// target profile describes the calm end state. Target intensity never
// exceeds guide intensity, which never exceeds match intensity.

type archetype int

const (
	archAnxious archetype = iota
	archWeary
	archAgitated
	archPressured
	archCalm
)

var categoryArchetypes = map[domain.Category]archetype{
	domain.Fear:        archAnxious,
	domain.Nervousness: archAnxious,
	domain.Surprise:    archAnxious,

	domain.Sadness:        archWeary,
	domain.Grief:          archWeary,
	domain.Disappointment: archWeary,
	domain.Remorse:        archWeary,

	domain.Anger:       archAgitated,
	domain.Annoyance:   archAgitated,
	domain.Disgust:     archAgitated,
	domain.Disapproval: archAgitated,

	domain.Embarrassment: archPressured,
	domain.Confusion:     archPressured,
	domain.Desire:        archPressured,
	domain.Excitement:    archPressured,

	domain.Admiration:  archCalm,
	domain.Amusement:   archCalm,
	domain.Approval:    archCalm,
	domain.Caring:      archCalm,
	domain.Curiosity:   archCalm,
	domain.Gratitude:   archCalm,
	domain.Joy:         archCalm,
	domain.Love:        archCalm,
	domain.Optimism:    archCalm,
	domain.Pride:       archCalm,
	domain.Realization: archCalm,
	domain.Relief:      archCalm,
}

var stageProfiles = map[archetype]map[domain.Stage]domain.Descriptors{
	archAnxious: {
		domain.StageMatch:  {Tempo: 0.55, Tonality: 0.25, Dynamics: 0.70, Intensity: 0.70, Complexity: 0.75, Texture: 0.80},
		domain.StageGuide:  {Tempo: 0.40, Tonality: 0.40, Dynamics: 0.45, Intensity: 0.50, Complexity: 0.55, Texture: 0.50},
		domain.StageTarget: {Tempo: 0.20, Tonality: 0.70, Dynamics: 0.20, Intensity: 0.25, Complexity: 0.30, Texture: 0.15},
	},
	archWeary: {
		domain.StageMatch:  {Tempo: 0.25, Tonality: 0.25, Dynamics: 0.60, Intensity: 0.55, Complexity: 0.60, Texture: 0.70},
		domain.StageGuide:  {Tempo: 0.30, Tonality: 0.50, Dynamics: 0.35, Intensity: 0.45, Complexity: 0.50, Texture: 0.40},
		domain.StageTarget: {Tempo: 0.15, Tonality: 0.75, Dynamics: 0.25, Intensity: 0.20, Complexity: 0.25, Texture: 0.20},
	},
	archAgitated: {
		domain.StageMatch:  {Tempo: 0.80, Tonality: 0.20, Dynamics: 0.80, Intensity: 0.75, Complexity: 0.85, Texture: 0.65},
		domain.StageGuide:  {Tempo: 0.45, Tonality: 0.45, Dynamics: 0.50, Intensity: 0.55, Complexity: 0.55, Texture: 0.40},
		domain.StageTarget: {Tempo: 0.35, Tonality: 0.70, Dynamics: 0.20, Intensity: 0.25, Complexity: 0.30, Texture: 0.25},
	},
	archPressured: {
		domain.StageMatch:  {Tempo: 0.75, Tonality: 0.20, Dynamics: 0.75, Intensity: 0.80, Complexity: 0.70, Texture: 0.75},
		domain.StageGuide:  {Tempo: 0.40, Tonality: 0.50, Dynamics: 0.50, Intensity: 0.50, Complexity: 0.50, Texture: 0.50},
		domain.StageTarget: {Tempo: 0.15, Tonality: 0.70, Dynamics: 0.25, Intensity: 0.20, Complexity: 0.25, Texture: 0.15},
	},
	archCalm: {
		domain.StageMatch:  {Tempo: 0.40, Tonality: 0.55, Dynamics: 0.30, Intensity: 0.35, Complexity: 0.45, Texture: 0.40},
		domain.StageGuide:  {Tempo: 0.30, Tonality: 0.60, Dynamics: 0.25, Intensity: 0.30, Complexity: 0.35, Texture: 0.30},
		domain.StageTarget: {Tempo: 0.10, Tonality: 0.75, Dynamics: 0.10, Intensity: 0.15, Complexity: 0.20, Texture: 0.10},
	},
}

// stageProfile returns the descriptor profile for one category and stage.
func stageProfile(cat domain.Category, stage domain.Stage) domain.Descriptors {
	arch, ok := categoryArchetypes[cat]
	if !ok {
		arch = archAnxious
	}
	return stageProfiles[arch][stage]
}
