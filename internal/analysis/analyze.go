// Package analysis computes statistical audio descriptors directly from a
// decoded waveform. It backs the heuristic extraction strategy, which must
// always succeed on valid audio and never depends on an external model.
package analysis

import (
	"errors"
	"math"
)

// Features are the raw signal statistics for one clip.
type Features struct {
	DurationSeconds  float64
	RMSEnergy        float64
	ZeroCrossingRate float64
	DynamicRange     float64
	SpectralCentroid float64 // Hz
	SpectralFlatness float64
	Brightness       float64 // energy ratio above 1 kHz
	Warmth           float64 // energy ratio below 500 Hz
	TempoEstimate    float64 // BPM, onset-interval based, capped at 200
	RhythmRegularity float64
	OnsetDensity     float64 // onsets per second
}

var ErrEmptyClip = errors.New("analysis: empty clip")

const (
	frameSeconds = 0.025
	hopSeconds   = 0.010
	maxTempoBPM  = 200.0
)

// Analyze computes the full descriptor set for a mono waveform.
func Analyze(samples []float64, sampleRate int) (Features, error) {
	if len(samples) == 0 || sampleRate <= 0 {
		return Features{}, ErrEmptyClip
	}

	f := Features{
		DurationSeconds: float64(len(samples)) / float64(sampleRate),
	}

	var sumSquares, minV, maxV float64
	minV, maxV = samples[0], samples[0]
	crossings := 0
	for i, s := range samples {
		sumSquares += s * s
		if s < minV {
			minV = s
		}
		if s > maxV {
			maxV = s
		}
		if i > 0 && (s >= 0) != (samples[i-1] >= 0) {
			crossings++
		}
	}
	f.RMSEnergy = math.Sqrt(sumSquares / float64(len(samples)))
	f.ZeroCrossingRate = float64(crossings) / float64(len(samples))
	f.DynamicRange = maxV - minV

	analyzeSpectrum(&f, samples, sampleRate)
	analyzeOnsets(&f, samples, sampleRate)

	return f, nil
}

func analyzeSpectrum(f *Features, samples []float64, sampleRate int) {
	mag := Spectrum(samples)
	if len(mag) == 0 {
		return
	}
	binHz := float64(sampleRate) / float64(2*len(mag))

	var total, weighted, logSum float64
	for i, m := range mag {
		total += m
		weighted += float64(i) * binHz * m
		logSum += math.Log(m + 1e-10)
	}
	if total <= 0 {
		return
	}
	f.SpectralCentroid = weighted / total
	f.SpectralFlatness = math.Exp(logSum/float64(len(mag))) / (total / float64(len(mag)))

	var energy, high, low float64
	highStart := int(1000 / binHz)
	lowEnd := int(500 / binHz)
	for i, m := range mag {
		e := m * m
		energy += e
		if i >= highStart {
			high += e
		}
		if i < lowEnd {
			low += e
		}
	}
	if energy > 0 {
		f.Brightness = high / energy
		f.Warmth = low / energy
	}
}

// analyzeOnsets estimates tempo from the spacing of energy peaks across
// short frames, the way a coarse onset detector would.
func analyzeOnsets(f *Features, samples []float64, sampleRate int) {
	frameLen := int(frameSeconds * float64(sampleRate))
	hopLen := int(hopSeconds * float64(sampleRate))
	if frameLen < 1 || hopLen < 1 || len(samples) <= frameLen {
		return
	}

	var energies []float64
	for i := 0; i+frameLen <= len(samples); i += hopLen {
		var e float64
		for _, s := range samples[i : i+frameLen] {
			e += s * s
		}
		energies = append(energies, e)
	}
	if len(energies) < 2 {
		return
	}

	diffs := make([]float64, len(energies)-1)
	var mean float64
	for i := 1; i < len(energies); i++ {
		diffs[i-1] = math.Abs(energies[i] - energies[i-1])
		mean += diffs[i-1]
	}
	mean /= float64(len(diffs))
	var variance float64
	for _, d := range diffs {
		variance += (d - mean) * (d - mean)
	}
	threshold := mean + math.Sqrt(variance/float64(len(diffs)))

	var onsets []int
	for i, d := range diffs {
		if d > threshold {
			onsets = append(onsets, i)
		}
	}
	f.OnsetDensity = float64(len(onsets)) / f.DurationSeconds

	if len(onsets) < 2 {
		return
	}
	intervals := make([]float64, len(onsets)-1)
	for i := 1; i < len(onsets); i++ {
		intervals[i-1] = float64(onsets[i]-onsets[i-1]) * float64(hopLen) / float64(sampleRate)
	}
	med := median(intervals)
	if med > 0 {
		f.TempoEstimate = math.Min(60.0/med, maxTempoBPM)
	}
	var im, iv float64
	for _, x := range intervals {
		im += x
	}
	im /= float64(len(intervals))
	for _, x := range intervals {
		iv += (x - im) * (x - im)
	}
	f.RhythmRegularity = 1.0 / (1.0 + math.Sqrt(iv/float64(len(intervals))))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// HeuristicVector packs the descriptor set into the fixed heuristic vector
// layout, each component clamped to [0,1].
func (f Features) HeuristicVector() []float64 {
	clamp := func(v float64) float64 {
		return math.Max(0, math.Min(v, 1))
	}
	return []float64{
		clamp(f.TempoEstimate / maxTempoBPM),
		clamp(f.RMSEnergy * 10),
		clamp(f.Brightness),
		clamp(f.Warmth),
		clamp(f.RhythmRegularity),
		clamp(f.SpectralCentroid / 8000),
		clamp(f.DynamicRange / 2),
	}
}
