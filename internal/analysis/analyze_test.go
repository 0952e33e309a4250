package analysis

import (
	"errors"
	"math"
	"testing"
)

func sine(freq float64, amp float64, seconds float64, rate int) []float64 {
	samples := make([]float64, int(seconds*float64(rate)))
	for i := range samples {
		samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return samples
}

func TestAnalyzeRejectsEmptyInput(t *testing.T) {
	if _, err := Analyze(nil, 22050); !errors.Is(err, ErrEmptyClip) {
		t.Errorf("nil samples error = %v, want ErrEmptyClip", err)
	}
	if _, err := Analyze([]float64{0.1}, 0); !errors.Is(err, ErrEmptyClip) {
		t.Errorf("zero rate error = %v, want ErrEmptyClip", err)
	}
}

func TestAnalyzePureTone(t *testing.T) {
	const rate = 22050
	f, err := Analyze(sine(440, 0.5, 1.0, rate), rate)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if math.Abs(f.DurationSeconds-1.0) > 0.01 {
		t.Errorf("duration = %v, want ~1.0", f.DurationSeconds)
	}
	// RMS of a sine is amplitude/sqrt(2).
	if want := 0.5 / math.Sqrt2; math.Abs(f.RMSEnergy-want) > 0.01 {
		t.Errorf("rms = %v, want ~%v", f.RMSEnergy, want)
	}
	// A 440 Hz tone crosses zero about 880 times per second.
	if want := 2 * 440.0 / rate; math.Abs(f.ZeroCrossingRate-want) > 0.005 {
		t.Errorf("zcr = %v, want ~%v", f.ZeroCrossingRate, want)
	}
	// All energy sits below 1 kHz.
	if f.Brightness > 0.05 {
		t.Errorf("brightness = %v, want near 0 for a 440 Hz tone", f.Brightness)
	}
	if f.Warmth < 0.9 {
		t.Errorf("warmth = %v, want near 1 for a 440 Hz tone", f.Warmth)
	}
	if math.Abs(f.DynamicRange-1.0) > 0.02 {
		t.Errorf("dynamic range = %v, want ~1.0", f.DynamicRange)
	}
}

func TestSpectralCentroidTracksPitch(t *testing.T) {
	const rate = 22050
	low, err := Analyze(sine(220, 0.5, 1.0, rate), rate)
	if err != nil {
		t.Fatalf("Analyze low tone: %v", err)
	}
	high, err := Analyze(sine(4000, 0.5, 1.0, rate), rate)
	if err != nil {
		t.Fatalf("Analyze high tone: %v", err)
	}
	if low.SpectralCentroid >= high.SpectralCentroid {
		t.Errorf("centroid low %v >= high %v, want it to track pitch", low.SpectralCentroid, high.SpectralCentroid)
	}
	if low.Brightness >= high.Brightness {
		t.Errorf("brightness low %v >= high %v, want it to track pitch", low.Brightness, high.Brightness)
	}
}

func TestAnalyzeSilence(t *testing.T) {
	f, err := Analyze(make([]float64, 22050), 22050)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if f.RMSEnergy != 0 {
		t.Errorf("silent rms = %v, want 0", f.RMSEnergy)
	}
	if f.DynamicRange != 0 {
		t.Errorf("silent dynamic range = %v, want 0", f.DynamicRange)
	}
}

func TestHeuristicVectorShape(t *testing.T) {
	const rate = 22050
	f, err := Analyze(sine(880, 0.8, 0.5, rate), rate)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	vec := f.HeuristicVector()
	if len(vec) != 7 {
		t.Fatalf("vector length = %d, want 7", len(vec))
	}
	for i, v := range vec {
		if v < 0 || v > 1 {
			t.Errorf("component %d = %v, want within [0,1]", i, v)
		}
	}
}

func TestSpectrumPeaksAtToneFrequency(t *testing.T) {
	const rate = 22050
	mag := Spectrum(sine(1000, 0.5, 1.0, rate))
	if len(mag) == 0 {
		t.Fatal("empty spectrum")
	}

	peak := 0
	for i, m := range mag {
		if m > mag[peak] {
			peak = i
		}
	}
	binHz := float64(rate) / float64(2*len(mag))
	peakHz := float64(peak) * binHz
	if math.Abs(peakHz-1000) > 2*binHz {
		t.Errorf("spectral peak at %v Hz, want near 1000", peakHz)
	}
}
