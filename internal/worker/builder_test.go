package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/seren-labs/serenade/internal/core/domain"
)

// stubDecoder serves fixed durations and synthetic clips.
type stubDecoder struct {
	durations     map[string]float64
	failOffsets   bool
	decodeFailAll bool
}

func (d *stubDecoder) Duration(ctx context.Context, path string) (float64, error) {
	dur, ok := d.durations[path]
	if !ok {
		return 0, fmt.Errorf("probe %s: %w", path, domain.ErrDecodeFailed)
	}
	return dur, nil
}

func (d *stubDecoder) Decode(ctx context.Context, path string, offsetSeconds, lengthSeconds float64) (domain.AudioClip, error) {
	if d.decodeFailAll || (d.failOffsets && offsetSeconds > 0) {
		return domain.AudioClip{}, fmt.Errorf("decode %s at %v: %w", path, offsetSeconds, domain.ErrDecodeFailed)
	}
	return domain.AudioClip{Samples: make([]float64, 128), SampleRate: 22050}, nil
}

// stubExtractor tags every clip with the same heuristic vector.
type stubExtractor struct{}

func (s *stubExtractor) Extract(ctx context.Context, sourceID string, clip domain.AudioClip) (domain.FeatureVector, bool, error) {
	return domain.FeatureVector{
		Space:  domain.SpaceHeuristic,
		Values: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7},
	}, true, nil
}

func (s *stubExtractor) Degraded() bool { return true }

// memStore collects appended segments behind a mutex; workers write
// concurrently.
type memStore struct {
	mu       sync.Mutex
	segments []domain.Segment
}

func (m *memStore) Append(ctx context.Context, seg domain.Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments = append(m.segments, seg)
	return nil
}

func (m *memStore) All(ctx context.Context) ([]domain.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Segment(nil), m.segments...), nil
}

func (m *memStore) CountsByDurationClass(ctx context.Context) (map[domain.DurationClass]int, error) {
	return nil, nil
}

func (m *memStore) Close() error { return nil }

func TestBuildPlansAndExtractsSegments(t *testing.T) {
	// 400 seconds fits 6x1min (capped at 4), 2x3min and 1x5min.
	decoder := &stubDecoder{durations: map[string]float64{"/media/rain.mp3": 400}}
	store := &memStore{}
	b := NewBuilder(decoder, &stubExtractor{}, store, zerolog.Nop(), 0)

	report, err := b.Build(context.Background(), []string{"/media/rain.mp3"}, 3)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if report.BuildID == "" {
		t.Error("report carries no build id")
	}
	if report.Succeeded != 7 || report.Failed != 0 {
		t.Fatalf("report = %d succeeded, %d failed; want 7/0", report.Succeeded, report.Failed)
	}
	if len(store.segments) != 7 {
		t.Fatalf("store holds %d segments, want 7", len(store.segments))
	}

	intros := 0
	for _, seg := range store.segments {
		if seg.SourceID != "rain" {
			t.Errorf("segment %s has source id %q, want %q", seg.ID(), seg.SourceID, "rain")
		}
		if seg.Vector.Space != domain.SpaceHeuristic {
			t.Errorf("segment %s carries no strategy tag", seg.ID())
		}
		switch {
		case seg.OffsetSeconds == 0 && seg.IntroRatio != 0.25:
			t.Errorf("leading segment %s has intro ratio %v, want 0.25", seg.ID(), seg.IntroRatio)
		case seg.OffsetSeconds > 0 && seg.IntroRatio != 0:
			t.Errorf("non-leading segment %s has intro ratio %v, want 0", seg.ID(), seg.IntroRatio)
		}
		if seg.IntroRatio > 0 {
			intros++
		}
	}
	// One leading segment per populated duration class.
	if intros != 3 {
		t.Errorf("library holds %d intro segments, want 3", intros)
	}
}

func TestBuildSkipsUnreadableSources(t *testing.T) {
	decoder := &stubDecoder{durations: map[string]float64{"/media/rain.mp3": 120}}
	store := &memStore{}
	b := NewBuilder(decoder, &stubExtractor{}, store, zerolog.Nop(), 0)

	report, err := b.Build(context.Background(), []string{"/media/rain.mp3", "/media/missing.mp3"}, 2)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	// 120 seconds yields 2x1min; the unreadable source fails as one entry.
	if report.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", report.Succeeded)
	}
	if report.Failed != 1 {
		t.Errorf("failed = %d, want 1", report.Failed)
	}
	if len(store.segments) != 2 {
		t.Errorf("store holds %d segments, want 2", len(store.segments))
	}
}

func TestBuildRecordsDecodeFailuresPerSegment(t *testing.T) {
	decoder := &stubDecoder{
		durations:   map[string]float64{"/media/rain.mp3": 400},
		failOffsets: true,
	}
	store := &memStore{}
	b := NewBuilder(decoder, &stubExtractor{}, store, zerolog.Nop(), 0)

	report, err := b.Build(context.Background(), []string{"/media/rain.mp3"}, 2)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	// Only the leading segment of each populated class decodes.
	if report.Succeeded != 3 {
		t.Errorf("succeeded = %d, want 3", report.Succeeded)
	}
	if report.Failed != 4 {
		t.Errorf("failed = %d, want 4", report.Failed)
	}
	for _, res := range report.Results {
		if !res.OK && res.Error == "" {
			t.Errorf("failed segment %s carries no error detail", res.SegmentID)
		}
	}
}
