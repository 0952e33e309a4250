// Package worker builds the segment library: it fans planned segments out
// to extraction workers and aggregates a per-segment completion report.
package worker

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seren-labs/serenade/internal/core/domain"
	"github.com/seren-labs/serenade/internal/core/ports"
)

// introExtractRatio is the leading fraction of each segment analyzed for
// features, matching the ISO synchrony-first rule: the match stage is
// characterized by how material opens.
const introExtractRatio = 0.25

// defaultMaxPerClass caps how many segments one source contributes to a
// single duration class.
const defaultMaxPerClass = 4

// SegmentResult is one line of the completion report.
type SegmentResult struct {
	SegmentID string       `json:"segment_id"`
	SourceID  string       `json:"source_id"`
	Strategy  domain.Space `json:"strategy,omitempty"`
	OK        bool         `json:"ok"`
	Error     string       `json:"error,omitempty"`
}

// Report summarizes one library build.
type Report struct {
	BuildID    string          `json:"build_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	Results    []SegmentResult `json:"results"`
}

// Builder runs library construction. Each worker writes to a distinct
// segment identity; the store serializes the actual append.
type Builder struct {
	decoder     ports.Decoder
	extractor   ports.FeatureExtractor
	store       ports.FeatureStore
	log         zerolog.Logger
	maxPerClass int
}

// NewBuilder wires the construction pool. maxPerClass < 1 falls back to the
// default cap.
func NewBuilder(decoder ports.Decoder, extractor ports.FeatureExtractor, store ports.FeatureStore, log zerolog.Logger, maxPerClass int) *Builder {
	if maxPerClass < 1 {
		maxPerClass = defaultMaxPerClass
	}
	return &Builder{
		decoder:     decoder,
		extractor:   extractor,
		store:       store,
		log:         log,
		maxPerClass: maxPerClass,
	}
}

type job struct {
	segment domain.Segment
}

// Build plans segments for every source and extracts them with the given
// concurrency. Per-segment failures are aggregated, never fatal for the
// batch; the returned error only reports a canceled context.
func (b *Builder) Build(ctx context.Context, sources []string, workers int) (Report, error) {
	if workers < 1 {
		workers = 1
	}

	report := Report{
		BuildID:   uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	var jobs []job
	for _, src := range sources {
		planned, err := b.plan(ctx, src)
		if err != nil {
			b.log.Warn().Err(err).Str("source", src).Msg("skipping source")
			report.Results = append(report.Results, SegmentResult{
				SourceID: sourceID(src),
				Error:    err.Error(),
			})
			report.Failed++
			continue
		}
		jobs = append(jobs, planned...)
	}

	jobCh := make(chan job)
	resultCh := make(chan SegmentResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				resultCh <- b.process(ctx, j)
			}
		}()
	}
	go func() {
		defer close(jobCh)
		for _, j := range jobs {
			select {
			case jobCh <- j:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		if res.OK {
			report.Succeeded++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}

	report.FinishedAt = time.Now().UTC()
	b.log.Info().
		Str("build", report.BuildID).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("library build finished")

	return report, ctx.Err()
}

// plan derives the segment layout for one source: for every duration class
// the source can fill, a run of segments where only the leading one carries
// the intro ratio.
func (b *Builder) plan(ctx context.Context, sourcePath string) ([]job, error) {
	duration, err := b.decoder.Duration(ctx, sourcePath)
	if err != nil {
		return nil, err
	}

	id := sourceID(sourcePath)
	var jobs []job
	for _, class := range domain.DurationClasses() {
		classSec := class.Seconds()
		n := int(duration / classSec)
		if n > b.maxPerClass {
			n = b.maxPerClass
		}
		for i := 0; i < n; i++ {
			intro := 0.0
			if i == 0 {
				intro = introExtractRatio
			}
			jobs = append(jobs, job{segment: domain.Segment{
				SourceID:      id,
				SourcePath:    sourcePath,
				OffsetSeconds: float64(i) * classSec,
				DurationClass: class,
				IntroRatio:    intro,
			}})
		}
	}
	return jobs, nil
}

// process decodes the leading portion of one segment, extracts its feature
// vector and persists it.
func (b *Builder) process(ctx context.Context, j job) SegmentResult {
	seg := j.segment
	res := SegmentResult{SegmentID: seg.ID(), SourceID: seg.SourceID}

	clip, err := b.decoder.Decode(ctx, seg.SourcePath, seg.OffsetSeconds, seg.DurationClass.Seconds()*introExtractRatio)
	if err != nil {
		b.log.Warn().Err(err).Str("segment", seg.ID()).Msg("decode failed, segment skipped")
		res.Error = err.Error()
		return res
	}

	vec, usedFallback, err := b.extractor.Extract(ctx, seg.ID(), clip)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	seg.Vector = vec

	if err := b.store.Append(ctx, seg); err != nil {
		res.Error = err.Error()
		return res
	}

	res.OK = true
	res.Strategy = vec.Space
	if usedFallback {
		b.log.Debug().Str("segment", seg.ID()).Msg("segment extracted with heuristic fallback")
	}
	return res
}

func sourceID(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
