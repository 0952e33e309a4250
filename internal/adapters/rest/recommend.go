package rest

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/seren-labs/serenade/internal/core/domain"
)

type recommendRequest struct {
	Text string `json:"text"`
	K    int    `json:"k,omitempty"`
	// Seed makes the randomized top-K pick reproducible when set.
	Seed *int64 `json:"seed,omitempty"`
}

type segmentResponse struct {
	ID            string  `json:"id"`
	SourceID      string  `json:"source_id"`
	SourcePath    string  `json:"source_path"`
	OffsetSeconds float64 `json:"offset_seconds"`
	DurationClass string  `json:"duration_class"`
	IntroRatio    float64 `json:"intro_ratio"`
	Strategy      string  `json:"strategy"`
}

type sequenceResponse struct {
	Match               segmentResponse `json:"match"`
	Guide               segmentResponse `json:"guide"`
	Target              segmentResponse `json:"target"`
	CrossSourceFallback bool            `json:"cross_source_fallback"`
}

type recommendResponse struct {
	Emotion              string           `json:"emotion"`
	Confidence           float64          `json:"confidence"`
	Segment              segmentResponse  `json:"segment"`
	Score                float64          `json:"score"`
	Sequence             sequenceResponse `json:"sequence"`
	UsedFallbackStrategy bool             `json:"used_fallback_strategy"`
}

// Recommend handles POST /api/v1/recommendations
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, fmt.Errorf("rest: decode request body: %w", domain.ErrInvalidInput))
		return
	}

	var rng *rand.Rand
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed))
	}

	rec, err := h.svc.Recommend(r.Context(), req.Text, req.K, rng)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, recommendResponse{
		Emotion:    rec.Emotion.Top.String(),
		Confidence: rec.Emotion.Confidence,
		Segment:    toSegmentResponse(rec.Segment),
		Score:      rec.Score,
		Sequence: sequenceResponse{
			Match:               toSegmentResponse(rec.Sequence.Match),
			Guide:               toSegmentResponse(rec.Sequence.Guide),
			Target:              toSegmentResponse(rec.Sequence.Target),
			CrossSourceFallback: rec.Sequence.CrossSourceFallback,
		},
		UsedFallbackStrategy: rec.UsedFallbackStrategy,
	})
}

func toSegmentResponse(seg domain.Segment) segmentResponse {
	return segmentResponse{
		ID:            seg.ID(),
		SourceID:      seg.SourceID,
		SourcePath:    seg.SourcePath,
		OffsetSeconds: seg.OffsetSeconds,
		DurationClass: seg.DurationClass.String(),
		IntroRatio:    seg.IntroRatio,
		Strategy:      string(seg.Vector.Space),
	}
}
