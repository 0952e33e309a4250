// Package clamp provides an adapter for a CLAMP3-style embedding inference
// sidecar. The model itself is opaque: the client posts a decoded waveform
// and receives a high-dimensional vector, or a typed failure.
package clamp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/seren-labs/serenade/internal/core/domain"
)

const (
	defaultBaseURL = "http://localhost:8191"
	defaultModel   = "clamp3-saas"
)

// Client talks to the embedding sidecar over its JSON API.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type embedRequest struct {
	Model      string `json:"model"`
	SampleRate int    `json:"sample_rate"`
	// PCM is the mono waveform as base64 little-endian float32.
	PCM string `json:"pcm"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

func NewClient(baseURL, model string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Embed sends the clip to the sidecar. Connection-level failures and a
// missing model mean the strategy is unavailable; per-input server errors
// mean only this input failed.
func (c *Client) Embed(ctx context.Context, clip domain.AudioClip) ([]float64, error) {
	payload := embedRequest{
		Model:      c.model,
		SampleRate: clip.SampleRate,
		PCM:        encodePCM(clip.Samples),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("clamp: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("clamp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("clamp: request canceled: %w", err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) || isConnectionError(err) {
			return nil, fmt.Errorf("clamp: sidecar unreachable: %w: %v", domain.ErrExtractionUnavailable, err)
		}
		return nil, fmt.Errorf("clamp: request failed: %w: %v", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Model not loaded on the sidecar: nothing input-specific about it.
		return nil, fmt.Errorf("clamp: model %q not available: %w", c.model, domain.ErrExtractionUnavailable)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("clamp: unexpected status %d: %w", resp.StatusCode, domain.ErrExtractionFailed)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("clamp: decode response: %w: %v", domain.ErrExtractionFailed, err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("clamp: %s: %w", parsed.Error, domain.ErrExtractionFailed)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("clamp: empty embedding: %w", domain.ErrExtractionFailed)
	}

	return parsed.Embedding, nil
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host")
}

func encodePCM(samples []float64) string {
	buf := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(s)))
	}
	return base64.StdEncoding.EncodeToString(buf)
}
