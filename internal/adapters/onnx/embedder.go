// Package onnx runs the embedding model in-process through ONNX Runtime,
// for deployments without an inference sidecar. The model graph takes the
// mono waveform as a [1, n] float32 tensor and yields one pooled embedding.
package onnx

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/seren-labs/serenade/internal/core/domain"
)

const (
	inputName  = "audio"
	outputName = "embedding"
)

// Embedder owns one ONNX Runtime session. Run is serialized: extraction
// workers share the session, and the runtime binding is not re-entrant for
// our pre-allocated output slot.
type Embedder struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
}

// NewEmbedder initializes the ONNX environment and loads the model. All
// failure modes here mean the embedding strategy is unavailable, so every
// error wraps domain.ErrExtractionUnavailable.
func NewEmbedder(modelPath, sharedLibraryPath string) (*Embedder, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("onnx: model %s: %w: %v", modelPath, domain.ErrExtractionUnavailable, err)
	}

	if sharedLibraryPath != "" {
		ort.SetSharedLibraryPath(sharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("onnx: initialize environment: %w: %v", domain.ErrExtractionUnavailable, err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: session options: %w: %v", domain.ErrExtractionUnavailable, err)
	}
	defer opts.Destroy()
	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, fmt.Errorf("onnx: graph optimization: %w: %v", domain.ErrExtractionUnavailable, err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputName},
		[]string{outputName},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: create session: %w: %v", domain.ErrExtractionUnavailable, err)
	}

	return &Embedder{session: session}, nil
}

// Embed runs one clip through the model and returns the pooled vector.
func (e *Embedder) Embed(ctx context.Context, clip domain.AudioClip) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(clip.Samples) == 0 {
		return nil, fmt.Errorf("onnx: empty clip: %w", domain.ErrExtractionFailed)
	}

	pcm := make([]float32, len(clip.Samples))
	for i, s := range clip.Samples {
		pcm[i] = float32(s)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(pcm))), pcm)
	if err != nil {
		return nil, fmt.Errorf("onnx: input tensor: %w: %v", domain.ErrExtractionFailed, err)
	}
	defer input.Destroy()

	outputs := make([]ort.Value, 1)

	e.mu.Lock()
	err = e.session.Run([]ort.Value{input}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("onnx: inference: %w: %v", domain.ErrExtractionFailed, err)
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("onnx: output tensor is not float32: %w", domain.ErrExtractionFailed)
	}

	data := tensor.GetData()
	if len(data) == 0 {
		return nil, fmt.Errorf("onnx: empty embedding: %w", domain.ErrExtractionFailed)
	}
	// Copy before the tensor is destroyed.
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out, nil
}

// Close releases the session and the runtime environment.
func (e *Embedder) Close() error {
	if e.session != nil {
		e.session.Destroy()
	}
	ort.DestroyEnvironment()
	return nil
}
