// Package config loads runtime configuration. Precedence is defaults, then
// an optional YAML file, then SERENADE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SERENADE_"

type Server struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type Store struct {
	Path string `koanf:"path"`
}

// Embedding selects and configures the embedding engine. Engine is "http"
// for the inference sidecar or "onnx" for in-process inference; "none"
// starts the service on the heuristic strategy only.
type Embedding struct {
	Engine     string        `koanf:"engine"`
	BaseURL    string        `koanf:"base_url"`
	Model      string        `koanf:"model"`
	ModelPath  string        `koanf:"model_path"`
	RuntimeLib string        `koanf:"runtime_lib"`
	CacheTTL   time.Duration `koanf:"cache_ttl"`
}

type Matching struct {
	EmbeddingCosineWeight float64 `koanf:"embedding_cosine_weight"`
	HeuristicCosineWeight float64 `koanf:"heuristic_cosine_weight"`
}

type Selection struct {
	TopK                int     `koanf:"top_k"`
	IntroRatioThreshold float64 `koanf:"intro_ratio_threshold"`
	GuideMinutes        []int   `koanf:"guide_minutes"`
	TargetMinutes       []int   `koanf:"target_minutes"`
}

type Build struct {
	Workers             int `koanf:"workers"`
	MaxSegmentsPerClass int `koanf:"max_segments_per_class"`
}

type Config struct {
	Server    Server    `koanf:"server"`
	Store     Store     `koanf:"store"`
	Embedding Embedding `koanf:"embedding"`
	Matching  Matching  `koanf:"matching"`
	Selection Selection `koanf:"selection"`
	Build     Build     `koanf:"build"`
	LogLevel  string    `koanf:"log_level"`
}

func defaults() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: Store{Path: "serenade.db"},
		Embedding: Embedding{
			Engine:   "http",
			BaseURL:  "http://localhost:8191",
			Model:    "clamp3-saas",
			CacheTTL: time.Hour,
		},
		Matching: Matching{
			EmbeddingCosineWeight: 0.8,
			HeuristicCosineWeight: 0.7,
		},
		Selection: Selection{
			TopK:                5,
			IntroRatioThreshold: 0.25,
			GuideMinutes:        []int{3, 5, 10},
			TargetMinutes:       []int{10, 20, 30},
		},
		Build: Build{
			Workers:             2,
			MaxSegmentsPerClass: 4,
		},
		LogLevel: "info",
	}
}

// Load resolves configuration from defaults, the optional YAML file at
// path, and the environment. An empty path skips the file layer; a named
// file that does not exist is an error.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config: config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// SERENADE_SERVER_ADDR maps to server.addr; the first underscore after
	// the prefix splits the section from the key.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if key == "log_level" {
			return key
		}
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Embedding.Engine {
	case "http", "onnx", "none":
	default:
		return fmt.Errorf("config: unknown embedding engine %q", c.Embedding.Engine)
	}
	if c.Selection.TopK < 1 {
		return fmt.Errorf("config: selection.top_k must be at least 1, got %d", c.Selection.TopK)
	}
	if c.Matching.EmbeddingCosineWeight < 0 || c.Matching.EmbeddingCosineWeight > 1 {
		return fmt.Errorf("config: matching.embedding_cosine_weight out of range: %v", c.Matching.EmbeddingCosineWeight)
	}
	if c.Matching.HeuristicCosineWeight < 0 || c.Matching.HeuristicCosineWeight > 1 {
		return fmt.Errorf("config: matching.heuristic_cosine_weight out of range: %v", c.Matching.HeuristicCosineWeight)
	}
	if c.Build.Workers < 1 {
		return fmt.Errorf("config: build.workers must be at least 1, got %d", c.Build.Workers)
	}
	return nil
}
