package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seren-labs/serenade/internal/adapters/clamp"
	"github.com/seren-labs/serenade/internal/adapters/lexicon"
	"github.com/seren-labs/serenade/internal/adapters/onnx"
	"github.com/seren-labs/serenade/internal/adapters/rest"
	"github.com/seren-labs/serenade/internal/adapters/sqlite"
	"github.com/seren-labs/serenade/internal/config"
	"github.com/seren-labs/serenade/internal/core/domain"
	"github.com/seren-labs/serenade/internal/core/ports"
	"github.com/seren-labs/serenade/internal/core/services"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the recommendation API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	store, err := sqlite.NewStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	extractor := services.NewExtractor(newEmbedder(cfg.Embedding, log), log, cfg.Embedding.CacheTTL)

	matcher := services.NewMatcher(cfg.Matching.EmbeddingCosineWeight, cfg.Matching.HeuristicCosineWeight)
	selector := services.NewSelector(selectorConfig(cfg.Selection))
	sequencer := services.NewSequencer(selector)

	svc := services.NewOrchestrator(
		lexicon.NewClassifier(),
		store,
		extractor,
		matcher,
		selector,
		sequencer,
		cfg.Selection.TopK,
		log,
	)
	if err := svc.Reload(ctx); err != nil {
		return err
	}

	handler := rest.NewHandler(svc, log)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	log.Info().Str("addr", cfg.Server.Addr).Msg("serenade API listening")

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newEmbedder constructs the configured embedding engine. Construction
// failures are not fatal: the extractor starts degraded on the heuristic
// strategy when nil is returned.
func newEmbedder(cfg config.Embedding, log zerolog.Logger) ports.Embedder {
	switch cfg.Engine {
	case "http":
		return clamp.NewClient(cfg.BaseURL, cfg.Model)
	case "onnx":
		embedder, err := onnx.NewEmbedder(cfg.ModelPath, cfg.RuntimeLib)
		if err != nil {
			log.Warn().Err(err).Msg("embedding model unavailable, starting on heuristic strategy")
			return nil
		}
		return embedder
	default:
		return nil
	}
}

func selectorConfig(cfg config.Selection) services.SelectorConfig {
	return services.SelectorConfig{
		IntroRatioThreshold: cfg.IntroRatioThreshold,
		GuideClasses:        toClasses(cfg.GuideMinutes),
		TargetClasses:       toClasses(cfg.TargetMinutes),
	}
}

func toClasses(minutes []int) []domain.DurationClass {
	out := make([]domain.DurationClass, 0, len(minutes))
	for _, m := range minutes {
		out = append(out, domain.DurationClass(m))
	}
	return out
}
