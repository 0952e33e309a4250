package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seren-labs/serenade/internal/adapters/ffmpeg"
	"github.com/seren-labs/serenade/internal/adapters/sqlite"
	"github.com/seren-labs/serenade/internal/core/services"
	"github.com/seren-labs/serenade/internal/worker"
)

// audioExtensions lists the source containers the build walks over.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".m4a":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".webm": true,
}

func buildCmd() *cobra.Command {
	var (
		reportPath string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "build <media-dir>",
		Short: "Build the segment library from a directory of audio sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			sources, err := collectSources(args[0])
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return fmt.Errorf("no audio sources found under %s", args[0])
			}

			store, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			extractor := services.NewExtractor(newEmbedder(cfg.Embedding, log), log, cfg.Embedding.CacheTTL)
			builder := worker.NewBuilder(ffmpeg.NewDecoder(), extractor, store, log, cfg.Build.MaxSegmentsPerClass)

			if workers < 1 {
				workers = cfg.Build.Workers
			}
			report, err := builder.Build(cmd.Context(), sources, workers)
			if err != nil {
				return err
			}

			if reportPath != "" {
				if err := writeReport(reportPath, report); err != nil {
					return err
				}
			}

			fmt.Printf("build %s: %d segments extracted, %d failed\n",
				report.BuildID, report.Succeeded, report.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&reportPath, "report", "", "write the JSON completion report to this file")
	cmd.Flags().IntVar(&workers, "workers", 0, "extraction concurrency (defaults to build.workers)")
	return cmd
}

func collectSources(root string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if audioExtensions[strings.ToLower(filepath.Ext(path))] {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(sources)
	return sources, nil
}

func writeReport(path string, report worker.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
