package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seren-labs/serenade/internal/adapters/sqlite"
	"github.com/seren-labs/serenade/internal/core/domain"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show segment counts in the local library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			counts, err := store.CountsByDurationClass(cmd.Context())
			if err != nil {
				return err
			}

			var total int
			for _, class := range domain.DurationClasses() {
				n := counts[class]
				total += n
				fmt.Printf("%-6s %d\n", class, n)
			}
			fmt.Printf("total  %d\n", total)
			return nil
		},
	}
}
