package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fluxkit/fluxkit/persist"
)

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge <file>",
		Short: "Remove a persisted record from disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Dir(args[0])
			key := strings.TrimSuffix(filepath.Base(args[0]), ".json")

			storage, err := persist.NewFileStorage(dir)
			if err != nil {
				return fmt.Errorf("open storage dir %s: %w", dir, err)
			}
			defer storage.Close()

			if err := storage.RemoveItem(key); err != nil {
				return fmt.Errorf("purge %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: purged\n", args[0])
			return nil
		},
	}
}
