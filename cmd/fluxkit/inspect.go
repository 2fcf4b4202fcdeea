package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxkit/fluxkit/persist"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Pretty-print a persisted record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			rec, err := persist.DecodeRecord(string(raw))
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			pretty, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
			return nil
		},
	}
}
