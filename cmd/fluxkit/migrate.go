package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxkit/fluxkit/persist"
)

func newMigrateCmd() *cobra.Command {
	var to int

	cmd := &cobra.Command{
		Use:   "migrate <file>",
		Short: "Rewrite a persisted record's version, walking persist.Migrate",
		Long: `Rewrites the on-disk {version, state} envelope to --to.

This CLI is content-agnostic: it has no access to an application's real
migration step functions (those are func(state any) (any, error) values
supplied when a persist.Config is constructed, which can't travel over a
command-line flag). It walks persist.Migrate with an identity chain, so
it is only correct for version bumps where the stored shape genuinely
didn't change; a real schema change still belongs in the application's
own persist.Config.Migrations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			rec, err := persist.DecodeRecord(string(raw))
			if err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			if to < rec.Version {
				return fmt.Errorf("migrate: --to %d is behind the file's current version %d", to, rec.Version)
			}

			chain := make(map[int]persist.Migration, to-rec.Version)
			for v := rec.Version; v < to; v++ {
				chain[v] = func(state any) (any, error) { return state, nil }
			}

			newVersion, newState, err := persist.Migrate(chain, rec.Version, to, rec.State)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			out, err := persist.EncodeRecord(persist.Record{Version: newVersion, State: newState})
			if err != nil {
				return fmt.Errorf("encode migrated record: %w", err)
			}
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: version %d -> %d\n", path, rec.Version, newVersion)
			return nil
		},
	}

	cmd.Flags().IntVar(&to, "to", 0, "target version")
	cmd.MarkFlagRequired("to")
	return cmd
}
