// Command fluxkit is a small devtools CLI over the on-disk persisted
// record format persist.Record/persist.FileStorage produce, grounded in
// C360Studio-semspec/cmd/semspec/main.go's cobra.Command wiring.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fluxkit",
		Short: "Inspect, migrate, and purge fluxkit persisted state files",
	}
	root.AddCommand(newInspectCmd(), newMigrateCmd(), newPurgeCmd())
	return root
}
