package cmd

import (
	"fmt"

	"github.com/handiism/media-exporter/internal/logger"
	"github.com/handiism/media-exporter/internal/source"
	"github.com/spf13/cobra"
)

// NewSnapshotCommand creates the snapshot command
func NewSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Copy the media tree into a SQLite database",
		Long: `Copy the media tree of the configured source into a SQLite database so
later exports can run without the host.

Examples:
  media-export snapshot --source-type http --source https://cms.example.com/media-tree --to media.db
  media-export run --source-type sqlite --source media.db`,
		Args: cobra.NoArgs,
		RunE: runSnapshot,
	}

	cmd.Flags().String("source-type", "", "Content source: json, http or sqlite")
	cmd.Flags().String("source", "", "Content source location (file path or URL)")
	cmd.Flags().String("to", "media.db", "SQLite database to write")

	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dbPath, _ := cmd.Flags().GetString("to")

	log := logger.NewConsoleLogger(cmd.OutOrStdout(), settings.LogLevel)

	provider, closeFn, err := source.Open(settings.Source)
	if err != nil {
		return fmt.Errorf("open media source: %w", err)
	}
	defer closeFn()

	db, err := source.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open snapshot database: %w", err)
	}
	defer db.Close()

	n, err := source.Snapshot(cmd.Context(), provider, db, settings.ChildPageSize)
	if err != nil {
		return fmt.Errorf("snapshot after %d nodes: %w", n, err)
	}

	log.LogSuccess(fmt.Sprintf("Wrote %d media nodes to %s", n, dbPath))
	return nil
}
