package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/handiism/media-exporter/internal/export"
	"github.com/handiism/media-exporter/internal/logger"
	"github.com/handiism/media-exporter/internal/source"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Export the media tree once",
		Long: `Export the media tree into the export root and exit.

Configuration is loaded from --config if given; flags override it and
MEDIA_EXPORT_ROOT overrides the export root of the config file.

Examples:
  # Export using a JSON tree document
  media-export run --source media-tree.json --media-root /srv/site --output /srv/export

  # Export from a SQLite snapshot, only into an empty folder
  media-export run --source-type sqlite --source media.db --empty-only

  # Export from the host and read image sizes and audio tags
  media-export run --source-type http --source https://cms.example.com/media-tree --inspect`,
		Args: cobra.NoArgs,
		RunE: runCommand,
	}

	cmd.Flags().String("output", "", "Export root directory")
	cmd.Flags().String("media-root", "", "Directory the host stores media files in")
	cmd.Flags().String("source-type", "", "Content source: json, http or sqlite")
	cmd.Flags().String("source", "", "Content source location (file path or URL)")
	cmd.Flags().String("host-settings", "", "Host appsettings.json to read MediaExporter.ExportRootPath from")
	cmd.Flags().Bool("empty-only", false, "Only export into an empty export root")
	cmd.Flags().Bool("inspect", false, "Record image dimensions and audio tags in the report")
	cmd.Flags().Int("max-child-pages", 0, "Maximum child pages per folder (0 = unlimited)")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger(cmd.OutOrStdout(), settings.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, closeFn, err := source.Open(settings.Source)
	if err != nil {
		return fmt.Errorf("open media source: %w", err)
	}
	defer closeFn()

	log.LogInfo(fmt.Sprintf("Exporting %s %s into %s", settings.Source.Type, settings.Source.Location, settings.ExportRootPath))

	start := time.Now()
	exporter := export.NewExporter(settings, provider, progressLogger(log))
	result := exporter.Export(ctx, nil)

	switch result.Status {
	case export.StatusExported:
		log.LogSummary(result.Report.Stats, len(result.Report.FixedNames), time.Since(start))
	case export.StatusNotExported:
		if ctx.Err() != nil {
			log.LogWarn("Export interrupted")
		}
		return fmt.Errorf("%s (see %s)", result.Status, filepath.Join(settings.ExportRootPath, export.ErrorFileName))
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Status)
	return nil
}
