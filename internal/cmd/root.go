// Package cmd implements the media-export command line.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for media-export
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media-export",
		Short: "Mirror a CMS media library onto the filesystem",
		Long: `media-export walks the media tree of a content-management host and
mirrors it as real folders and files with human-readable names.

Next to the mirrored tree it writes export-report.json (the full tree),
export-fixednames.json (renamed items and missing sources) and, when the
export fails, export-error.json.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (.json, .yaml or .yml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewSnapshotCommand())
	cmd.AddCommand(NewServeCommand())

	return cmd
}
