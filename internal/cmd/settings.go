package cmd

import (
	"fmt"

	"github.com/handiism/media-exporter/internal/config"
	"github.com/handiism/media-exporter/internal/export"
	"github.com/handiism/media-exporter/internal/logger"
	"github.com/spf13/cobra"
)

// loadSettings reads the --config file (defaults when unset), then the
// --host-settings file, and applies the flags the command defines on top.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	configPath, _ := cmd.Flags().GetString("config")

	settings := config.DefaultSettings()
	settings.ApplyEnv()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		settings = loaded
	}

	flags := cmd.Flags()
	// The host's appsettings sit between the config file and explicit flags.
	if flags.Lookup("host-settings") != nil && flags.Changed("host-settings") {
		path, _ := flags.GetString("host-settings")
		if err := settings.LoadHostSettings(path); err != nil {
			return nil, err
		}
	}
	if flags.Changed("log-level") {
		settings.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Lookup("output") != nil && flags.Changed("output") {
		settings.ExportRootPath, _ = flags.GetString("output")
	}
	if flags.Lookup("media-root") != nil && flags.Changed("media-root") {
		settings.MediaRootPath, _ = flags.GetString("media-root")
	}
	if flags.Lookup("source-type") != nil && flags.Changed("source-type") {
		settings.Source.Type, _ = flags.GetString("source-type")
	}
	if flags.Lookup("source") != nil && flags.Changed("source") {
		settings.Source.Location, _ = flags.GetString("source")
	}
	if flags.Lookup("empty-only") != nil && flags.Changed("empty-only") {
		settings.ExportToEmptyFolderOnly, _ = flags.GetBool("empty-only")
	}
	if flags.Lookup("inspect") != nil && flags.Changed("inspect") {
		settings.InspectMedia, _ = flags.GetBool("inspect")
	}
	if flags.Lookup("max-child-pages") != nil && flags.Changed("max-child-pages") {
		settings.MaxChildPages, _ = flags.GetInt("max-child-pages")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// progressLogger routes exporter progress events into log.
func progressLogger(log *logger.ConsoleLogger) func(export.ProgressEvent) {
	return func(event export.ProgressEvent) {
		switch event.Level {
		case export.LevelVerbose:
			log.LogDebug(event.Message)
		case export.LevelWarning:
			log.LogWarn(event.Message)
		case export.LevelError:
			log.LogError(event.Message)
		case export.LevelSuccess:
			log.LogSuccess(event.Message)
		default:
			log.LogInfo(event.Message)
		}
	}
}
