// Package config provides configuration management for the media exporter.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - The MEDIA_EXPORT_ROOT environment override
//   - Reading the export root from a host appsettings.json
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Exports to ~/MediaExport
//	// Reads the tree from media-tree.json
//	// Unlimited child paging, 100 children per page
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/media-export.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Configuration Options
//
// Settings includes options for:
//   - Export and media root paths
//   - Empty-folder-only and run-once guards
//   - Child paging limits
//   - Host type and property aliases
//   - Media inspection
//   - Content source selection
package config
