package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvExportRoot overrides Settings.ExportRootPath when set.
const EnvExportRoot = "MEDIA_EXPORT_ROOT"

// Source types understood by SourceSettings.Type.
const (
	SourceJSON   = "json"
	SourceHTTP   = "http"
	SourceSQLite = "sqlite"
)

// SourceSettings selects the content provider.
type SourceSettings struct {
	// Type is one of "json", "http" or "sqlite".
	Type string `json:"type" yaml:"type"`

	// Location is a file path for json/sqlite or a URL for http.
	Location string `json:"location" yaml:"location"`

	// APIKey is sent with http requests when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// Settings holds all configuration options.
type Settings struct {
	// Export settings
	ExportRootPath          string `json:"export_root_path" yaml:"export_root_path"`
	MediaRootPath           string `json:"media_root_path" yaml:"media_root_path"`
	ExportToEmptyFolderOnly bool   `json:"export_to_empty_folder_only" yaml:"export_to_empty_folder_only"`
	ExportRunOnce           bool   `json:"export_run_once" yaml:"export_run_once"`

	// Child paging (0 pages = unlimited)
	ChildPageSize int `json:"child_page_size" yaml:"child_page_size"`
	MaxChildPages int `json:"max_child_pages" yaml:"max_child_pages"`

	// Host conventions
	FolderTypeAlias   string `json:"folder_type_alias" yaml:"folder_type_alias"`
	ImageTypeAlias    string `json:"image_type_alias" yaml:"image_type_alias"`
	FilePropertyAlias string `json:"file_property_alias" yaml:"file_property_alias"`

	// Read image dimensions and audio tags of exported files
	InspectMedia bool `json:"inspect_media" yaml:"inspect_media"`

	LogLevel string `json:"log_level" yaml:"log_level"`

	Source SourceSettings `json:"source" yaml:"source"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		ExportRootPath:          filepath.Join(homeDir, "MediaExport"),
		MediaRootPath:           ".",
		ExportToEmptyFolderOnly: false,
		ExportRunOnce:           false,

		ChildPageSize: 100,
		MaxChildPages: 0,

		FolderTypeAlias:   "Folder",
		ImageTypeAlias:    "Image",
		FilePropertyAlias: "umbracoFile",

		InspectMedia: false,

		LogLevel: "info",

		Source: SourceSettings{
			Type:     SourceJSON,
			Location: "media-tree.json",
		},
	}
}

// Load reads settings from a JSON or YAML file, chosen by extension
// (.yaml and .yml are YAML, anything else JSON).
//
// A missing file yields the defaults. Values in the file override the
// defaults field by field, then MEDIA_EXPORT_ROOT overrides the export root.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			settings.ApplyEnv()
			return settings, nil
		}
		return nil, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	settings.ApplyEnv()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv applies environment overrides.
func (s *Settings) ApplyEnv() {
	if root := strings.TrimSpace(os.Getenv(EnvExportRoot)); root != "" {
		s.ExportRootPath = root
	}
}

// Validate checks that the settings can drive an export.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.ExportRootPath) == "" {
		return fmt.Errorf("export_root_path must not be empty")
	}
	if s.ChildPageSize <= 0 {
		return fmt.Errorf("child_page_size must be positive, got %d", s.ChildPageSize)
	}
	if s.MaxChildPages < 0 {
		return fmt.Errorf("max_child_pages must not be negative, got %d", s.MaxChildPages)
	}
	switch s.Source.Type {
	case SourceJSON, SourceHTTP, SourceSQLite:
	default:
		return fmt.Errorf("unknown source type %q", s.Source.Type)
	}
	return nil
}

// hostSettings mirrors the section the host keeps in its appsettings.json:
//
//	"MediaExporter": {"ExportRootPath": "c:\\MediaExport"}
type hostSettings struct {
	MediaExporter *struct {
		ExportRootPath string `json:"ExportRootPath"`
	} `json:"MediaExporter"`
}

// LoadHostSettings reads the MediaExporter section of a host appsettings.json
// and applies its export root to s. A missing file or section leaves s as is.
func (s *Settings) LoadHostSettings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var host hostSettings
	if err := json.Unmarshal(data, &host); err != nil {
		return fmt.Errorf("failed to parse host settings %s: %w", path, err)
	}
	if host.MediaExporter != nil && host.MediaExporter.ExportRootPath != "" {
		s.ExportRootPath = host.MediaExporter.ExportRootPath
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
