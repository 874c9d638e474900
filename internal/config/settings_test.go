package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(EnvExportRoot, "")

	settings, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestLoad_JSON(t *testing.T) {
	t.Setenv(EnvExportRoot, "")
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"export_root_path": "/srv/export",
		"export_to_empty_folder_only": true,
		"max_child_pages": 5,
		"source": {"type": "sqlite", "location": "media.db"}
	}`), 0644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/export", settings.ExportRootPath)
	assert.True(t, settings.ExportToEmptyFolderOnly)
	assert.Equal(t, 5, settings.MaxChildPages)
	assert.Equal(t, SourceSQLite, settings.Source.Type)
	// untouched fields keep their defaults
	assert.Equal(t, 100, settings.ChildPageSize)
	assert.Equal(t, "umbracoFile", settings.FilePropertyAlias)
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv(EnvExportRoot, "")
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
export_root_path: /data/media
export_run_once: true
inspect_media: true
source:
  type: http
  location: http://localhost:8080/media-tree
`), 0644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/media", settings.ExportRootPath)
	assert.True(t, settings.ExportRunOnce)
	assert.True(t, settings.InspectMedia)
	assert.Equal(t, SourceHTTP, settings.Source.Type)
	assert.Equal(t, "http://localhost:8080/media-tree", settings.Source.Location)
}

func TestLoad_EnvOverridesExportRoot(t *testing.T) {
	t.Setenv(EnvExportRoot, "/from/env")
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"export_root_path": "/from/file"}`), 0644))

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", settings.ExportRootPath)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvExportRoot, "")
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"export_root_path": `},
		{"zero page size", `{"child_page_size": 0}`},
		{"negative pages", `{"max_child_pages": -1}`},
		{"unknown source", `{"source": {"type": "ftp"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSave_RoundTripYAML(t *testing.T) {
	t.Setenv(EnvExportRoot, "")
	path := filepath.Join(t.TempDir(), "nested", "settings.yml")

	settings := DefaultSettings()
	settings.ExportRootPath = "/tmp/out"
	settings.MaxChildPages = 3
	require.NoError(t, settings.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestLoadHostSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "appsettings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"Logging": {"LogLevel": {"Default": "Information"}},
		"MediaExporter": {"ExportRootPath": "c:\\MediaExportUmbracoV9"}
	}`), 0644))

	settings := DefaultSettings()
	require.NoError(t, settings.LoadHostSettings(path))
	assert.Equal(t, `c:\MediaExportUmbracoV9`, settings.ExportRootPath)

	// no section: unchanged
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(other, []byte(`{"Logging": {}}`), 0644))
	settings = DefaultSettings()
	require.NoError(t, settings.LoadHostSettings(other))
	assert.Equal(t, DefaultSettings().ExportRootPath, settings.ExportRootPath)

	// missing file: unchanged
	require.NoError(t, settings.LoadHostSettings(filepath.Join(dir, "none.json")))
}
