package source

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/handiism/media-exporter/internal/config"
	"github.com/handiism/media-exporter/internal/http"
	"github.com/handiism/media-exporter/internal/model"
	"github.com/handiism/media-exporter/internal/source/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sunKey = "a2f5c0a4-5f2c-4c4b-9b8c-3d1b8e2b7f10"

const treeJSON = `{
  "nodes": [
    {
      "id": 1000, "key": "6c4d3f2e-1b0a-4c9d-8e7f-6a5b4c3d2e1f", "name": "Images", "contentType": "Folder",
      "children": [
        {
          "id": 1001, "key": "` + sunKey + `", "name": "Sún*Rise", "contentType": "Image",
          "properties": {"umbracoFile": {"src": "/media/1/sun.jpg", "focalPoint": {"left": 0.25, "top": 0.75}, "crops": []}}
        },
        {
          "id": 1002, "key": "not-a-uuid", "name": "Broken", "contentType": "Image",
          "properties": {"umbracoFile": "{\"src\": "}
        }
      ]
    },
    {
      "id": 2000, "name": "Manual.pdf", "contentType": "File",
      "properties": {"umbracoFile": "  /media/2/manual.pdf  ", "umbracoBytes": 1234}
    }
  ]
}`

func writeTree(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "media-tree.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_ResolvesVariants(t *testing.T) {
	provider, err := NewJSONFileProvider(writeTree(t, treeJSON))
	require.NoError(t, err)

	var warnings []string
	loader := NewLoader(provider, DefaultAliases())
	loader.OnWarning = func(msg string) { warnings = append(warnings, msg) }

	roots, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 2)

	images := roots[0]
	assert.True(t, images.IsFolder())
	require.Len(t, images.Children, 2)

	sun := images.Children[0]
	assert.Equal(t, "Sún*Rise", sun.Name)
	assert.Equal(t, uuid.MustParse(sunKey), sun.Key)
	img, ok := sun.Kind.(model.ImageFile)
	require.True(t, ok, "expected ImageFile, got %T", sun.Kind)
	assert.Equal(t, "/media/1/sun.jpg", img.Ref.Path)
	assert.Empty(t, img.Ref.ParseError)
	require.NotNil(t, img.FocalPoint)
	assert.Equal(t, model.FocalPoint{Left: 0.25, Top: 0.75}, *img.FocalPoint)

	broken := images.Children[1]
	assert.Equal(t, uuid.Nil, broken.Key)
	ref, ok := broken.FileRef()
	require.True(t, ok)
	assert.Equal(t, `{"src":`, ref.Path, "malformed cropper value falls back to the raw text")
	assert.NotEmpty(t, ref.ParseError)
	assert.Nil(t, broken.FocalPoint())

	manual := roots[1]
	generic, ok := manual.Kind.(model.GenericFile)
	require.True(t, ok, "expected GenericFile, got %T", manual.Kind)
	assert.Equal(t, "/media/2/manual.pdf", generic.Ref.Path)

	// invalid key + malformed cropper
	assert.Len(t, warnings, 2)
}

func TestLoader_CustomAliases(t *testing.T) {
	provider := NewDocumentProvider(mustTree(t, `{"nodes": [
		{"id": 1, "name": "Docs", "contentType": "Map", "children": [
			{"id": 2, "name": "A", "contentType": "Picture", "properties": {"file": "/m/a.png"}}
		]}
	]}`))

	loader := NewLoader(provider, Aliases{Folder: "Map", Image: "Picture", FileProperty: "file"})
	roots, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.True(t, roots[0].IsFolder())
	img, ok := roots[0].Children[0].Kind.(model.ImageFile)
	require.True(t, ok)
	assert.Equal(t, "/m/a.png", img.Ref.Path)
}

func TestLoader_EmptyProvider(t *testing.T) {
	loader := NewLoader(NewDocumentProvider(mustTree(t, `{"nodes": []}`)), DefaultAliases())
	roots, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestLoader_PagesThroughAllChildren(t *testing.T) {
	provider := NewDocumentProvider(mustTree(t, folderWithFiles(25)))

	loader := NewLoader(provider, DefaultAliases())
	loader.PageSize = 10

	roots, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, roots[0].Children, 25)
	assert.Equal(t, "file-0", roots[0].Children[0].Name)
	assert.Equal(t, "file-24", roots[0].Children[24].Name)
}

func TestLoader_MaxPagesTruncatesWithWarning(t *testing.T) {
	provider := NewDocumentProvider(mustTree(t, folderWithFiles(25)))

	var warnings []string
	loader := NewLoader(provider, DefaultAliases())
	loader.PageSize = 10
	loader.MaxPages = 2
	loader.OnWarning = func(msg string) { warnings = append(warnings, msg) }

	roots, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, roots[0].Children, 20)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "loaded 20 of 25")
}

func TestLoader_MaxPagesExactFitNoWarning(t *testing.T) {
	provider := NewDocumentProvider(mustTree(t, folderWithFiles(20)))

	var warnings []string
	loader := NewLoader(provider, DefaultAliases())
	loader.PageSize = 10
	loader.MaxPages = 2
	loader.OnWarning = func(msg string) { warnings = append(warnings, msg) }

	roots, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, roots[0].Children, 20)
	assert.Empty(t, warnings)
}

func TestLoader_CancelledContext(t *testing.T) {
	provider := NewDocumentProvider(mustTree(t, treeJSON))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(provider, DefaultAliases()).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONFileProvider_Errors(t *testing.T) {
	_, err := NewJSONFileProvider(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = NewJSONFileProvider(writeTree(t, `{"nodes": [`))
	assert.Error(t, err)
}

func TestJSONTree_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tree    string
		wantErr string
	}{
		{"valid", treeJSON, ""},
		{"empty", `{"nodes": []}`, ""},
		{"missing id", `{"nodes": [{"id": 1, "name": "Images", "contentType": "Folder", "children": [
			{"name": "Sub", "contentType": "Folder"}]}]}`, `media node "Sub" has no id`},
		{"duplicate id", `{"nodes": [{"id": 1, "name": "Images", "contentType": "Folder", "children": [
			{"id": 1, "name": "Sub", "contentType": "Folder"}]}]}`, `media node id 1 is used by both "Images" and "Sub"`},
		{"duplicate across roots", `{"nodes": [{"id": 4, "name": "A"}, {"id": 4, "name": "B"}]}`, "used by both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mustTree(t, tt.tree).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJSONFileProvider_RejectsNodesWithoutIDs(t *testing.T) {
	_, err := NewJSONFileProvider(writeTree(t, `{"nodes": [{"name": "Images", "contentType": "Folder", "children": [
		{"name": "Sub", "contentType": "Folder"}]}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no id")
}

func TestLoader_RepeatedIDFails(t *testing.T) {
	// Without validation both folders get id 0 and the folder becomes its
	// own child.
	provider := NewDocumentProvider(mustTree(t, `{"nodes": [{"name": "Images", "contentType": "Folder", "children": [
		{"name": "Sub", "contentType": "Folder"}]}]}`))

	_, err := NewLoader(provider, DefaultAliases()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appears more than once")
}

func TestHTTPProvider(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		requests++
		w.Write([]byte(treeJSON))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(http.NewClient(), srv.URL)
	roots, err := NewLoader(provider, DefaultAliases()).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, roots, 2)
	assert.Len(t, roots[0].Children, 2)
	assert.Equal(t, 1, requests, "document should be fetched once per provider")
}

func TestHTTPProvider_Unavailable(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		nethttp.Error(w, "down", nethttp.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewLoader(NewHTTPProvider(http.NewClient(), srv.URL), DefaultAliases()).Load(context.Background())
	assert.Error(t, err)
}

func TestHTTPProvider_RetriesAfterFailure(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		requests++
		if requests == 1 {
			nethttp.Error(w, "starting", nethttp.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(treeJSON))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(http.NewClient(), srv.URL)
	loader := NewLoader(provider, DefaultAliases())

	_, err := loader.Load(context.Background())
	require.Error(t, err)

	roots, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, roots, 2)

	_, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, requests, "a fetched document is reused")
}

func TestHTTPProvider_RejectsInvalidTree(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{"nodes": [{"id": 3, "name": "A"}, {"id": 3, "name": "B"}]}`))
	}))
	defer srv.Close()

	_, err := NewLoader(NewHTTPProvider(http.NewClient(), srv.URL), DefaultAliases()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid media tree")
}

func TestSQLite_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	doc := NewDocumentProvider(mustTree(t, treeJSON))

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "snap", "media.db"))
	require.NoError(t, err)
	defer db.Close()

	n, err := Snapshot(ctx, doc, db, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	roots, err := NewLoader(db, DefaultAliases()).Load(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Images", roots[0].Name)
	require.Len(t, roots[0].Children, 2)

	img, ok := roots[0].Children[0].Kind.(model.ImageFile)
	require.True(t, ok)
	assert.Equal(t, "/media/1/sun.jpg", img.Ref.Path)
	require.NotNil(t, img.FocalPoint)
	assert.Equal(t, 0.25, img.FocalPoint.Left)

	manual, ok := roots[1].FileRef()
	require.True(t, ok)
	assert.Equal(t, "/media/2/manual.pdf", manual.Path)
}

func TestSQLite_ChildrenOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Insert(ctx, -1, RawNode{ID: 1, Name: "Root", ContentType: "Folder"}))
	require.NoError(t, db.Insert(ctx, 1, RawNode{ID: 12, Name: "second", ContentType: "File", SortOrder: 2}))
	require.NoError(t, db.Insert(ctx, 1, RawNode{ID: 11, Name: "first", ContentType: "File", SortOrder: 1}))
	require.NoError(t, db.Insert(ctx, 1, RawNode{ID: 13, Name: "third", ContentType: "File", SortOrder: 3,
		Properties: map[string]string{"umbracoFile": "/media/3/c.txt"}}))

	page, total, err := db.Children(ctx, 1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "first", page[0].Name)
	assert.Equal(t, "second", page[1].Name)

	page, _, err = db.Children(ctx, 1, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "/media/3/c.txt", page[0].Properties["umbracoFile"])
}

func mustTree(t *testing.T, content string) *dto.JSONTree {
	t.Helper()
	var tree dto.JSONTree
	require.NoError(t, json.Unmarshal([]byte(content), &tree))
	return &tree
}

func folderWithFiles(n int) string {
	children := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			children += ","
		}
		children += fmt.Sprintf(`{"id": %d, "name": "file-%d", "contentType": "File", "properties": {"umbracoFile": "/media/%d/f.txt"}}`, 100+i, i, i)
	}
	return `{"nodes": [{"id": 1, "name": "Bulk", "contentType": "Folder", "children": [` + children + `]}]}`
}

func TestOpen(t *testing.T) {
	jsonPath := writeTree(t, treeJSON)
	dbPath := filepath.Join(t.TempDir(), "media.db")

	tests := []struct {
		name     string
		settings config.SourceSettings
		wantErr  bool
	}{
		{"json", config.SourceSettings{Type: config.SourceJSON, Location: jsonPath}, false},
		{"json missing", config.SourceSettings{Type: config.SourceJSON, Location: jsonPath + ".nope"}, true},
		{"http", config.SourceSettings{Type: config.SourceHTTP, Location: "http://127.0.0.1:1/tree", APIKey: "k"}, false},
		{"sqlite", config.SourceSettings{Type: config.SourceSQLite, Location: dbPath}, false},
		{"unknown", config.SourceSettings{Type: "ftp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, closeFn, err := Open(tt.settings)
			require.NotNil(t, closeFn)
			defer closeFn()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}
