package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	ioutils "github.com/handiism/media-exporter/internal/io"
	"github.com/handiism/media-exporter/internal/model"
)

// MissingSourceMessage is recorded for file nodes whose source file does
// not exist under the media root.
const MissingSourceMessage = "Umbraco media item has no file source"

// walker holds the state of one traversal.
type walker struct {
	exporter  *Exporter
	mediaRoot string

	// claimed maps every export path written in this run to its node.
	claimed map[string]claim

	fixes []*model.NameFix
	stats model.Stats
}

type claim struct {
	id     int
	name   string
	folder bool
}

// walk mirrors nodes into parentPath, depth first, in the given order.
func (w *walker) walk(ctx context.Context, nodes []model.ContentNode, parentPath string) ([]*model.ExportNode, error) {
	out := make([]*model.ExportNode, 0, len(nodes))
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		exported, descend, err := w.exportNode(ctx, node, parentPath)
		if err != nil {
			return nil, err
		}
		atomic.AddInt32(&w.exporter.processed, 1)

		if descend && len(node.Children) > 0 {
			exported.Children, err = w.walk(ctx, node.Children, exported.ExportPath)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, exported)
	}
	return out, nil
}

// exportNode writes one node. The returned bool is false when the node is a
// folder whose path is already taken by a file, so its children are skipped.
func (w *walker) exportNode(ctx context.Context, node model.ContentNode, parentPath string) (*model.ExportNode, bool, error) {
	name := ioutils.SanitizeFileName(node.Name)

	var fix *model.NameFix
	if name != node.Name {
		fix = &model.NameFix{UmbracoName: node.Name, FixedName: name}
	}

	segment := name
	var sourcePath string
	ref, isFile := node.FileRef()
	if isFile {
		sourcePath = w.resolveSource(ref.Path)
		segment += filepath.Ext(sourcePath)
	}

	exported := &model.ExportNode{
		ID:          node.ID,
		Name:        node.Name,
		PathSegment: segment,
		ExportPath:  filepath.Join(parentPath, segment),
		FocalPoint:  node.FocalPoint(),
	}
	if node.Key != uuid.Nil {
		exported.GUID = node.Key.String()
	}

	descend := true
	prev, collides := w.claimed[exported.ExportPath]
	if collides {
		if fix == nil {
			fix = &model.NameFix{UmbracoName: node.Name}
		}
		fix.AddError(fmt.Sprintf("export path collides with %q (id %d)", prev.name, prev.id))
		w.stats.Collisions++
		w.exporter.progress(ProgressEvent{Message: fmt.Sprintf("%s: export path %s is already used by %q", node.Name, exported.ExportPath, prev.name), Level: LevelWarning})
	} else {
		w.claimed[exported.ExportPath] = claim{id: node.ID, name: node.Name, folder: !isFile}
	}

	if !isFile {
		if collides && !prev.folder {
			descend = false
		} else {
			// Two folders with the same path are merged.
			if err := ioutils.EnsureDir(exported.ExportPath); err != nil {
				return nil, false, fmt.Errorf("create folder %s: %w", exported.ExportPath, err)
			}
			if !collides {
				w.stats.Folders++
			}
			w.exporter.progress(ProgressEvent{Message: fmt.Sprintf("Folder: %s", exported.ExportPath), Level: LevelVerbose})
		}
	} else if !collides {
		if sourcePath != "" && ioutils.FileExists(sourcePath) {
			exported.UmbracoFilePath = &sourcePath
			if err := w.copy(ctx, sourcePath, exported); err != nil {
				return nil, false, err
			}
		} else {
			if fix == nil {
				fix = &model.NameFix{UmbracoName: node.Name}
			}
			fix.AddError(MissingSourceMessage)
			w.stats.MissingSources++
			w.exporter.progress(ProgressEvent{Message: fmt.Sprintf("%s: %s", node.Name, MissingSourceMessage), Level: LevelWarning})
		}
	}

	if isFile && ref.ParseError != "" {
		if fix == nil {
			fix = &model.NameFix{UmbracoName: node.Name}
		}
		fix.AddError(ref.ParseError)
	}

	if fix != nil {
		w.fixes = append(w.fixes, fix)
	}
	return exported, descend, nil
}

// resolveSource turns a repository-relative path into an absolute path
// under the media root. An empty reference resolves to "".
func (w *walker) resolveSource(relative string) string {
	relative = strings.Trim(strings.TrimSpace(relative), `/\`)
	if relative == "" {
		return ""
	}
	relative = filepath.FromSlash(strings.ReplaceAll(relative, `\`, "/"))
	return filepath.Join(w.mediaRoot, relative)
}

func (w *walker) copy(ctx context.Context, src string, exported *model.ExportNode) error {
	copied, n, err := ioutils.CopyFileIfMissing(ctx, src, exported.ExportPath)
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, exported.ExportPath, err)
	}

	if copied {
		w.stats.FilesCopied++
		w.stats.BytesCopied += n
		atomic.AddInt64(&w.exporter.bytes, n)
		w.exporter.progress(ProgressEvent{Message: fmt.Sprintf("Copied: %s", exported.ExportPath), Level: LevelVerbose})
	} else {
		w.stats.FilesExisting++
		w.exporter.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", exported.ExportPath), Level: LevelVerbose})
	}

	if w.exporter.settings.InspectMedia {
		w.inspect(ctx, exported)
	}
	return nil
}

// inspect fills the optional media fields of a file entry. Failures are
// reported at verbose level and otherwise ignored.
func (w *walker) inspect(ctx context.Context, exported *model.ExportNode) {
	path := exported.ExportPath

	if w.exporter.tagReader.Supports(path) {
		tags, err := w.exporter.tagReader.ReadTags(ctx, path)
		if err != nil {
			w.exporter.progress(ProgressEvent{Message: fmt.Sprintf("Could not read tags of %s: %v", path, err), Level: LevelVerbose})
			return
		}
		exported.Audio = tags
		return
	}

	if !isImageExt(path) {
		return
	}
	info, err := w.exporter.imageService.Inspect(ctx, path)
	if err != nil {
		w.exporter.progress(ProgressEvent{Message: fmt.Sprintf("Could not inspect %s: %v", path, err), Level: LevelVerbose})
		return
	}
	exported.Width = info.Width
	exported.Height = info.Height
}

func isImageExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}
