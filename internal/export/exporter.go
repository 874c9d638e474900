package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"

	"github.com/handiism/media-exporter/internal/audio"
	"github.com/handiism/media-exporter/internal/config"
	"github.com/handiism/media-exporter/internal/filelock"
	ioutils "github.com/handiism/media-exporter/internal/io"
	"github.com/handiism/media-exporter/internal/model"
	"github.com/handiism/media-exporter/internal/source"
)

// Names of the files written to the export root.
const (
	ReportFileName     = "export-report.json"
	FixedNamesFileName = "export-fixednames.json"
	ErrorFileName      = "export-error.json"
)

// rootName is the name of the synthetic node above the media roots.
const rootName = "Media"

// Exporter mirrors a media tree onto the filesystem.
type Exporter struct {
	settings     *config.Settings
	loader       *source.Loader
	imageService *ioutils.ImageService
	tagReader    *audio.TagReader

	processed int32
	total     int32
	bytes     int64

	onProgress func(ProgressEvent)
}

// NewExporter creates an Exporter reading from provider.
func NewExporter(settings *config.Settings, provider source.Provider, onProgress func(ProgressEvent)) *Exporter {
	e := &Exporter{
		settings:     settings,
		imageService: ioutils.NewImageService(),
		tagReader:    audio.NewTagReader(),
		onProgress:   onProgress,
	}

	e.loader = source.NewLoader(provider, source.Aliases{
		Folder:       settings.FolderTypeAlias,
		Image:        settings.ImageTypeAlias,
		FileProperty: settings.FilePropertyAlias,
	})
	e.loader.PageSize = settings.ChildPageSize
	e.loader.MaxPages = settings.MaxChildPages
	e.loader.OnWarning = func(msg string) {
		e.progress(ProgressEvent{Message: msg, Level: LevelWarning})
	}
	return e
}

// GetProgress returns the number of nodes walked so far, the number of
// nodes loaded and the bytes copied.
func (e *Exporter) GetProgress() (processed, total int32, bytesCopied int64) {
	return atomic.LoadInt32(&e.processed), atomic.LoadInt32(&e.total), atomic.LoadInt64(&e.bytes)
}

// Export runs one export into settings.ExportRootPath.
//
// state carries the run-once guard between calls and may be nil. Export
// never returns an error: failures are reported as StatusNotExported with
// Result.Err set, after export-error.json has been written.
func (e *Exporter) Export(ctx context.Context, state *RunState) (result Result) {
	root := e.settings.ExportRootPath

	if e.settings.ExportRunOnce && state.Completed() {
		return Result{
			Status:  StatusSkipped,
			Message: "Media section already exported by this process.",
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = e.fail(ctx, root, &RunError{Op: "export", Err: fmt.Errorf("panic: %v", r), Stack: debug.Stack()})
		}
	}()

	if err := ioutils.EnsureDir(root); err != nil {
		return e.fail(ctx, root, newRunError("create export root", err))
	}

	if e.settings.ExportToEmptyFolderOnly {
		hasFiles, err := ioutils.HasFiles(root)
		if err != nil {
			return e.fail(ctx, root, newRunError("read export root", err))
		}
		if hasFiles {
			msg := fmt.Sprintf("Media items already exported. For new export delete all content of: %s", root)
			e.progress(ProgressEvent{Message: msg, Level: LevelInfo})
			return Result{Status: StatusAlreadyExported, Message: msg}
		}
	}

	lock := filelock.ForDirectory(root)
	if err := lock.TryLock(); err != nil {
		return e.fail(ctx, root, newRunError("lock export root", err))
	}
	defer lock.Unlock()

	e.progress(ProgressEvent{Message: "Loading media tree", Level: LevelVerbose})
	roots, err := e.loader.Load(ctx)
	if err != nil {
		return e.fail(ctx, root, newRunError("load media tree", err))
	}
	if len(roots) == 0 {
		msg := "No media root found."
		e.progress(ProgressEvent{Message: msg, Level: LevelWarning})
		return Result{Status: StatusNoRoot, Message: msg}
	}

	atomic.StoreInt32(&e.processed, 0)
	atomic.StoreInt32(&e.total, int32(model.CountAll(roots)))
	atomic.StoreInt64(&e.bytes, 0)
	e.progress(ProgressEvent{Message: fmt.Sprintf("Found %d media items", model.CountAll(roots)), Level: LevelInfo})

	w := &walker{exporter: e, mediaRoot: e.settings.MediaRootPath, claimed: make(map[string]claim)}
	children, err := w.walk(ctx, roots, root)
	if err != nil {
		return e.fail(ctx, root, newRunError("export media items", err))
	}

	report := &model.Report{
		Root: &model.ExportNode{
			Name:        rootName,
			PathSegment: "",
			ExportPath:  root,
			Children:    children,
		},
		FixedNames: w.fixes,
		Stats:      w.stats,
	}

	if err := writeJSON(filepath.Join(root, ReportFileName), report.Root); err != nil {
		return e.fail(ctx, root, newRunError("write export report", err))
	}
	if len(report.FixedNames) > 0 {
		if err := writeJSON(filepath.Join(root, FixedNamesFileName), report.FixedNames); err != nil {
			return e.fail(ctx, root, newRunError("write fixed names", err))
		}
	}

	state.MarkCompleted()

	msg := "Media section exported."
	e.progress(ProgressEvent{Message: msg, Level: LevelSuccess})
	return Result{Status: StatusExported, Message: msg, Report: report}
}

func newRunError(op string, err error) *RunError {
	return &RunError{Op: op, Err: err, Stack: debug.Stack()}
}

// fail writes export-error.json and builds the failure result. The error
// file is best-effort: if it cannot be written that is reported as a
// progress event only.
func (e *Exporter) fail(ctx context.Context, root string, runErr *RunError) Result {
	if errors.Is(runErr.Err, context.Canceled) || errors.Is(runErr.Err, context.DeadlineExceeded) {
		runErr.Op = "cancelled: " + runErr.Op
	}

	e.progress(ProgressEvent{Message: fmt.Sprintf("Media section not exported: %v", runErr), Level: LevelError})

	// The error file is written even when ctx is what failed the run.
	if err := ioutils.WriteFile(context.WithoutCancel(ctx), filepath.Join(root, ErrorFileName), runErr.errorFileContent()); err != nil {
		e.progress(ProgressEvent{Message: fmt.Sprintf("Could not write %s: %v", ErrorFileName, err), Level: LevelError})
	}

	return Result{
		Status:  StatusNotExported,
		Message: fmt.Sprintf("Media section not exported! %v", runErr),
		Err:     runErr,
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return filelock.AtomicWrite(path, data)
}

func (e *Exporter) progress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}
