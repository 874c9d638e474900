// Package export mirrors a media tree onto the local filesystem.
//
// # Exporter
//
// The Exporter runs the whole export in one call:
//
//  1. Skip if the run-once guard says a previous call already exported
//  2. Create the export root; with export_to_empty_folder_only, stop if it
//     already holds files
//  3. Lock the export root against a second exporter process
//  4. Load and resolve the media tree from the provider
//  5. Walk the tree depth first, creating folders and copying files that
//     are not there yet
//  6. Write export-report.json and, when names were fixed or sources
//     were missing, export-fixednames.json
//
// # Basic Usage
//
//	exporter := export.NewExporter(settings, provider, func(event export.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	var state export.RunState
//	result := exporter.Export(ctx, &state)
//	fmt.Println(result.Status) // "exported"
//
// # Outcomes
//
// Export returns a Result whose Status is one of "already exported",
// "no root found", "exported", "not exported" or "skipped". Problems with
// single nodes (a missing source file, a malformed image cropper value)
// never fail the run; they end up in export-fixednames.json.
//
// Any other failure stops the run, writes export-error.json and returns
// "not exported". Files copied before the failure stay where they are and
// no report is written.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// GetProgress can be polled from another goroutine while Export runs.
package export
