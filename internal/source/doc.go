// Package source reads the host's media tree and resolves it into
// model.ContentNode values.
//
// The package handles three concerns:
//
//  1. Providers: where raw nodes come from (a JSON document on disk, the
//     same document served over HTTP, or a SQLite snapshot)
//  2. Paging: children are requested page by page, with an optional bound
//  3. Resolution: the file reference property is decoded and each node is
//     classified as a folder, an image or a generic file
//
// # Loading a Tree
//
//	provider, err := source.NewJSONFileProvider("media-tree.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	loader := source.NewLoader(provider, source.DefaultAliases())
//	roots, err := loader.Load(ctx)
//
// # File References
//
// A file reference is either a plain repository-relative path
// ("/media/1/sun.jpg") or an image cropper value:
//
//	{"src": "/media/1/sun.jpg", "focalPoint": {"left": 0.5, "top": 0.3}}
//
// A cropper value that cannot be decoded is reported through
// Loader.OnWarning and the raw text is used as the path.
//
// # Snapshots
//
// Snapshot copies any provider into a SQLite database so an export can be
// repeated without the host:
//
//	db, _ := source.OpenSQLite("media.db")
//	n, err := source.Snapshot(ctx, provider, db, 100)
package source
