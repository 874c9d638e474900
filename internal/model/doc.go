// Package model defines the core data structures used throughout
// the media exporter.
//
// # Content nodes
//
// ContentNode is the host's media tree after it has been read and resolved.
// Its Kind is a closed set of variants:
//
//	switch k := node.Kind.(type) {
//	case model.Folder:
//	    // create a directory, recurse into node.Children
//	case model.ImageFile:
//	    // copy k.Ref.Path, carry k.FocalPoint
//	case model.GenericFile:
//	    // copy k.Ref.Path
//	}
//
// # Export output
//
// ExportNode and NameFix are the JSON shapes written to export-report.json
// and export-fixednames.json. Field names follow the files the host plugin
// has always written, so existing consumers keep working.
package model
