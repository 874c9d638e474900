package source

import (
	"context"
)

// RawNode is a media item as a provider returns it, before resolution.
type RawNode struct {
	ID          int
	Key         string
	Name        string
	ContentType string
	SortOrder   int

	// Properties maps property aliases to their raw values. Structured
	// values are kept as JSON text.
	Properties map[string]string
}

// Provider gives read access to the host's media tree.
//
// Roots returns the top-level items. Children returns one page of the
// children of parentID (pages are zero-based) together with the total number
// of children, so callers can tell when they have seen all of them.
// Both return items in the host's native order.
type Provider interface {
	Roots(ctx context.Context) ([]RawNode, error)
	Children(ctx context.Context, parentID, page, pageSize int) ([]RawNode, int, error)
}

// Aliases names the host conventions used to classify nodes.
type Aliases struct {
	// Folder is the content type alias of folders.
	Folder string

	// Image is the content type alias of images.
	Image string

	// FileProperty is the alias of the property holding the file reference.
	FileProperty string
}

// DefaultAliases returns the host's built-in aliases.
func DefaultAliases() Aliases {
	return Aliases{
		Folder:       "Folder",
		Image:        "Image",
		FileProperty: "umbracoFile",
	}
}
