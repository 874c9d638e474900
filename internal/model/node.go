package model

import (
	"github.com/google/uuid"
)

// ContentNode is one item of the host's media tree after resolution.
//
// ContentNode is read-only: it is built once by the source package and then
// walked by the exporter. What the node is (folder, image, generic file) is
// carried by Kind, which is one of Folder, ImageFile or GenericFile.
//
// Example:
//
//	node := ContentNode{
//	    ID:   1061,
//	    Name: "Sun*Rise",
//	    Key:  uuid.MustParse("a2f5c0a4-5f2c-4c4b-9b8c-3d1b8e2b7f10"),
//	    Kind: ImageFile{Ref: FileRef{Path: "/media/1/sun.jpg"}},
//	}
type ContentNode struct {
	// ID is the host's numeric identifier.
	ID int

	// Name is the display name as edited in the host.
	Name string

	// Key is the host's globally unique key.
	Key uuid.UUID

	// Kind is the resolved node variant.
	Kind Kind

	// Children holds the child nodes in the host's native order.
	Children []ContentNode
}

// Kind is the closed set of content node variants.
type Kind interface {
	kind()
}

// Folder is a node that only groups other nodes.
type Folder struct{}

// ImageFile is a file-bearing node of the image type. FocalPoint is set when
// the file reference was an image cropper value carrying one.
type ImageFile struct {
	Ref        FileRef
	FocalPoint *FocalPoint
}

// GenericFile is any other file-bearing node.
type GenericFile struct {
	Ref FileRef
}

func (Folder) kind()      {}
func (ImageFile) kind()   {}
func (GenericFile) kind() {}

// FileRef describes the file reference property of a file-bearing node.
type FileRef struct {
	// Raw is the trimmed property value as stored by the host.
	Raw string

	// Path is the repository-relative path extracted from Raw.
	// Empty when the node has no file reference.
	Path string

	// ParseError is set when Raw looked like a structured value but could
	// not be decoded. Path then falls back to Raw.
	ParseError string
}

// IsFolder reports whether the node is a folder.
func (n ContentNode) IsFolder() bool {
	_, ok := n.Kind.(Folder)
	return ok
}

// FileRef returns the file reference of a file-bearing node.
// The second result is false for folders.
func (n ContentNode) FileRef() (FileRef, bool) {
	switch k := n.Kind.(type) {
	case ImageFile:
		return k.Ref, true
	case GenericFile:
		return k.Ref, true
	}
	return FileRef{}, false
}

// FocalPoint returns the focal point of an image node, or nil.
func (n ContentNode) FocalPoint() *FocalPoint {
	if img, ok := n.Kind.(ImageFile); ok {
		return img.FocalPoint
	}
	return nil
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func (n ContentNode) Count() int {
	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// CountAll returns the number of nodes in all given subtrees.
func CountAll(nodes []ContentNode) int {
	total := 0
	for _, n := range nodes {
		total += n.Count()
	}
	return total
}
