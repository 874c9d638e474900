package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONTree is the media tree document a host exports or serves:
//
//	{"nodes": [{"id": 1061, "key": "...", "name": "Images",
//	            "contentType": "Folder", "children": [...]}]}
type JSONTree struct {
	Nodes []JSONNode `json:"nodes"`
}

// Validate checks that every node carries an id and that no id is used twice.
// Children are looked up by their parent's id, so either problem would make
// the tree ambiguous.
func (t *JSONTree) Validate() error {
	seen := make(map[int]string)
	var check func(nodes []JSONNode) error
	check = func(nodes []JSONNode) error {
		for _, n := range nodes {
			if n.ID == 0 {
				return fmt.Errorf("media node %q has no id", n.Name)
			}
			if name, ok := seen[n.ID]; ok {
				return fmt.Errorf("media node id %d is used by both %q and %q", n.ID, name, n.Name)
			}
			seen[n.ID] = n.Name
			if err := check(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return check(t.Nodes)
}

// JSONNode is one node of a JSONTree.
//
// Property values are kept raw: the host writes plain file references as
// JSON strings and image cropper values as JSON objects.
type JSONNode struct {
	ID          int                        `json:"id"`
	Key         string                     `json:"key"`
	Name        string                     `json:"name"`
	ContentType string                     `json:"contentType"`
	SortOrder   int                        `json:"sortOrder"`
	Properties  map[string]json.RawMessage `json:"properties"`
	Children    []JSONNode                 `json:"children"`
}

// PropertyValues flattens the raw property values to strings.
//
// JSON strings are unquoted, null becomes the empty string and anything
// else (objects, arrays, numbers) is kept as compact JSON text, so an image
// cropper object comes back starting with "{".
func (n JSONNode) PropertyValues() map[string]string {
	values := make(map[string]string, len(n.Properties))
	for alias, raw := range n.Properties {
		values[alias] = rawToString(raw)
	}
	return values
}

func rawToString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

// JSONCropperValue is the image cropper value stored in a file reference
// property: {"src": "/media/1/sun.jpg", "focalPoint": {"left": 0.5, "top": 0.3}, "crops": [...]}.
type JSONCropperValue struct {
	Src        string          `json:"src"`
	FocalPoint *JSONFocalPoint `json:"focalPoint"`
	Crops      []JSONCrop      `json:"crops"`
}

// JSONFocalPoint holds focal point fractions.
type JSONFocalPoint struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// JSONCrop is a named crop definition. Only the alias is kept.
type JSONCrop struct {
	Alias string `json:"alias"`
}
