package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/handiism/media-exporter/internal/model"
	"github.com/handiism/media-exporter/internal/source/dto"
)

// Loader reads a Provider's tree and resolves every node into a
// model.ContentNode.
//
// Resolution happens once, here: the file reference property is decoded
// (plain path or image cropper value) and the node variant is chosen from
// its content type. Children are fetched page by page.
//
// Example usage:
//
//	loader := NewLoader(provider, DefaultAliases())
//	loader.MaxPages = 5
//	loader.OnWarning = func(msg string) { log.Println(msg) }
//	roots, err := loader.Load(ctx)
type Loader struct {
	provider Provider
	aliases  Aliases

	// PageSize is the number of children requested per page.
	PageSize int

	// MaxPages bounds the pages read per parent. 0 means unlimited.
	// Children past the bound are dropped and reported through OnWarning.
	MaxPages int

	// OnWarning receives non-fatal problems: truncated child collections,
	// malformed cropper values, unparsable keys.
	OnWarning func(msg string)
}

// NewLoader creates a Loader with a page size of 100 and no page limit.
func NewLoader(provider Provider, aliases Aliases) *Loader {
	return &Loader{
		provider: provider,
		aliases:  aliases,
		PageSize: 100,
	}
}

// Load returns the resolved root nodes with all of their descendants.
//
// An empty result with a nil error means the provider has no roots.
func (l *Loader) Load(ctx context.Context) ([]model.ContentNode, error) {
	raws, err := l.provider.Roots(ctx)
	if err != nil {
		return nil, fmt.Errorf("load media roots: %w", err)
	}

	seen := make(map[int]string)
	nodes := make([]model.ContentNode, 0, len(raws))
	for _, raw := range raws {
		node, err := l.resolve(ctx, raw, seen)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// resolve builds raw and its descendants. seen records every id resolved so
// far in this load; a repeated id means the provider returned a cycle or an
// ambiguous tree.
func (l *Loader) resolve(ctx context.Context, raw RawNode, seen map[int]string) (model.ContentNode, error) {
	if err := ctx.Err(); err != nil {
		return model.ContentNode{}, err
	}
	if name, ok := seen[raw.ID]; ok {
		return model.ContentNode{}, fmt.Errorf("media node %q (id %d) appears more than once in the tree, first as %q", raw.Name, raw.ID, name)
	}
	seen[raw.ID] = raw.Name

	node := model.ContentNode{
		ID:   raw.ID,
		Name: raw.Name,
		Key:  l.parseKey(raw),
		Kind: l.resolveKind(raw),
	}

	if !node.IsFolder() {
		return node, nil
	}

	children, err := l.children(ctx, raw)
	if err != nil {
		return model.ContentNode{}, err
	}
	for _, child := range children {
		resolved, err := l.resolve(ctx, child, seen)
		if err != nil {
			return model.ContentNode{}, err
		}
		node.Children = append(node.Children, resolved)
	}
	return node, nil
}

// children pages through the children of parent.
func (l *Loader) children(ctx context.Context, parent RawNode) ([]RawNode, error) {
	pageSize := l.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	var all []RawNode
	total := 0
	for page := 0; ; page++ {
		if l.MaxPages > 0 && page >= l.MaxPages {
			if len(all) < total {
				l.warn(fmt.Sprintf("children of %q (id %d) truncated: loaded %d of %d (max_child_pages=%d)",
					parent.Name, parent.ID, len(all), total, l.MaxPages))
			}
			break
		}

		items, n, err := l.provider.Children(ctx, parent.ID, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("load children of %q (id %d): %w", parent.Name, parent.ID, err)
		}
		total = n
		all = append(all, items...)

		if len(items) == 0 || len(all) >= total {
			break
		}
	}
	return all, nil
}

func (l *Loader) parseKey(raw RawNode) uuid.UUID {
	if raw.Key == "" {
		return uuid.Nil
	}
	key, err := uuid.Parse(raw.Key)
	if err != nil {
		l.warn(fmt.Sprintf("%q (id %d) has an invalid key %q: %v", raw.Name, raw.ID, raw.Key, err))
		return uuid.Nil
	}
	return key
}

func (l *Loader) resolveKind(raw RawNode) model.Kind {
	if raw.ContentType == l.aliases.Folder {
		return model.Folder{}
	}

	value := strings.TrimSpace(raw.Properties[l.aliases.FileProperty])
	ref := model.FileRef{Raw: value, Path: value}
	var focal *model.FocalPoint

	if strings.HasPrefix(value, "{") {
		cropper, err := parseCropperValue(value)
		if err != nil {
			ref.ParseError = fmt.Sprintf("file reference is not a valid image cropper value: %v", err)
			l.warn(fmt.Sprintf("%q (id %d): %s", raw.Name, raw.ID, ref.ParseError))
		} else {
			ref.Path = strings.TrimSpace(cropper.Src)
			if cropper.FocalPoint != nil {
				focal = &model.FocalPoint{Left: cropper.FocalPoint.Left, Top: cropper.FocalPoint.Top}
			}
		}
	}

	if raw.ContentType == l.aliases.Image {
		return model.ImageFile{Ref: ref, FocalPoint: focal}
	}
	return model.GenericFile{Ref: ref}
}

func parseCropperValue(value string) (*dto.JSONCropperValue, error) {
	var cropper dto.JSONCropperValue
	if err := json.Unmarshal([]byte(value), &cropper); err != nil {
		return nil, err
	}
	return &cropper, nil
}

func (l *Loader) warn(msg string) {
	if l.OnWarning != nil {
		l.OnWarning(msg)
	}
}
