package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/handiism/media-exporter/internal/http"
	"github.com/handiism/media-exporter/internal/source/dto"
)

// DocumentProvider serves a media tree held in memory.
//
// It backs the JSON file and HTTP providers: both decode a dto.JSONTree and
// hand it to NewDocumentProvider.
type DocumentProvider struct {
	roots    []RawNode
	children map[int][]RawNode
}

// NewDocumentProvider indexes a decoded tree document.
func NewDocumentProvider(tree *dto.JSONTree) *DocumentProvider {
	p := &DocumentProvider{children: make(map[int][]RawNode)}
	for _, n := range tree.Nodes {
		p.roots = append(p.roots, toRawNode(n))
		p.index(n)
	}
	return p
}

func (p *DocumentProvider) index(n dto.JSONNode) {
	for _, child := range n.Children {
		p.children[n.ID] = append(p.children[n.ID], toRawNode(child))
		p.index(child)
	}
}

func toRawNode(n dto.JSONNode) RawNode {
	return RawNode{
		ID:          n.ID,
		Key:         n.Key,
		Name:        n.Name,
		ContentType: n.ContentType,
		SortOrder:   n.SortOrder,
		Properties:  n.PropertyValues(),
	}
}

// Roots returns the top-level nodes in document order.
func (p *DocumentProvider) Roots(ctx context.Context) ([]RawNode, error) {
	return p.roots, ctx.Err()
}

// Children returns one page of the children of parentID in document order.
func (p *DocumentProvider) Children(ctx context.Context, parentID, page, pageSize int) ([]RawNode, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	all := p.children[parentID]
	start := page * pageSize
	if start >= len(all) {
		return nil, len(all), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

// NewJSONFileProvider reads a tree document from path.
func NewJSONFileProvider(path string) (*DocumentProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tree dto.JSONTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse media tree %s: %w", path, err)
	}
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("invalid media tree %s: %w", path, err)
	}
	return NewDocumentProvider(&tree), nil
}

// HTTPProvider reads a tree document from a host endpoint.
//
// The document is fetched on the first call and reused afterwards, so one
// export sees one consistent tree. A failed fetch is not cached; the next
// call tries again.
type HTTPProvider struct {
	client *http.Client
	url    string

	mu  sync.Mutex
	doc *DocumentProvider
}

// NewHTTPProvider creates a provider for the tree served at url.
func NewHTTPProvider(client *http.Client, url string) *HTTPProvider {
	return &HTTPProvider{client: client, url: url}
}

func (p *HTTPProvider) load(ctx context.Context) (*DocumentProvider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.doc != nil {
		return p.doc, nil
	}

	var tree dto.JSONTree
	if err := p.client.GetJSON(ctx, p.url, &tree); err != nil {
		return nil, fmt.Errorf("fetch media tree: %w", err)
	}
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("invalid media tree from %s: %w", p.url, err)
	}
	p.doc = NewDocumentProvider(&tree)
	return p.doc, nil
}

// Roots fetches the document if needed and returns its top-level nodes.
func (p *HTTPProvider) Roots(ctx context.Context) ([]RawNode, error) {
	doc, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Roots(ctx)
}

// Children fetches the document if needed and returns one page of children.
func (p *HTTPProvider) Children(ctx context.Context, parentID, page, pageSize int) ([]RawNode, int, error) {
	doc, err := p.load(ctx)
	if err != nil {
		return nil, 0, err
	}
	return doc.Children(ctx, parentID, page, pageSize)
}
