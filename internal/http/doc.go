// Package http provides an HTTP client for reading the media tree from a
// running host.
//
// The Client in this package handles:
//   - User-Agent and Accept headers
//   - An optional Api-Key header
//   - Timeout handling
//   - JSON decoding of responses
//
// # Basic Usage
//
//	client := http.NewClient(http.WithAPIKey(key))
//
//	// Fetch raw bytes
//	body, err := client.Get(ctx, "https://cms.example.com/media-tree")
//
//	// Fetch and decode JSON
//	err = client.GetJSON(ctx, "https://cms.example.com/media-tree", &doc)
package http
