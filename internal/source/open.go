package source

import (
	"fmt"

	"github.com/handiism/media-exporter/internal/config"
	"github.com/handiism/media-exporter/internal/http"
)

// Open creates the provider selected by settings. The returned close
// function releases the provider's resources and is never nil.
func Open(settings config.SourceSettings) (Provider, func() error, error) {
	noop := func() error { return nil }

	switch settings.Type {
	case config.SourceJSON:
		p, err := NewJSONFileProvider(settings.Location)
		if err != nil {
			return nil, noop, err
		}
		return p, noop, nil

	case config.SourceHTTP:
		var opts []http.Option
		if settings.APIKey != "" {
			opts = append(opts, http.WithAPIKey(settings.APIKey))
		}
		return NewHTTPProvider(http.NewClient(opts...), settings.Location), noop, nil

	case config.SourceSQLite:
		p, err := OpenSQLite(settings.Location)
		if err != nil {
			return nil, noop, err
		}
		return p, p.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown source type %q", settings.Type)
}
