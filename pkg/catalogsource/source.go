// Package catalogsource provides access to the backing storage of the
// firmware catalog.
//
// By default the catalog is re-read and re-parsed on every Load, see Cached
// for the alternative.
package catalogsource

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/immune-gmbh/gwcloud/pkg/catalog"
)

// Source is a backing storage of the catalog.
type Source interface {
	io.Closer

	// Load reads and parses the catalog. The returned catalog must be
	// treated as read-only.
	Load(ctx context.Context) (*catalog.Catalog, error)

	// String returns a human-readable location of the catalog.
	String() string
}

// Stamper is implemented by sources which can cheaply tell whether the
// catalog changed. Equal stamps imply equal content.
type Stamper interface {
	Stamp(ctx context.Context) (string, error)
}

// Option is an optional argument of New.
type Option interface {
	apply(*config)
}

type config struct {
	FetchTimeout time.Duration
	CacheSize    int
}

// OptionFetchTimeout limits the time spent on fetching a remote catalog.
type OptionFetchTimeout time.Duration

func (opt OptionFetchTimeout) apply(cfg *config) {
	cfg.FetchTimeout = time.Duration(opt)
}

// OptionCacheSize enables caching of parsed catalogs (see Cached).
// Zero disables caching.
type OptionCacheSize int

func (opt OptionCacheSize) apply(cfg *config) {
	cfg.CacheSize = int(opt)
}

const defaultFetchTimeout = 10 * time.Second

// New returns a Source given its URL. Supported schemes:
//   - "fs": a local file, e.g. "fs:///etc/gwcloud/firmware-info";
//   - "http", "https": a remote file fetched with GET.
func New(urlString string, opts ...Option) (Source, error) {
	cfg := config{
		FetchTimeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse URL '%s': %w", urlString, err)
	}

	var src Source
	switch parsedURL.Scheme {
	case "fs":
		if parsedURL.Path == "" {
			return nil, fmt.Errorf("no path in URL '%s'", urlString)
		}
		src = NewFile(parsedURL.Path)
	case "http", "https":
		src = NewHTTP(parsedURL.String(), cfg.FetchTimeout)
	default:
		return nil, fmt.Errorf("unknown scheme '%s'", parsedURL.Scheme)
	}

	if cfg.CacheSize > 0 {
		return NewCached(src, cfg.CacheSize)
	}
	return src, nil
}
