package catalogsource

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/immune-gmbh/gwcloud/pkg/catalog"
	"github.com/immune-gmbh/gwcloud/pkg/httputils/clienthelpers"
)

// HTTP is a catalog fetched from a web server on every Load.
type HTTP struct {
	URL    string
	Client *http.Client
}

var _ Source = (*HTTP)(nil)

// NewHTTP returns a new instance of HTTP.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	return &HTTP{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Load implements Source.
func (src *HTTP) Load(ctx context.Context) (*catalog.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, ErrOpen{Location: src.URL, Err: err}
	}

	clienthelpers.SetHeaders(req, logger.LevelUndefined)

	resp, err := src.Client.Do(req)
	if err != nil {
		return nil, ErrOpen{Location: src.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrOpen{
			Location: src.URL,
			Err:      fmt.Errorf("unexpected HTTP status %d", resp.StatusCode),
		}
	}

	logger.FromCtx(ctx).Tracef("parsing catalog '%s'", src.URL)
	return catalog.Parse(resp.Body)
}

// String implements Source.
func (src *HTTP) String() string {
	return src.URL
}

// Close implements io.Closer.
func (src *HTTP) Close() error {
	src.Client.CloseIdleConnections()
	return nil
}
