package controller

import (
	"context"
	"io"

	"github.com/immune-gmbh/gwcloud/pkg/catalog"
)

// CatalogSource provides the current firmware catalog.
type CatalogSource interface {
	io.Closer
	Load(ctx context.Context) (*catalog.Catalog, error)
}
