// Package controller implements the high-level logic of the emulated
// weather gateway cloud: it turns device requests into responses.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/hashicorp/go-multierror"

	"github.com/immune-gmbh/gwcloud/pkg/astro"
)

type noCopy sync.Locker

// Controller implements the high-level logic of the service.
//
// It keeps no per-request state, all methods are safe for concurrent use.
type Controller struct {
	noCopy noCopy

	Context       context.Context
	ContextCancel context.CancelFunc
	CatalogSource CatalogSource
	Site          astro.Site

	// Now returns the current time; it is replaceable for tests.
	Now func() time.Time
}

// New returns an instance of Controller.
//
// The controller takes the ownership of catalogSource, it is closed by Close.
func New(
	ctx context.Context,
	catalogSource CatalogSource,
	site astro.Site,
) (*Controller, error) {
	if catalogSource == nil {
		return nil, ErrInitCatalogSource{Err: errNilCatalogSource}
	}

	ctrl := &Controller{
		CatalogSource: catalogSource,
		Site:          site,
		Now:           time.Now,
	}
	ctrl.Context, ctrl.ContextCancel = context.WithCancel(beltctx.WithField(ctx, "module", "controller"))
	return ctrl, nil
}

// Close releases the resources of the controller.
func (ctrl *Controller) Close() error {
	ctrl.ContextCancel()

	var result *multierror.Error
	if err := ctrl.CatalogSource.Close(); err != nil {
		result = multierror.Append(result, ErrCloseCatalogSource{Err: err})
	}
	return result.ErrorOrNil()
}
