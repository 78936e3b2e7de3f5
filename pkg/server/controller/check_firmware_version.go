package controller

import (
	"context"
	"errors"

	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/pkg/field"
	"github.com/facebookincubator/go-belt/tool/experimental/metrics"
	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/immune-gmbh/gwcloud/pkg/catalog"
	"github.com/immune-gmbh/gwcloud/pkg/envelope"
	"github.com/immune-gmbh/gwcloud/pkg/otarequest"
	"github.com/immune-gmbh/gwcloud/pkg/resolver"
)

// CheckFirmwareVersion handles a firmware update check of a device.
//
// The catalog is loaded for every call. Failures never escape as errors:
// every outcome is an Envelope which is to be sent to the device.
func (ctrl *Controller) CheckFirmwareVersion(
	ctx context.Context,
	params map[string]string,
) envelope.Envelope {
	now := ctrl.Now()

	req, err := otarequest.Validate(params)
	if err != nil {
		var errMissing otarequest.ErrMissingField
		if errors.As(err, &errMissing) {
			logger.FromCtx(ctx).WithField("field", errMissing.Name).Warnf("invalid request: %v", err)
		}
		return envelope.ForError(err, now)
	}
	ctx = beltctx.WithFields(ctx, field.Map[string]{
		"device_id": req.DeviceID,
		"raw_model": req.Model,
	})

	c, err := ctrl.CatalogSource.Load(ctx)
	if err != nil {
		err = ErrLoadCatalog{Err: err}
		logCatalogError(ctx, err)
		return envelope.ForError(err, now)
	}

	result, err := resolver.Resolve(c, req.Model, req.DeviceID)
	if err != nil {
		logResolveError(ctx, err)
		return envelope.ForError(err, now)
	}

	resp := envelope.ForResult(c, result, req.CurrentVersion, now)
	logger.FromCtx(ctx).Debugf("device runs '%s', offering '%s' (%s): %s",
		req.CurrentVersion, result.Record.Version, result.Source, resp.Msg)
	return resp
}

func logCatalogError(ctx context.Context, err error) {
	log := logger.FromCtx(ctx)

	var parseErr catalog.ParseError
	if errors.As(err, &parseErr) {
		metrics.FromCtx(ctx).Count("catalogParseErrors").Add(1)
		log = log.WithField("line", parseErr.Line)
	}
	log.Errorf("%v", err)
}

func logResolveError(ctx context.Context, err error) {
	var resolveErr resolver.Error
	if !errors.As(err, &resolveErr) {
		logger.FromCtx(ctx).Errorf("%v", err)
		return
	}

	log := logger.FromCtx(ctx).WithField("model", resolveErr.Model)
	switch resolveErr.Kind {
	case resolver.ErrorKindUnknownModel:
		log.Warnf("%v", err)
	default:
		// the catalog is misconfigured by the operator
		log.Errorf("%v", err)
	}
}
