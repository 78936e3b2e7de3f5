package controller

import (
	"context"
	"sort"

	"github.com/facebookincubator/go-belt/pkg/field"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/google/uuid"

	"github.com/immune-gmbh/gwcloud/pkg/astro"
)

// Initialize handles the startup ping of a device. It only logs the
// parameters.
func (ctrl *Controller) Initialize(ctx context.Context, params map[string]string) {
	logger.FromCtx(ctx).WithFields(paramFields(params)).Infof("device initialization")
}

// ReportTelemetry accepts weather data posted by a device. The data is
// only logged, the returned ID allows to find the report in the logs.
func (ctrl *Controller) ReportTelemetry(ctx context.Context, params map[string]string) uuid.UUID {
	reportID := uuid.New()
	logger.FromCtx(ctx).WithField("report_id", reportID.String()).
		WithFields(paramFields(params)).
		Infof("telemetry report from '%s'", params["stationtype"])
	return reportID
}

// TimeReport returns the local time and sun information of the site.
func (ctrl *Controller) TimeReport(ctx context.Context, params map[string]string) astro.Report {
	report := ctrl.Site.ReportAt(ctrl.Now())
	logger.FromCtx(ctx).WithFields(paramFields(params)).Debugf(
		"time report: zone=%s offset=%d dst=%v sunrise=%s sunset=%s (%s)",
		report.TimeZone, report.UTCOffset, report.DST,
		report.Sunrise.Format("15:04"), report.Sunset.Format("15:04"), report.DayKind,
	)
	return report
}

func paramFields(params map[string]string) field.Fields {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make(field.Fields, 0, len(keys))
	for _, key := range keys {
		result = append(result, field.Field{Key: "param_" + key, Value: params[key]})
	}
	return result
}
