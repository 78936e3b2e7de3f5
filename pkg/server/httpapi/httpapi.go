// Package httpapi exposes the controller through the HTTP endpoints
// which weather gateways call on the vendor's cloud hosts.
package httpapi

import (
	"context"
	"net/http"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/immune-gmbh/gwcloud/pkg/astro"
	"github.com/immune-gmbh/gwcloud/pkg/envelope"
	"github.com/immune-gmbh/gwcloud/pkg/httputils/servermiddleware"
	"github.com/immune-gmbh/gwcloud/pkg/otarequest"
)

// Paths of the endpoints. Gateways send the collaborator requests with a
// trailing slash, the variants without it are served too.
const (
	PathVersionInfo    = "/api/ota/v1/version/info"
	PathInitialization = "/api/index/initialization"
	PathReport         = "/data/report/"
	PathIPAPI          = "/data/ip_api/"
)

// Controller is the business logic behind the endpoints.
type Controller interface {
	CheckFirmwareVersion(ctx context.Context, params map[string]string) envelope.Envelope
	Initialize(ctx context.Context, params map[string]string)
	ReportTelemetry(ctx context.Context, params map[string]string) uuid.UUID
	TimeReport(ctx context.Context, params map[string]string) astro.Report
}

type handler struct {
	ctrl Controller
}

// NewHandler returns the HTTP handler of all endpoints.
//
// For the description of obsBelt, overridableLogLevel and defaultLogLevel
// see servermiddleware.SetupContext.
func NewHandler(
	ctrl Controller,
	obsBelt *belt.Belt,
	overridableLogLevel bool,
	defaultLogLevel logger.Level,
) http.Handler {
	h := &handler{ctrl: ctrl}

	r := chi.NewRouter()
	r.Use(servermiddleware.Default(obsBelt, overridableLogLevel, defaultLogLevel)...)

	r.Get(PathVersionInfo, h.versionInfo)
	r.Post(PathVersionInfo, h.versionInfo)
	r.Get(PathInitialization, h.initialization)
	for _, path := range []string{PathReport, PathReport[:len(PathReport)-1]} {
		r.Post(path, h.report)
	}
	for _, path := range []string{PathIPAPI, PathIPAPI[:len(PathIPAPI)-1]} {
		r.Post(path, h.ipAPI)
	}
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		logger.FromCtx(req.Context()).Warnf("unknown endpoint: %s %s", req.Method, req.URL.Path)
		http.NotFound(w, req)
	})
	return r
}

func params(req *http.Request) map[string]string {
	if err := req.ParseForm(); err != nil {
		logger.FromCtx(req.Context()).Warnf("unable to parse the request parameters: %v", err)
	}
	return otarequest.ParamsFromValues(req.Form)
}

// versionInfo answers with HTTP 200 in any case, the outcome is in the body.
func (h *handler) versionInfo(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	resp := h.ctrl.CheckFirmwareVersion(ctx, params(req))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := resp.Encode(w); err != nil {
		logger.FromCtx(ctx).Errorf("unable to send the response: %v", err)
	}
}

func (h *handler) initialization(w http.ResponseWriter, req *http.Request) {
	h.ctrl.Initialize(req.Context(), params(req))
	w.WriteHeader(http.StatusOK)
}

func (h *handler) report(w http.ResponseWriter, req *http.Request) {
	h.ctrl.ReportTelemetry(req.Context(), params(req))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("ok\r\n"))
}

func (h *handler) ipAPI(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	report := h.ctrl.TimeReport(ctx, params(req))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := report.Encode(w); err != nil {
		logger.FromCtx(ctx).Errorf("unable to send the response: %v", err)
	}
}
