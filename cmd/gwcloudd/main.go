// Command gwcloudd emulates the parts of the weather gateway vendor's cloud
// which gateways need: firmware update checks, time/sun information,
// telemetry upload and the startup ping.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"

	"github.com/immune-gmbh/gwcloud/pkg/astro"
	"github.com/immune-gmbh/gwcloud/pkg/catalogsource"
	"github.com/immune-gmbh/gwcloud/pkg/observability"
	"github.com/immune-gmbh/gwcloud/pkg/server/controller"
	"github.com/immune-gmbh/gwcloud/pkg/server/httpapi"
)

func assertNoError(ctx context.Context, err error) {
	if err != nil {
		logger.FromCtx(ctx).Fatalf("%v", err)
	}
}

func main() {
	if err := loadEnvFile(envString(os.LookupEnv, "ENV_FILE", ".env")); err != nil {
		fmt.Fprintf(os.Stderr, "unable to load the environment file: %v\n", err)
		os.Exit(2)
	}

	flagSet, cfg, err := newFlagSet(os.Args[0], os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2) // the default Go's exitcode on flag.Parse() problems
	}
	if flagSet.NArg() != 0 {
		flagSet.Usage()
		os.Exit(2)
	}

	ctx := observability.WithBelt(context.Background(), cfg.LogLevel, "GWCLOUD", true)
	defer beltctx.Flush(ctx)
	log := logger.FromCtx(ctx)

	assertNoError(ctx, cfg.validate())
	loc, err := cfg.location()
	assertNoError(ctx, err)

	opts := []catalogsource.Option{
		catalogsource.OptionFetchTimeout(cfg.CatalogFetchTimeout),
		catalogsource.OptionCacheSize(cfg.CatalogCacheSize),
	}
	catalogSource, err := catalogsource.New(cfg.CatalogURL, opts...)
	assertNoError(ctx, err)
	log.Debugf("catalog source: %s", catalogSource)

	ctrl, err := controller.New(ctx, catalogSource, astro.Site{
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
		Location:  loc,
	})
	assertNoError(ctx, err)
	log.Debugf("created a controller")

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpapi.NewHandler(ctrl, beltctx.Belt(ctx), true, cfg.LogLevel),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancelFn()

	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)
	go purgeOnSignal(ctx, catalogSource, hangup)

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("listening on '%s'", cfg.ListenAddr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("unable to serve: %v", err)
		}
	case <-ctx.Done():
		log.Infof("shutting down")
	}

	if err := shutdown(srv, ctrl, cfg.ShutdownTimeout); err != nil {
		log.Errorf("%v", err)
		beltctx.Flush(ctx)
		os.Exit(1)
	}
}

// purgeOnSignal drops the cached catalogs every time a signal arrives,
// until ctx is done. It returns immediately if the source has no cache.
func purgeOnSignal(ctx context.Context, src catalogsource.Source, signals <-chan os.Signal) {
	cached, ok := src.(*catalogsource.Cached)
	if !ok {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			cached.Purge()
			logger.FromCtx(ctx).Infof("received %v, purged the catalog cache", sig)
		}
	}
}

func shutdown(srv *http.Server, ctrl *controller.Controller, timeout time.Duration) error {
	ctx, cancelFn := context.WithTimeout(context.Background(), timeout)
	defer cancelFn()

	var result *multierror.Error
	if err := srv.Shutdown(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to shutdown the HTTP server: %w", err))
	}
	if err := ctrl.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
