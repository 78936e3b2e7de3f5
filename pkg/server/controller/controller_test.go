package controller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/immune-gmbh/gwcloud/pkg/astro"
	"github.com/immune-gmbh/gwcloud/pkg/catalog"
	"github.com/immune-gmbh/gwcloud/pkg/catalogsource"
	"github.com/immune-gmbh/gwcloud/pkg/envelope"
)

const testCatalog = `
urlbase https://ota.example.net/fw

model GW1100
	firmware V1.0.0
		file1 gw1100/V1.0.0/user1.bin
		file2 gw1100/V1.0.0/user2.bin
	firmware V2.3.2
		file1 gw1100/V2.3.2/user1.bin
		file2 gw1100/V2.3.2/user2.bin
		log   Fixed a bug\r\nFixed another
	firmware V2.1.8
		file1 gw1100/V2.1.8/user1.bin

model X
	firmware V1.0.0
		file1 x/V1.0.0.bin
	firmware V2.0.0
		file1 x/V2.0.0.bin
	firmware V3.0.0
		file1 x/V3.0.0.bin
	want V1.0.0 for aa:bb:cc:dd:ee:ff
	want V2.0.0

model BROKEN
	firmware V1.0.0
		file1 broken.bin
	want V9.9.9
`

var testTime = time.Unix(1719790567, 0)

type catalogSourceMock struct {
	catalog  *catalog.Catalog
	loadErr  error
	closeErr error
	closed   int
}

func (m *catalogSourceMock) Load(context.Context) (*catalog.Catalog, error) {
	return m.catalog, m.loadErr
}

func (m *catalogSourceMock) Close() error {
	m.closed++
	return m.closeErr
}

func newTestController(t *testing.T, catalogText string) (*Controller, string) {
	path := filepath.Join(t.TempDir(), "firmware-info")
	require.NoError(t, os.WriteFile(path, []byte(catalogText), 0640))

	ctrl, err := New(context.Background(), catalogsource.NewFile(path), astro.Site{
		Latitude:  51.5074,
		Longitude: -0.1278,
		Location:  time.UTC,
	})
	require.NoError(t, err)
	ctrl.Now = func() time.Time { return testTime }
	t.Cleanup(func() {
		require.NoError(t, ctrl.Close())
	})
	return ctrl, path
}

func TestControllerCreation(t *testing.T) {
	t.Run("successful", func(t *testing.T) {
		src := &catalogSourceMock{}
		ctrl, err := New(context.Background(), src, astro.Site{})
		require.NoError(t, err)
		require.NotNil(t, ctrl)
		require.NoError(t, ctrl.Close())
		require.Equal(t, 1, src.closed)
		require.Error(t, ctrl.Context.Err())
	})

	t.Run("no_catalog_source", func(t *testing.T) {
		_, err := New(context.Background(), nil, astro.Site{})
		require.ErrorAs(t, err, &ErrInitCatalogSource{})
	})

	t.Run("close_error", func(t *testing.T) {
		closeErr := errors.New("unable to close")
		ctrl, err := New(context.Background(), &catalogSourceMock{closeErr: closeErr}, astro.Site{})
		require.NoError(t, err)
		err = ctrl.Close()
		require.ErrorIs(t, err, closeErr)
		require.ErrorAs(t, err, &ErrCloseCatalogSource{})
	})
}

func params(id, model, version string) map[string]string {
	return map[string]string{
		"id":      id,
		"model":   model,
		"version": version,
		"time":    "1719790567",
		"user":    "1",
		"sign":    "63A79A95BEED8A20ACA9C34B8AFD046D",
	}
}

func TestCheckFirmwareVersion(t *testing.T) {
	ctx := context.Background()
	ctrl, _ := newTestController(t, testCatalog)

	t.Run("latest", func(t *testing.T) {
		resp := ctrl.CheckFirmwareVersion(ctx, params("DC:DA:0C:FA:C5:E0", "GW1100C", "V2.1.8"))
		require.Equal(t, envelope.CodeSuccess, resp.Code)
		require.Equal(t, envelope.MsgSuccess, resp.Msg)
		require.Equal(t, testTime.Unix(), resp.Time)
		require.NotNil(t, resp.Data)
		require.Equal(t, "V2.3.2", resp.Data.Name)
		require.Equal(t, `Fixed a bug\r\nFixed another`, resp.Data.Content)
		require.Equal(t, "https://ota.example.net/fw/gw1100/V2.3.2/user1.bin", resp.Data.Attach1File)
		require.Equal(t, "https://ota.example.net/fw/gw1100/V2.3.2/user2.bin", resp.Data.Attach2File)
	})

	t.Run("up_to_date", func(t *testing.T) {
		resp := ctrl.CheckFirmwareVersion(ctx, params("DC:DA:0C:FA:C5:E0", "GW1100C", "v2.3.2"))
		require.Equal(t, envelope.CodeFailure, resp.Code)
		require.Equal(t, envelope.MsgUpToDate, resp.Msg)
		require.NotNil(t, resp.Data)
	})

	t.Run("override_precedence", func(t *testing.T) {
		resp := ctrl.CheckFirmwareVersion(ctx, params("AA:BB:CC:DD:EE:FF", "XA", "V0"))
		require.Equal(t, "V1.0.0", resp.Data.Name)

		resp = ctrl.CheckFirmwareVersion(ctx, params("11:22:33:44:55:66", "XA", "V0"))
		require.Equal(t, "V2.0.0", resp.Data.Name)
	})

	t.Run("idempotent", func(t *testing.T) {
		first := ctrl.CheckFirmwareVersion(ctx, params("DC:DA:0C:FA:C5:E0", "GW1100C", "V2.1.8"))
		second := ctrl.CheckFirmwareVersion(ctx, params("DC:DA:0C:FA:C5:E0", "GW1100C", "V2.1.8"))
		require.Equal(t, first.Data, second.Data)
	})

	t.Run("unknown_model", func(t *testing.T) {
		resp := ctrl.CheckFirmwareVersion(ctx, params("DC:DA:0C:FA:C5:E0", "GW2000B", "V3.0.0"))
		require.Equal(t, envelope.CodeInvalidModel, resp.Code)
		require.Equal(t, envelope.MsgInvalidModel, resp.Msg)
		require.True(t, resp.IsError())
	})

	t.Run("dangling_override", func(t *testing.T) {
		resp := ctrl.CheckFirmwareVersion(ctx, params("DC:DA:0C:FA:C5:E0", "BROKENA", "V1.0.0"))
		require.Equal(t, envelope.CodeFailure, resp.Code)
		require.Equal(t, envelope.MsgInternalConfigError, resp.Msg)
		require.True(t, resp.IsError())
	})

	t.Run("missing_fields", func(t *testing.T) {
		resp := ctrl.CheckFirmwareVersion(ctx, map[string]string{"version": "V1"})
		require.Equal(t, envelope.CodeInvalidParams, resp.Code)
		require.Equal(t, "id require", resp.Msg)

		resp = ctrl.CheckFirmwareVersion(ctx, map[string]string{"id": "x", "model": "GW1100C"})
		require.Equal(t, "version require", resp.Msg)
	})
}

func TestCheckFirmwareVersionBrokenCatalog(t *testing.T) {
	ctx := context.Background()
	ctrl, path := newTestController(t, testCatalog)

	require.NoError(t, os.WriteFile(path, []byte("model GW1100\nfile1 a.bin\n"), 0640))
	resp := ctrl.CheckFirmwareVersion(ctx, params("DC:DA:0C:FA:C5:E0", "GW1100C", "V2.1.8"))
	require.Equal(t, envelope.CodeFailure, resp.Code)
	require.Equal(t, envelope.MsgInternalConfigError, resp.Msg)
	require.True(t, resp.IsError())

	require.NoError(t, os.Remove(path))
	resp = ctrl.CheckFirmwareVersion(ctx, params("DC:DA:0C:FA:C5:E0", "GW1100C", "V2.1.8"))
	require.Equal(t, envelope.MsgInternalConfigError, resp.Msg)

	// field errors are reported before the catalog is touched
	resp = ctrl.CheckFirmwareVersion(ctx, params("", "GW1100C", "V2.1.8"))
	require.Equal(t, "id require", resp.Msg)
}

func TestCollaborators(t *testing.T) {
	ctx := context.Background()
	ctrl, _ := newTestController(t, testCatalog)

	ctrl.Initialize(ctx, map[string]string{"mac": "30:83:98:7A:E2:9D", "last_ret": "-1"})

	id0 := ctrl.ReportTelemetry(ctx, map[string]string{"stationtype": "GW1100B_V2.3.2", "tempf": "64.40"})
	id1 := ctrl.ReportTelemetry(ctx, map[string]string{"stationtype": "GW1100B_V2.3.2", "tempf": "64.40"})
	require.NotEqual(t, id0, id1)

	report := ctrl.TimeReport(ctx, map[string]string{"fields": "timezone,utc_offset,dst,date_sunrise,date_sunset"})
	require.Equal(t, "UTC", report.TimeZone)
	require.Equal(t, 0, report.UTCOffset)
	require.False(t, report.DST)
	require.Equal(t, astro.DayKindNormal, report.DayKind)
}

func TestCheckFirmwareVersionStrictCatalogSyntax(t *testing.T) {
	ctx := context.Background()

	t.Run("file2_after_file", func(t *testing.T) {
		ctrl, _ := newTestController(t, "urlbase http://u\nmodel X\nfirmware V1\nfile a\nfile2 b\n")
		resp := ctrl.CheckFirmwareVersion(ctx, params("aa:bb:cc:dd:ee:ff", "XA", "V0"))
		require.Equal(t, envelope.CodeFailure, resp.Code)
		require.Equal(t, envelope.MsgInternalConfigError, resp.Msg)
		require.True(t, resp.IsError())
	})

	t.Run("uppercase_for", func(t *testing.T) {
		ctrl, _ := newTestController(t, "urlbase http://u\nmodel X\n"+
			"firmware V1.0.0\nfile1 a\nfirmware V2.0.0\nfile1 b\n"+
			"want V1.0.0 FOR aa:bb:cc:dd:ee:ff\n")
		// "V1.0.0 FOR aa:bb:cc:dd:ee:ff" is a model-wide override to a missing version
		resp := ctrl.CheckFirmwareVersion(ctx, params("aa:bb:cc:dd:ee:ff", "XA", "V0"))
		require.Equal(t, envelope.MsgInternalConfigError, resp.Msg)
		require.True(t, resp.IsError())
	})
}
