package main

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/immune-gmbh/gwcloud/pkg/catalogsource"
)

func TestPurgeOnSignal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "firmware-info")
	require.NoError(t, os.WriteFile(path, []byte("model GW1100\nfirmware V1\nfile1 a.bin\n"), 0640))

	src, err := catalogsource.New("fs://"+path, catalogsource.OptionCacheSize(2))
	require.NoError(t, err)
	defer src.Close()

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	first, err := src.Load(ctx)
	require.NoError(t, err)
	same, err := src.Load(ctx)
	require.NoError(t, err)
	require.Same(t, first, same)

	signals := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		purgeOnSignal(ctx, src, signals)
	}()
	signals <- syscall.SIGHUP

	require.Eventually(t, func() bool {
		c, err := src.Load(ctx)
		return err == nil && c != first
	}, time.Second, time.Millisecond)

	cancelFn()
	<-done
}

func TestPurgeOnSignalWithoutCache(t *testing.T) {
	src, err := catalogsource.New("fs:///nonexistent/firmware-info")
	require.NoError(t, err)

	// must not block on a source without a cache
	purgeOnSignal(context.Background(), src, make(chan os.Signal))
}
