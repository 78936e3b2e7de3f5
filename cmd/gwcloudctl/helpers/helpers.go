// Package helpers contains code shared by gwcloudctl commands.
package helpers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/fatih/color"

	"github.com/immune-gmbh/gwcloud/pkg/catalogsource"
)

// CatalogSource returns the catalog source given a URL or a local path.
func CatalogSource(catalogURL string) (catalogsource.Source, error) {
	if !strings.Contains(catalogURL, "://") {
		path, err := filepath.Abs(catalogURL)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve path '%s': %w", catalogURL, err)
		}
		catalogURL = "fs://" + filepath.ToSlash(path)
	}
	return catalogsource.New(catalogURL)
}

// Fprintf is fmt.Fprintf which colours the output if enableColors is true.
func Fprintf(w io.Writer, enableColors bool, colorAttr color.Attribute, format string, args ...any) {
	if !enableColors {
		fmt.Fprintf(w, format, args...)
		return
	}
	color.New(colorAttr).Fprintf(w, format, args...)
}

// maxFirmwareSize limits the size of a downloaded firmware binary.
const maxFirmwareSize = 16 << 20

// ReadFirmwareFile returns the content of a firmware binary given its URL
// or a local path.
func ReadFirmwareFile(ctx context.Context, location string) ([]byte, error) {
	if !strings.Contains(location, "://") {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("unable to read '%s': %w", location, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create a request to '%s': %w", location, err)
	}
	logger.FromCtx(ctx).Debugf("downloading '%s'", location)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download '%s': %w", location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download '%s': status code %d", location, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFirmwareSize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to download '%s': %w", location, err)
	}
	if len(data) > maxFirmwareSize {
		return nil, fmt.Errorf("'%s' is larger than %d bytes", location, maxFirmwareSize)
	}
	return data, nil
}
