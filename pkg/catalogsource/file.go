package catalogsource

import (
	"context"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/immune-gmbh/gwcloud/pkg/catalog"
)

// File is a catalog stored in a local file.
type File struct {
	Path string
}

var (
	_ Source  = (*File)(nil)
	_ Stamper = (*File)(nil)
)

// NewFile returns a new instance of File.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Load implements Source.
func (f *File) Load(ctx context.Context) (*catalog.Catalog, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, ErrOpen{Location: f.Path, Err: err}
	}
	defer file.Close()

	logger.FromCtx(ctx).Tracef("parsing catalog '%s'", f.Path)
	return catalog.Parse(file)
}

// Stamp implements Stamper.
func (f *File) Stamp(ctx context.Context) (string, error) {
	stat, err := os.Stat(f.Path)
	if err != nil {
		return "", ErrOpen{Location: f.Path, Err: err}
	}
	return fmt.Sprintf("%s:%d:%d", f.Path, stat.ModTime().UnixNano(), stat.Size()), nil
}

// String implements Source.
func (f *File) String() string {
	return "fs://" + f.Path
}

// Close implements io.Closer.
func (f *File) Close() error {
	return nil
}
