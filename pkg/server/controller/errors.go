package controller

import (
	"errors"
	"fmt"
)

var errNilCatalogSource = errors.New("catalog source is not set")

// ErrInitCatalogSource means the controller cannot be created because of
// the catalog source.
type ErrInitCatalogSource struct {
	Err error
}

func (err ErrInitCatalogSource) Error() string {
	return fmt.Sprintf("unable to initialize the catalog source: %v", err.Err)
}

func (err ErrInitCatalogSource) Unwrap() error {
	return err.Err
}

// ErrCloseCatalogSource means the catalog source returned an error on Close.
type ErrCloseCatalogSource struct {
	Err error
}

func (err ErrCloseCatalogSource) Error() string {
	return fmt.Sprintf("unable to close the catalog source: %v", err.Err)
}

func (err ErrCloseCatalogSource) Unwrap() error {
	return err.Err
}

// ErrLoadCatalog means the catalog could not be read or parsed.
type ErrLoadCatalog struct {
	Err error
}

func (err ErrLoadCatalog) Error() string {
	return fmt.Sprintf("unable to load the firmware catalog: %v", err.Err)
}

func (err ErrLoadCatalog) Unwrap() error {
	return err.Err
}
