package catalogsource

import (
	"fmt"
)

// ErrOpen means the catalog could not be retrieved from its backing storage.
type ErrOpen struct {
	Location string
	Err      error
}

func (err ErrOpen) Error() string {
	return fmt.Sprintf("unable to open catalog '%s': %v", err.Location, err.Err)
}

func (err ErrOpen) Unwrap() error {
	return err.Err
}
