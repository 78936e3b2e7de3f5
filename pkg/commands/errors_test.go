package commands

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	base := errors.New("catalog is broken")

	err := fmt.Errorf("check: %w", SilentError{Err: ErrExitCode{Err: base, Code: 4}})
	require.ErrorIs(t, err, base)

	var exitCoder ExitCoder
	require.ErrorAs(t, err, &exitCoder)
	require.Equal(t, 4, exitCoder.ExitCode())
	require.Equal(t, "catalog is broken", SilentError{Err: base}.Error())

	require.Contains(t, ErrArgs{Err: base}.Error(), "invalid arguments")
}
