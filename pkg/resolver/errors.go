package resolver

import (
	"fmt"
)

// ErrorKind is the class of a resolution failure.
type ErrorKind int

const (
	// ErrorKindUndefined is an invalid value of ErrorKind.
	ErrorKindUndefined = ErrorKind(iota)

	// ErrorKindUnknownModel means the catalog has no such model.
	ErrorKindUnknownModel

	// ErrorKindDanglingOverride means an override points to a version
	// which is not in the model's firmware list.
	ErrorKindDanglingOverride

	// ErrorKindNoFirmwareAvailable means the model has no firmware at all.
	ErrorKindNoFirmwareAvailable
)

// String implements fmt.Stringer.
func (kind ErrorKind) String() string {
	switch kind {
	case ErrorKindUndefined:
		return "undefined"
	case ErrorKindUnknownModel:
		return "unknown_model"
	case ErrorKindDanglingOverride:
		return "dangling_override"
	case ErrorKindNoFirmwareAvailable:
		return "no_firmware_available"
	}
	return fmt.Sprintf("unknown_resolve_error_kind_%d", int(kind))
}

// Error is returned by Resolve.
type Error struct {
	Kind ErrorKind

	// Model is the normalized model name.
	Model string

	// Version is the selected version, set only for ErrorKindDanglingOverride.
	Version string

	// OverrideKey is the key of the override which selected Version.
	OverrideKey string
}

func (err Error) Error() string {
	switch err.Kind {
	case ErrorKindUnknownModel:
		return fmt.Sprintf("unknown model '%s'", err.Model)
	case ErrorKindDanglingOverride:
		return fmt.Sprintf("model '%s': override '%s' wants version '%s', which is not in the catalog",
			err.Model, err.OverrideKey, err.Version)
	case ErrorKindNoFirmwareAvailable:
		return fmt.Sprintf("model '%s' has no firmware", err.Model)
	}
	return fmt.Sprintf("model '%s': resolve error %s", err.Model, err.Kind)
}
