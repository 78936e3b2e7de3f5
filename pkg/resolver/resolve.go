// Package resolver decides which firmware a device should run.
package resolver

import (
	"fmt"
	"unicode/utf8"

	"github.com/immune-gmbh/gwcloud/pkg/catalog"
	"github.com/immune-gmbh/gwcloud/pkg/fwversion"
)

// Source describes why a firmware record was selected.
type Source int

const (
	// SourceUndefined is an invalid value of Source.
	SourceUndefined = Source(iota)

	// SourceDeviceOverride means the catalog has a "want ... for <id>" for the device.
	SourceDeviceOverride

	// SourceDefaultOverride means the model-wide "want" was used.
	SourceDefaultOverride

	// SourceLatest means the greatest version of the model was selected.
	SourceLatest
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case SourceUndefined:
		return "undefined"
	case SourceDeviceOverride:
		return "device_override"
	case SourceDefaultOverride:
		return "default_override"
	case SourceLatest:
		return "latest"
	}
	return fmt.Sprintf("unknown_source_%d", int(s))
}

// Result is the outcome of a successful resolution.
type Result struct {
	// Model is the normalized model name (as found in the catalog).
	Model string

	// Record is the firmware the device should run.
	Record catalog.FirmwareRecord

	// Source is the reason why Record was selected.
	Source Source
}

// NormalizeModel drops the hardware revision suffix letter from a model
// name reported by a device ("GW2000B" -> "GW2000").
//
// Returns false if the name is too short to have a suffix.
func NormalizeModel(rawModel string) (string, bool) {
	if utf8.RuneCountInString(rawModel) < 2 {
		return "", false
	}
	_, size := utf8.DecodeLastRuneInString(rawModel)
	return rawModel[:len(rawModel)-size], true
}

// Resolve selects the firmware record for the device.
//
// The precedence is:
//  1. the override for the (lower-cased) deviceID;
//  2. the model-wide default override;
//  3. the greatest version (see fwversion.Compare); on a tie the
//     version which appears first in the catalog wins.
//
// The returned error is always of type Error.
func Resolve(c *catalog.Catalog, rawModel, deviceID string) (Result, error) {
	model, ok := NormalizeModel(rawModel)
	if !ok {
		return Result{}, Error{Kind: ErrorKindUnknownModel, Model: rawModel}
	}

	entry := c.Models[model]
	if entry == nil {
		return Result{}, Error{Kind: ErrorKindUnknownModel, Model: model}
	}

	for _, candidate := range []struct {
		key    string
		source Source
	}{
		{deviceID, SourceDeviceOverride},
		{catalog.DefaultOverrideKey, SourceDefaultOverride},
	} {
		version, ok := entry.Overrides[candidate.key]
		if !ok {
			continue
		}
		record, ok := entry.Firmware[version]
		if !ok {
			return Result{}, Error{
				Kind:        ErrorKindDanglingOverride,
				Model:       model,
				Version:     version,
				OverrideKey: candidate.key,
			}
		}
		return Result{Model: model, Record: record, Source: candidate.source}, nil
	}

	latest, ok := Latest(entry)
	if !ok {
		return Result{}, Error{Kind: ErrorKindNoFirmwareAvailable, Model: model}
	}
	return Result{Model: model, Record: latest, Source: SourceLatest}, nil
}

// Latest returns the firmware record with the greatest version.
func Latest(entry *catalog.ModelEntry) (catalog.FirmwareRecord, bool) {
	var (
		best  catalog.FirmwareRecord
		found bool
	)
	for _, version := range entry.Versions() {
		if !found || fwversion.Compare(version, best.Version) == fwversion.Greater {
			best = entry.Firmware[version]
			found = true
		}
	}
	return best, found
}
