// Package catalog contains the in-memory representation of the firmware
// catalog ("firmware-info" file) and its parser.
//
// The catalog is a human-edited text file, for example:
//
//	urlbase https://ota.example.net/firmware
//
//	model GW1100
//	    firmware V2.3.2
//	        file1 gw1100/V2.3.2/user1.bin
//	        file2 gw1100/V2.3.2/user2.bin
//	        log   - Fixed a bug\r\n- Fixed another
//	    firmware V2.1.8
//	        file1 gw1100/V2.1.8/user1.bin
//	    want V2.1.8 for dc:da:0c:fa:c5:e0
//	    want V2.3.2   # everybody else
package catalog

// DefaultOverrideKey is the key of the model-wide override in
// ModelEntry.Overrides.
const DefaultOverrideKey = "default"

// FirmwareRecord describes a single firmware release of a model.
type FirmwareRecord struct {
	// Version is the version string exactly as written in the catalog.
	Version string

	// File1 is the path (relative to Catalog.URLBase) of the first
	// (or the only) firmware binary.
	File1 string

	// File2 is the path of the second binary for two-binary models.
	// Empty if the model uses a single binary.
	File2 string

	// Changelog is a pre-escaped text, it may contain two-character
	// sequences like `\r` and `\n` which are passed to devices as is.
	Changelog string
}

// HasFile2 returns true if the firmware consists of two binaries.
func (r FirmwareRecord) HasFile2() bool {
	return r.File2 != ""
}

// ModelEntry contains everything known about a single device model.
type ModelEntry struct {
	// Name is the model name as written in the catalog (e.g. "GW2000").
	Name string

	// Firmware maps a version string to its record.
	Firmware map[string]FirmwareRecord

	// Overrides maps a lower-cased device ID (or DefaultOverrideKey)
	// to the version the device should run.
	Overrides map[string]string

	// versionOrder is the list of keys of Firmware in order of appearance.
	versionOrder []string
}

// NewModelEntry returns an empty ModelEntry.
func NewModelEntry(name string) *ModelEntry {
	return &ModelEntry{
		Name:      name,
		Firmware:  map[string]FirmwareRecord{},
		Overrides: map[string]string{},
	}
}

// Versions returns all firmware versions of the model in the order
// they first appeared in the catalog.
func (m *ModelEntry) Versions() []string {
	result := make([]string, len(m.versionOrder))
	copy(result, m.versionOrder)
	return result
}

// Put adds or replaces a firmware record. A replaced record keeps
// its first-seen position in Versions.
func (m *ModelEntry) Put(record FirmwareRecord) {
	if _, ok := m.Firmware[record.Version]; !ok {
		m.versionOrder = append(m.versionOrder, record.Version)
	}
	m.Firmware[record.Version] = record
}

// Catalog is the parsed firmware catalog.
type Catalog struct {
	// URLBase is prepended (with a "/" separator) to firmware file names.
	URLBase string

	// Models maps a model name (case-sensitive) to its entry.
	Models map[string]*ModelEntry

	modelOrder []string
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{
		Models: map[string]*ModelEntry{},
	}
}

// ModelNames returns the names of all models in order of appearance.
func (c *Catalog) ModelNames() []string {
	result := make([]string, len(c.modelOrder))
	copy(result, c.modelOrder)
	return result
}

// OpenModel creates a new empty ModelEntry, replacing the existing one
// with the same name if any.
func (c *Catalog) OpenModel(name string) *ModelEntry {
	if _, ok := c.Models[name]; !ok {
		c.modelOrder = append(c.modelOrder, name)
	}
	entry := NewModelEntry(name)
	c.Models[name] = entry
	return entry
}

// FileURL returns the download URL of the given firmware file.
func (c *Catalog) FileURL(file string) string {
	return c.URLBase + "/" + file
}
