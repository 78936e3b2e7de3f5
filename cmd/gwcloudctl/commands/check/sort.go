package check

import (
	"sort"

	"github.com/immune-gmbh/gwcloud/pkg/catalog"
)

// sortedOverrideKeys returns the device IDs of overrides sorted, followed
// by the default override key (if any).
func sortedOverrideKeys(entry *catalog.ModelEntry) []string {
	keys := make([]string, 0, len(entry.Overrides))
	for key := range entry.Overrides {
		if key != catalog.DefaultOverrideKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	if _, ok := entry.Overrides[catalog.DefaultOverrideKey]; ok {
		keys = append(keys, catalog.DefaultOverrideKey)
	}
	return keys
}
