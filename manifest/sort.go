package manifest

import "sort"

// sortedKeys returns the keys of m in lexicographic order. Batch
// operations (spec.md §4.E "Ordering & tie-breaks") always walk the
// manifest in this order so reporting is deterministic regardless of
// map iteration order or transfer completion order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
