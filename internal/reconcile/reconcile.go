// Package reconcile detects coupons that left the active set between two
// observations and turns those transitions into single removal notifications.
package reconcile

import "sort"

// Reconcile returns the ids in previous that are absent from current, sorted.
// Ids only present in current are never reported.
func Reconcile(previous, current []string) []string {
	cur := make(map[string]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(previous))
	removed := make([]string, 0)
	for _, id := range previous {
		if _, ok := cur[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		removed = append(removed, id)
	}
	sort.Strings(removed)
	return removed
}
