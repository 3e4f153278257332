package store

import "sort"

// MergeMembers returns the sorted union of two member lists. Duplicates
// across the inputs collapse; the first element of the result is always the
// minimal id, which is the root of the merged group.
func MergeMembers(a, b []int64) []int64 {

	seen := make(map[int64]bool, len(a)+len(b))
	merged := make([]int64, 0, len(a)+len(b))
	for _, id := range a {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	return merged
}
