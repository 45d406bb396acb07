package domain

import "sort"

// MaterialCount is a derived (material, total) pair. It is never stored:
// counts are recomputed from the full event set on every read, so they are
// always consistent with the latest persisted state.
type MaterialCount struct {
	Tipo  Material `json:"tipo"`
	Total int      `json:"total"`
}

// CountsByMaterial tallies events per material, scanning the slice in the
// order given. The result is sorted by total descending; materials with
// equal totals keep the order in which they first appeared in the scan.
// Callers wanting the documented "insertion order" tie-break must pass
// events in chronological (ascending id) order.
//
// A non-empty filter restricts the result to that single material.
func CountsByMaterial(events []Collection, filter Material) []MaterialCount {
	totals := make(map[Material]int)
	var seen []Material

	for _, e := range events {
		if filter != "" && e.Tipo != filter {
			continue
		}
		if _, ok := totals[e.Tipo]; !ok {
			seen = append(seen, e.Tipo)
		}
		totals[e.Tipo]++
	}

	counts := make([]MaterialCount, 0, len(seen))
	for _, m := range seen {
		counts = append(counts, MaterialCount{Tipo: m, Total: totals[m]})
	}
	// SliceStable keeps first-seen order among equal totals.
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Total > counts[j].Total
	})
	return counts
}
