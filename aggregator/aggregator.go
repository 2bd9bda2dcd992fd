// Package aggregator turns a flat scrape snapshot into the derived views:
// two-hour blocks, "next N" summaries and per-hour calendar groupings. All
// functions are pure and their output does not depend on input ordering.
package aggregator

import (
	"sort"
	"time"

	"court-sniper/types"
)

// sortSlots orders slots chronologically, court number as tie-breaker, so
// every downstream computation is deterministic.
func sortSlots(slots []types.Slot) []types.Slot {
	sorted := make([]types.Slot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].Court.Num() < sorted[j].Court.Num()
	})
	return sorted
}

// NextSlot returns the earliest slot of the snapshot.
func NextSlot(slots []types.Slot) (types.Slot, bool) {
	if len(slots) == 0 {
		return types.Slot{}, false
	}
	sorted := sortSlots(slots)
	return sorted[0], true
}

// PairAdjacentHours greedily pairs each slot with an available slot one hour
// later on the same court into a two-hour block. Processing is chronological;
// a consumed slot is never reconsidered, so no slot belongs to more than one
// block. Returns the blocks plus the unconsumed singles; blocks take
// priority, a paired slot never reappears as a single.
func PairAdjacentHours(slots []types.Slot) ([]types.TwoHourBlock, []types.Slot) {
	sorted := sortSlots(slots)
	consumed := make([]bool, len(sorted))

	var blocks []types.TwoHourBlock
	for i, s := range sorted {
		if consumed[i] {
			continue
		}
		next := s.Start.Add(time.Hour)
		for j := i + 1; j < len(sorted); j++ {
			if consumed[j] || sorted[j].Court != s.Court {
				continue
			}
			if !sorted[j].Start.Equal(next) {
				continue
			}
			blocks = append(blocks, types.TwoHourBlock{
				Court:  s.Court,
				Start:  s.Start,
				End:    s.Start.Add(2 * time.Hour),
				First:  s,
				Second: sorted[j],
			})
			consumed[i] = true
			consumed[j] = true
			break
		}
	}

	var singles []types.Slot
	for i, s := range sorted {
		if !consumed[i] {
			singles = append(singles, s)
		}
	}
	return blocks, singles
}

// TopSingles returns the earliest n one-hour slots that were not consumed
// into a block.
func TopSingles(singles []types.Slot, n int) []types.Slot {
	sorted := sortSlots(singles)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TopDoubles returns the earliest n two-hour blocks.
func TopDoubles(blocks []types.TwoHourBlock, n int) []types.TwoHourBlock {
	sorted := make([]types.TwoHourBlock, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].Court.Num() < sorted[j].Court.Num()
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

type groupKey struct {
	date    string
	hour    int
	twoHour bool
}

// GroupByTimeBlock folds the leftover singles and the two-hour blocks into
// calendar entries: one group per distinct (date, hour, duration kind),
// listing every court present in ascending numeric order. A slot consumed
// into a two-hour block never shows up in a one-hour group.
func GroupByTimeBlock(singles []types.Slot, blocks []types.TwoHourBlock) []types.TimeBlockGroup {
	groups := make(map[groupKey]*types.TimeBlockGroup)

	for _, s := range sortSlots(singles) {
		key := groupKey{date: s.Start.Format("2006-01-02"), hour: s.Start.Hour()}
		g, ok := groups[key]
		if !ok {
			g = &types.TimeBlockGroup{Date: key.date, Hour: key.hour, Link: s.Link}
			groups[key] = g
		}
		g.Courts = append(g.Courts, s.Court)
	}

	sortedBlocks := TopDoubles(blocks, len(blocks))
	for _, b := range sortedBlocks {
		key := groupKey{date: b.Start.Format("2006-01-02"), hour: b.Start.Hour(), twoHour: true}
		g, ok := groups[key]
		if !ok {
			g = &types.TimeBlockGroup{Date: key.date, Hour: key.hour, IsTwoHour: true, Link: b.First.Link}
			groups[key] = g
		}
		g.Courts = append(g.Courts, b.Court)
	}

	out := make([]types.TimeBlockGroup, 0, len(groups))
	for _, g := range groups {
		sort.Slice(g.Courts, func(i, j int) bool { return g.Courts[i].Num() < g.Courts[j].Num() })
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return !out[i].IsTwoHour && out[j].IsTwoHour
	})
	return out
}
