package convert

import (
	"sort"

	"github.com/vrsc-reserve/engine/bigmath"
	"github.com/vrsc-reserve/engine/types"
)

// flowEntry is one reserve's net fractional-equivalent flow, keyed by the
// depth (in fractional-equivalent units, normalized by reserve weight) at
// which it fully drains. Mirrors one entry of original_source's
// std::multimap<CAmount, std::pair<CAmount, uint160>>.
type flowEntry struct {
	key       int64
	remaining int64
	id        types.CurrencyID
}

// layer is a common horizontal slice across every reserve still active at
// this depth: aggregate weight, aggregate fractional-equivalent volume, and
// the participating reserve ids.
type layer struct {
	weight int64
	amount int64
	ids    []types.CurrencyID
}

// buildLayers turns a set of sorted flow entries into layers, waterfalling
// from the shallowest threshold to the deepest, the way original_source
// walks a sorted multimap with successive upper_bound calls.
func buildLayers(entries []flowEntry, weightOf map[types.CurrencyID]int64, maxReserveRatio int64) ([]layer, bool) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	var layers []layer
	var layerAmount int64
	idx := 0

	for {
		for idx < len(entries) && entries[idx].key <= layerAmount {
			idx++
		}
		if idx >= len(entries) {
			break
		}
		layerStart := layerAmount
		layerAmount = entries[idx].key
		layerHeight := layerAmount - layerStart

		var lyr layer
		for j := idx; j < len(entries); j++ {
			weight := weightOf[entries[j].id]
			curAmt, ok := bigmath.MulDiv(layerHeight, weight, maxReserveRatio)
			if !ok {
				return nil, false
			}
			entries[j].remaining -= curAmt
			if entries[j].remaining < 0 {
				return nil, false
			}
			lyr.weight += weight
			lyr.amount += curAmt
			lyr.ids = append(lyr.ids, entries[j].id)
		}
		layers = append(layers, lyr)
	}

	return layers, true
}
