package service

import (
	"math"

	"github.com/guttosm/pack-assistant/internal/domain/model"
)

// AssignBoxes derives the box list from the units, their packing state and
// the connection graph. Each connected component becomes one box, numbered
// 1..N in component order; box numbers stored in the state are ignored.
//
// A component whose units are all at quantity zero is kept as an empty box
// (no items, members listed), so numbering stays contiguous and the draft
// round-trips. Units missing from the state count as quantity zero.
func AssignBoxes(units []model.PackableUnit, state model.PackingStateMap, graph *ConnectionGraph) []model.Box {
	if len(units) == 0 {
		return []model.Box{}
	}
	if graph == nil {
		graph = NewConnectionGraph()
	}

	byID := make(map[string]model.PackableUnit, len(units))
	ids := make([]string, len(units))
	for i, unit := range units {
		byID[unit.UnitID] = unit
		ids[i] = unit.UnitID
	}

	components := graph.ConnectedComponents(ids)
	boxes := make([]model.Box, 0, len(components))
	for i, members := range components {
		box := model.Box{
			BoxNumber: i + 1,
			Items:     make([]model.BoxItem, 0, len(members)),
			Members:   make([]string, 0, len(members)),
		}
		weight := 0.0
		for _, id := range members {
			unit := byID[id]
			box.Members = append(box.Members, id)
			qty := state[id].Quantity
			if qty <= 0 {
				continue
			}
			box.Items = append(box.Items, model.BoxItem{
				UnitID:        id,
				CatalogNumber: unit.CatalogNumber,
				Quantity:      qty,
			})
			weight += float64(qty) * unit.UnitWeight
		}
		box.TotalWeight = roundWeight(weight)
		boxes = append(boxes, box)
	}
	return boxes
}

// roundWeight trims float noise so repeated derivations compare equal.
func roundWeight(w float64) float64 {
	return math.Round(w*1000) / 1000
}

// SyncBoxNumbers writes the derived box numbers back into the state.
func SyncBoxNumbers(state model.PackingStateMap, boxes []model.Box) {
	for _, box := range boxes {
		for _, id := range box.Members {
			s := state[id]
			s.BoxNumber = box.BoxNumber
			state[id] = s
		}
	}
}
