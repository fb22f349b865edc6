package service

import (
	"github.com/guttosm/pack-assistant/internal/domain/model"
)

// DraftSource names where a restored packing state came from.
type DraftSource string

const (
	// DraftSourceBoxes means the saved box list was the source of truth.
	DraftSourceBoxes DraftSource = "boxes"
	// DraftSourceState means only a saved packing-state map was found.
	DraftSourceState DraftSource = "state"
	// DraftSourceInitial means no draft existed and defaults were used.
	DraftSourceInitial DraftSource = "initial"
)

// Reconciliation is the live state rebuilt from a draft.
type Reconciliation struct {
	State  model.PackingStateMap
	Graph  *ConnectionGraph
	Source DraftSource
	// Orphans counts draft entries that referenced units which no longer exist.
	Orphans int
}

// ReconcileDraft rebuilds packing state and connections for freshly split
// units from whatever draft data survived. Saved boxes win over a saved
// state map because they are written after every edit. Entries for unknown
// units are dropped and units absent from the draft keep their defaults.
// Restored quantities are clamped to the unit's current size.
func ReconcileDraft(units []model.PackableUnit, draftState model.PackingStateMap, draftBoxes []model.Box) Reconciliation {
	result := Reconciliation{
		State:  InitialPackingState(units),
		Graph:  NewConnectionGraph(),
		Source: DraftSourceInitial,
	}

	sizes := make(map[string]int, len(units))
	for _, unit := range units {
		sizes[unit.UnitID] = unit.UnitQuantity
	}

	switch {
	case len(draftBoxes) > 0:
		result.Source = DraftSourceBoxes
		result.Orphans = restoreFromBoxes(&result, sizes, draftBoxes)
	case len(draftState) > 0:
		result.Source = DraftSourceState
		result.Orphans = restoreFromState(&result, units, sizes, draftState)
	}
	return result
}

func restoreFromBoxes(r *Reconciliation, sizes map[string]int, boxes []model.Box) int {
	orphans := 0
	for _, box := range boxes {
		quantities := make(map[string]int, len(box.Items))
		for _, item := range box.Items {
			quantities[item.UnitID] = item.Quantity
		}

		prev := ""
		for _, id := range boxMembers(box) {
			size, ok := sizes[id]
			if !ok {
				orphans++
				continue
			}
			r.State[id] = model.PackingState{
				Quantity:  ClampQuantity(quantities[id], size),
				BoxNumber: box.BoxNumber,
			}
			if prev != "" {
				r.Graph.AddEdge(prev, id)
			}
			prev = id
		}
	}
	return orphans
}

// boxMembers returns the registered members of a saved box, followed by any
// item ids the member list is missing.
func boxMembers(box model.Box) []string {
	seen := make(map[string]struct{}, len(box.Members)+len(box.Items))
	members := make([]string, 0, len(box.Members)+len(box.Items))
	for _, id := range box.Members {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			members = append(members, id)
		}
	}
	for _, item := range box.Items {
		if _, dup := seen[item.UnitID]; !dup {
			seen[item.UnitID] = struct{}{}
			members = append(members, item.UnitID)
		}
	}
	return members
}

func restoreFromState(r *Reconciliation, units []model.PackableUnit, sizes map[string]int, draft model.PackingStateMap) int {
	orphans := 0
	for id := range draft {
		if _, ok := sizes[id]; !ok {
			orphans++
		}
	}

	lastInBox := make(map[int]string)
	for _, unit := range units {
		saved, ok := draft[unit.UnitID]
		if !ok {
			continue
		}
		r.State[unit.UnitID] = model.PackingState{
			Quantity:  ClampQuantity(saved.Quantity, unit.UnitQuantity),
			BoxNumber: saved.BoxNumber,
		}
		if prev, shared := lastInBox[saved.BoxNumber]; shared {
			r.Graph.AddEdge(prev, unit.UnitID)
		}
		lastInBox[saved.BoxNumber] = unit.UnitID
	}
	return orphans
}

// ClampQuantity bounds a packed quantity to [0, limit].
func ClampQuantity(qty, limit int) int {
	if qty < 0 {
		return 0
	}
	if qty > limit {
		return limit
	}
	return qty
}
