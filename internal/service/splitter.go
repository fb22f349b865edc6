package service

import (
	"errors"
	"fmt"

	"github.com/guttosm/pack-assistant/internal/domain/model"
)

var (
	// ErrInvalidQuantity is returned when a line item has a non-positive ordered quantity.
	ErrInvalidQuantity = errors.New("ordered quantity must be positive")
	// ErrInvalidCapacity is returned when a max-per-box capacity is not positive.
	ErrInvalidCapacity = errors.New("max quantity per box must be positive")
	// ErrDuplicateUnit is returned when a line's unit id is already taken by
	// another line or by another line's split fragment.
	ErrDuplicateUnit = errors.New("unit id collides with another unit")
)

// splitSuffix separates the source line id from the fragment index in split unit ids.
const splitSuffix = "_split_"

// SplitError reports the line item that could not be split.
type SplitError struct {
	ItemID string
	Err    error
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("split item %q: %v", e.ItemID, e.Err)
}

func (e *SplitError) Unwrap() error {
	return e.Err
}

// Capacities maps catalog numbers to their max quantity per box.
// A missing catalog number means the item is unbounded.
type Capacities map[string]int

// Lookup returns the capacity for a catalog number, if one is set.
func (c Capacities) Lookup(catalogNumber string) (int, bool) {
	capacity, ok := c[catalogNumber]
	return capacity, ok
}

// ItemSplitter expands order lines into box-sized packable units.
type ItemSplitter struct {
	capacities Capacities
}

// NewItemSplitter creates a splitter over already-resolved capacities.
func NewItemSplitter(capacities Capacities) *ItemSplitter {
	if capacities == nil {
		capacities = Capacities{}
	}
	return &ItemSplitter{capacities: capacities}
}

// Split expands every item into one or more packable units, preserving
// item order. Unit ids are derived from the line id and split index, so
// splitting identical input twice yields identical ids. Ids are unique
// within the result; a line whose ids collide with an earlier line fails.
func (s *ItemSplitter) Split(items []model.OrderLineItem) ([]model.PackableUnit, error) {
	units := make([]model.PackableUnit, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.OrderedQuantity <= 0 {
			return nil, &SplitError{ItemID: item.ItemID, Err: ErrInvalidQuantity}
		}

		capacity, ok := s.capacities.Lookup(item.CatalogNumber)
		if ok && capacity <= 0 {
			return nil, &SplitError{ItemID: item.ItemID, Err: ErrInvalidCapacity}
		}

		produced := []model.PackableUnit{wholeUnit(item)}
		if ok && item.OrderedQuantity > capacity {
			produced = splitItem(item, capacity)
		}
		for _, unit := range produced {
			if _, dup := seen[unit.UnitID]; dup {
				return nil, &SplitError{ItemID: item.ItemID, Err: ErrDuplicateUnit}
			}
			seen[unit.UnitID] = struct{}{}
		}
		units = append(units, produced...)
	}
	return units, nil
}

func wholeUnit(item model.OrderLineItem) model.PackableUnit {
	return model.PackableUnit{
		UnitID:        item.ItemID,
		SourceItemID:  item.ItemID,
		CatalogNumber: item.CatalogNumber,
		Description:   item.Description,
		UnitQuantity:  item.OrderedQuantity,
		UnitWeight:    item.UnitWeight,
	}
}

func splitItem(item model.OrderLineItem, capacity int) []model.PackableUnit {
	fullBoxes := item.OrderedQuantity / capacity
	remainder := item.OrderedQuantity % capacity
	total := fullBoxes
	if remainder > 0 {
		total++
	}

	units := make([]model.PackableUnit, 0, total)
	for i := 1; i <= total; i++ {
		qty := capacity
		if i > fullBoxes {
			qty = remainder
		}
		unit := wholeUnit(item)
		unit.UnitID = SplitUnitID(item.ItemID, i)
		unit.UnitQuantity = qty
		unit.IsSplit = true
		unit.SplitIndex = i
		unit.SplitTotal = total
		units = append(units, unit)
	}
	return units
}

// SplitUnitID returns the id of the index-th fragment of a split line.
func SplitUnitID(lineID string, index int) string {
	return fmt.Sprintf("%s%s%d", lineID, splitSuffix, index)
}

// InitialPackingState returns the default state for freshly split units:
// fully packed, one unit per box in unit order.
func InitialPackingState(units []model.PackableUnit) model.PackingStateMap {
	state := make(model.PackingStateMap, len(units))
	for i, unit := range units {
		state[unit.UnitID] = model.PackingState{
			Quantity:  unit.UnitQuantity,
			BoxNumber: i + 1,
		}
	}
	return state
}
