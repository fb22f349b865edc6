// Package model defines the core domain entities for the packing assistant.
package model

import "time"

// OrderLineItem is one ordered product line as fetched from the order source.
//
// @Description Ordered product line
type OrderLineItem struct {
	// ItemID is the line identifier, unique within the order.
	ItemID          string  `bson:"item_id" json:"item_id" example:"line-1"`
	CatalogNumber   string  `bson:"catalog_number" json:"catalog_number" example:"X1"`
	Description     string  `bson:"description,omitempty" json:"description,omitempty"`
	OrderedQuantity int     `bson:"ordered_quantity" json:"ordered_quantity" example:"25"`
	UnitPrice       float64 `bson:"unit_price" json:"unit_price" example:"4.5"`
	// UnitWeight is the weight of a single unit in kilograms, zero when unknown.
	UnitWeight float64 `bson:"unit_weight,omitempty" json:"unit_weight,omitempty" example:"0.2"`
}

// Order groups the line items of a single customer order.
type Order struct {
	ID        string          `bson:"_id" json:"id"`
	Customer  string          `bson:"customer,omitempty" json:"customer,omitempty"`
	Items     []OrderLineItem `bson:"items" json:"items"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
}

// PackableUnit is the atomic thing an operator packs. It is derived from an
// OrderLineItem by splitting and never changes after creation.
type PackableUnit struct {
	UnitID        string  `json:"unit_id" example:"line-1_split_2"`
	SourceItemID  string  `json:"source_item_id" example:"line-1"`
	CatalogNumber string  `json:"catalog_number" example:"X1"`
	Description   string  `json:"description,omitempty"`
	UnitQuantity  int     `json:"unit_quantity" example:"10"`
	UnitWeight    float64 `json:"unit_weight,omitempty"`
	IsSplit       bool    `json:"is_split"`
	// SplitIndex and SplitTotal are 1-based and only set when IsSplit is true.
	SplitIndex int `json:"split_index,omitempty" example:"2"`
	SplitTotal int `json:"split_total,omitempty" example:"3"`
}

// PackingState is the mutable packing progress of one unit.
type PackingState struct {
	Quantity  int `bson:"quantity" json:"quantity" example:"5"`
	BoxNumber int `bson:"box_number" json:"box_number" example:"1"`
}

// PackingStateMap maps unit ids to their packing state.
type PackingStateMap map[string]PackingState

// Clone returns an independent copy of the map.
func (m PackingStateMap) Clone() PackingStateMap {
	out := make(PackingStateMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Connection links two units that must end up in the same box.
type Connection struct {
	ID   string `json:"id" example:"line-1->line-2"`
	From string `json:"from" example:"line-1"`
	To   string `json:"to" example:"line-2"`
}

// BoxItem is a single packed unit inside a box.
type BoxItem struct {
	UnitID        string `bson:"unit_id" json:"unit_id"`
	CatalogNumber string `bson:"catalog_number" json:"catalog_number"`
	Quantity      int    `bson:"quantity" json:"quantity"`
}

// Box is the derived packing unit sent downstream to label printing and invoicing.
//
// @Description Derived shipping box
type Box struct {
	BoxNumber int       `bson:"box_number" json:"box_number" example:"1"`
	Items     []BoxItem `bson:"items" json:"items"`
	// Members lists every unit registered in the box, zero-quantity ones included.
	Members     []string `bson:"members" json:"members"`
	TotalWeight float64  `bson:"total_weight" json:"total_weight" example:"2.5"`
}

// IsEmpty reports whether the box carries no packed items.
func (b Box) IsEmpty() bool {
	return len(b.Items) == 0
}

// TotalQuantity returns the number of units packed in the box.
func (b Box) TotalQuantity() int {
	total := 0
	for _, item := range b.Items {
		total += item.Quantity
	}
	return total
}

// MaxPerBoxSetting caps how many units of a catalog number fit in one box.
type MaxPerBoxSetting struct {
	CatalogNumber string    `bson:"_id" json:"catalog_number" example:"X1"`
	MaxQuantity   int       `bson:"max_quantity" json:"max_quantity" example:"10"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
	UpdatedBy     string    `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// Draft is the persisted in-progress packing state of an order.
type Draft struct {
	OrderID      string          `bson:"_id" json:"order_id"`
	PackingState PackingStateMap `bson:"packing_state,omitempty" json:"packing_state,omitempty"`
	Boxes        []Box           `bson:"boxes,omitempty" json:"boxes,omitempty"`
	StateSavedAt time.Time       `bson:"state_saved_at,omitempty" json:"state_saved_at,omitempty"`
	BoxesSavedAt time.Time       `bson:"boxes_saved_at,omitempty" json:"boxes_saved_at,omitempty"`
	UpdatedBy    string          `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}
