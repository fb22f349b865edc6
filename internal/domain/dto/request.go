// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

import (
	"strings"

	"github.com/guttosm/pack-assistant/internal/domain/model"
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ImportOrderRequest represents the JSON request body for storing an order.
//
// @Description Order line items to import
// @Example {"customer": "ACME", "items": [{"item_id": "line-1", "catalog_number": "X1", "ordered_quantity": 25}]}
type ImportOrderRequest struct {
	// Customer is an optional customer reference.
	Customer string `json:"customer,omitempty" example:"ACME"`
	// Items are the order's line items in order-list order.
	Items []model.OrderLineItem `json:"items" binding:"required,min=1,dive"`
} // @name ImportOrderRequest

// Validate performs custom validation on the request.
func (r *ImportOrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return &ValidationError{Field: "items", Message: "at least one line item is required"}
	}
	for _, item := range r.Items {
		if strings.TrimSpace(item.ItemID) == "" {
			return &ValidationError{Field: "items.item_id", Message: "is required"}
		}
		if item.OrderedQuantity <= 0 {
			return &ValidationError{Field: "items.ordered_quantity", Message: "must be a positive integer"}
		}
	}
	return nil
}

// ToOrder builds the domain order for the given id.
func (r *ImportOrderRequest) ToOrder(orderID string) *model.Order {
	return &model.Order{
		ID:       orderID,
		Customer: r.Customer,
		Items:    r.Items,
	}
}

// UpsertCapacityRequest sets the max units per box of a catalog number.
//
// @Description Max-per-box capacity for a catalog number
// @Example {"max_quantity": 10}
type UpsertCapacityRequest struct {
	// MaxQuantity must be greater than 0.
	MaxQuantity int `json:"max_quantity" binding:"required,gt=0" example:"10" minimum:"1"`
} // @name UpsertCapacityRequest

// Validate performs custom validation on the request.
func (r *UpsertCapacityRequest) Validate() error {
	if r.MaxQuantity <= 0 {
		return ErrInvalidMaxQuantity
	}
	return nil
}

// SetQuantityRequest sets how many pieces of a unit are packed. Values
// outside [0, unit_quantity] are clamped by the server.
//
// @Description Packed quantity of a unit
// @Example {"quantity": 5}
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required" example:"5"`
} // @name SetQuantityRequest

// Validate performs custom validation on the request.
func (r *SetQuantityRequest) Validate() error {
	if r.Quantity == nil {
		return &ValidationError{Field: "quantity", Message: "is required"}
	}
	return nil
}

// SetBoxNumberRequest moves a unit into a box.
//
// @Description Target box of a unit
// @Example {"box_number": 2}
type SetBoxNumberRequest struct {
	BoxNumber int `json:"box_number" binding:"required,gte=1" example:"2" minimum:"1"`
} // @name SetBoxNumberRequest

// Validate performs custom validation on the request.
func (r *SetBoxNumberRequest) Validate() error {
	if r.BoxNumber < 1 {
		return ErrInvalidBoxNumber
	}
	return nil
}

// ConnectRequest links two units into the same box.
//
// @Description Units to pack together
// @Example {"from": "line-1_split_3", "to": "line-2"}
type ConnectRequest struct {
	From string `json:"from" binding:"required" example:"line-1_split_3"`
	To   string `json:"to" binding:"required" example:"line-2"`
} // @name ConnectRequest

// Validate performs custom validation on the request.
func (r *ConnectRequest) Validate() error {
	if strings.TrimSpace(r.From) == "" {
		return &ValidationError{Field: "from", Message: "is required"}
	}
	if strings.TrimSpace(r.To) == "" {
		return &ValidationError{Field: "to", Message: "is required"}
	}
	return nil
}

var (
	// ErrInvalidMaxQuantity is returned when max_quantity is invalid.
	ErrInvalidMaxQuantity = &ValidationError{
		Field:   "max_quantity",
		Message: "must be a positive integer",
	}
	// ErrInvalidBoxNumber is returned when box_number is invalid.
	ErrInvalidBoxNumber = &ValidationError{
		Field:   "box_number",
		Message: "must be at least 1",
	}
)
