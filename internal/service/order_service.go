package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/repository"
)

var (
	// ErrOrderNotFound is returned when the order source has no such order.
	ErrOrderNotFound = errors.New("order not found")
	// ErrNoLineItems is returned when an order has nothing that can be packed.
	ErrNoLineItems = errors.New("order has no line items")
	// ErrInvalidOrder is returned when an imported order fails validation.
	ErrInvalidOrder = errors.New("invalid order")
)

// OrderService fetches and imports orders.
type OrderService interface {
	Get(ctx context.Context, orderID string) (*model.Order, error)
	GetLineItems(ctx context.Context, orderID string) ([]model.OrderLineItem, error)
	Import(ctx context.Context, order *model.Order) error
}

// OrderServiceImpl implements OrderService.
type OrderServiceImpl struct {
	repo repository.OrdersRepositoryInterface
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrdersRepositoryInterface) *OrderServiceImpl {
	return &OrderServiceImpl{repo: repo}
}

// Get returns the order or ErrOrderNotFound.
func (s *OrderServiceImpl) Get(ctx context.Context, orderID string) (*model.Order, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetLineItems returns the order's line items in order-list order.
func (s *OrderServiceImpl) GetLineItems(ctx context.Context, orderID string) ([]model.OrderLineItem, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order.Items, nil
}

// Import validates and stores an order, replacing any previous version.
func (s *OrderServiceImpl) Import(ctx context.Context, order *model.Order) error {
	if s.repo == nil {
		return ErrRepositoryNotConfigured
	}
	if err := ValidateOrder(order); err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, order); err != nil {
		return fmt.Errorf("import order %s: %w", order.ID, err)
	}
	return nil
}

// ValidateOrder checks that an order has an id and line items with unique
// ids, catalog numbers and positive quantities.
func ValidateOrder(order *model.Order) error {
	if order == nil || strings.TrimSpace(order.ID) == "" {
		return fmt.Errorf("%w: missing order id", ErrInvalidOrder)
	}
	if len(order.Items) == 0 {
		return ErrNoLineItems
	}
	seen := make(map[string]struct{}, len(order.Items))
	for i, item := range order.Items {
		switch {
		case strings.TrimSpace(item.ItemID) == "":
			return fmt.Errorf("%w: item %d has no item_id", ErrInvalidOrder, i)
		case strings.TrimSpace(item.CatalogNumber) == "":
			return fmt.Errorf("%w: item %s has no catalog_number", ErrInvalidOrder, item.ItemID)
		case item.OrderedQuantity <= 0:
			return fmt.Errorf("%w: item %s: %w", ErrInvalidOrder, item.ItemID, ErrInvalidQuantity)
		case item.UnitWeight < 0:
			return fmt.Errorf("%w: item %s has a negative unit_weight", ErrInvalidOrder, item.ItemID)
		}
		if _, dup := seen[item.ItemID]; dup {
			return fmt.Errorf("%w: duplicate item_id %s", ErrInvalidOrder, item.ItemID)
		}
		seen[item.ItemID] = struct{}{}
	}
	for _, item := range order.Items {
		if line, ok := splitSourceLine(item.ItemID); ok {
			if _, sibling := seen[line]; sibling {
				return fmt.Errorf("%w: item_id %s is reserved for splits of %s", ErrInvalidOrder, item.ItemID, line)
			}
		}
	}
	return nil
}

// splitSourceLine reports the line a split unit id would belong to.
func splitSourceLine(id string) (string, bool) {
	i := strings.LastIndex(id, splitSuffix)
	if i <= 0 {
		return "", false
	}
	n, err := strconv.Atoi(id[i+len(splitSuffix):])
	if err != nil || n < 1 {
		return "", false
	}
	return id[:i], true
}
