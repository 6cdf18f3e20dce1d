package orders

import (
	"context"
	"errors"
	"fmt"
	"myFoodHub/domain"
	"myFoodHub/pkg/logger"
	"myFoodHub/pkg/metrics"
	"time"
)

type OrdersRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order, lines []domain.LineItem) error
	FindByID(ctx context.Context, id uint) (domain.Order, error)
	UpdateStatus(ctx context.Context, id uint, from, to domain.OrderStatus, actorID uint) error
	ListByCustomer(ctx context.Context, customerID uint) ([]domain.Order, error)
}

type RestaurantFinder interface {
	FindRestaurantByID(ctx context.Context, id uint) (domain.Restaurant, error)
}

// Settler moves the money of a delivered order.
type Settler interface {
	SettleOrder(ctx context.Context, orderID uint) (domain.Order, error)
}

type OrdersService struct {
	orderRepo   OrdersRepository
	restaurants RestaurantFinder
	settler     Settler
}

func NewOrdersService(orderRepo OrdersRepository, restaurants RestaurantFinder, settler Settler) *OrdersService {
	return &OrdersService{
		orderRepo:   orderRepo,
		restaurants: restaurants,
		settler:     settler,
	}
}

// PlaceOrder creates a PENDING order with its items priced at the current
// menu prices. An empty deliveryAddress falls back to the customer's.
func (s *OrdersService) PlaceOrder(ctx context.Context, customerID, restaurantID uint, lines []domain.LineItem, deliveryAddress string) (order domain.Order, err error) {
	defer func(start time.Time) { metrics.Observe("place_order", start, err) }(time.Now())

	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}
	for i, line := range lines {
		if line.MenuItemID == 0 || line.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: line %d needs a menu item and a positive quantity", domain.ErrInvalidLineItem, i)
		}
	}

	order = domain.Order{
		CustomerID:      customerID,
		RestaurantID:    restaurantID,
		DeliveryAddress: deliveryAddress,
	}
	if err := s.orderRepo.CreateOrder(ctx, &order, lines); err != nil {
		logger.Error("Failed to place order", "customer_id", customerID, "restaurant_id", restaurantID, "error", err)
		return domain.Order{}, err
	}

	metrics.OrdersPlaced.Inc()
	logger.Info("Order placed", "order_id", order.ID, "customer_id", customerID, "total", order.TotalPrice)

	return order, nil
}

// TransitionStatus moves the order to the given status on behalf of actor.
// Reaching DELIVERED settles the order afterwards; a failed settlement is
// returned alongside the committed order and can be retried on its own.
func (s *OrdersService) TransitionStatus(ctx context.Context, actor domain.Actor, orderID uint, to domain.OrderStatus) (order domain.Order, err error) {
	defer func(start time.Time) { metrics.Observe("transition_status", start, err) }(time.Now())

	order, err = s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	p, err := s.partyOf(ctx, actor, order)
	if err != nil {
		return domain.Order{}, err
	}
	if err := authorize(p, order.Status, to); err != nil {
		return domain.Order{}, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, to, actor.UserID); err != nil {
		logger.Warn("Failed to update order status", "order_id", orderID, "to", to, "error", err)
		return domain.Order{}, err
	}
	logger.Info("Order status changed", "order_id", orderID, "from", order.Status, "to", to, "actor_id", actor.UserID)

	var settleErr error
	if to == domain.StatusDelivered && s.settler != nil {
		if _, settleErr = s.settler.SettleOrder(ctx, orderID); settleErr != nil {
			logger.Error("Delivered order left unsettled", "order_id", orderID, "error", settleErr)
			settleErr = fmt.Errorf("order %d delivered but not settled: %w", orderID, settleErr)
		}
	}

	order, err = s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, errors.Join(settleErr, err)
	}

	return order, settleErr
}

// Settle retries settlement of a delivered order. Only admins and the
// restaurant owner may trigger it.
func (s *OrdersService) Settle(ctx context.Context, actor domain.Actor, orderID uint) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	p, err := s.partyOf(ctx, actor, order)
	if err != nil {
		return domain.Order{}, err
	}
	if p != partyAdmin && p != partyOwner {
		return domain.Order{}, fmt.Errorf("%w: only the restaurant or an admin can settle", domain.ErrForbidden)
	}

	return s.settler.SettleOrder(ctx, orderID)
}

func (s *OrdersService) GetOrder(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	p, err := s.partyOf(ctx, actor, order)
	if err != nil {
		return domain.Order{}, err
	}
	if p == partyNone {
		return domain.Order{}, fmt.Errorf("%w: order %d", domain.ErrForbidden, id)
	}

	return order, nil
}

func (s *OrdersService) ListMyOrders(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	return s.orderRepo.ListByCustomer(ctx, actor.UserID)
}

func (s *OrdersService) partyOf(ctx context.Context, actor domain.Actor, order domain.Order) (party, error) {
	switch {
	case actor.IsAdmin():
		return partyAdmin, nil
	case actor.Role == domain.RoleCustomer && actor.UserID == order.CustomerID:
		return partyCustomer, nil
	case actor.Role == domain.RoleRestaurant:
		restaurant, err := s.restaurants.FindRestaurantByID(ctx, order.RestaurantID)
		if err != nil {
			return partyNone, err
		}
		if restaurant.UserID == actor.UserID {
			return partyOwner, nil
		}
	}

	return partyNone, nil
}
