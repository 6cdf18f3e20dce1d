package postgres

import (
	"context"
	"errors"
	"fmt"
	"myFoodHub/domain"
	"myFoodHub/pkg/database"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// CreateOrder resolves the current price of every line, then inserts the
// order, its items and the first history row in one transaction. order must
// carry CustomerID and RestaurantID; the rest is filled in.
func (r *OrdersRepository) CreateOrder(ctx context.Context, order *domain.Order, lines []domain.LineItem) error {
	return database.Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		order.ID = 0

		var customer domain.User
		if err := tx.Preload("Customer").First(&customer, order.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: customer %d", domain.ErrNotFound, order.CustomerID)
			}
			return fmt.Errorf("failed to load customer: %w", err)
		}
		if customer.Role != domain.RoleCustomer || customer.Customer == nil {
			return fmt.Errorf("%w: user %d is not a customer", domain.ErrValidation, customer.ID)
		}

		var restaurant domain.Restaurant
		if err := tx.First(&restaurant, order.RestaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: restaurant %d", domain.ErrNotFound, order.RestaurantID)
			}
			return fmt.Errorf("failed to load restaurant: %w", err)
		}
		if !restaurant.IsOpen {
			return fmt.Errorf("%w: restaurant %d is closed", domain.ErrValidation, restaurant.ID)
		}

		ids := make([]uint, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.MenuItemID)
		}

		var menu []domain.MenuItem
		if err := tx.Where("id IN ?", ids).Find(&menu).Error; err != nil {
			return fmt.Errorf("failed to load menu items: %w", err)
		}
		byID := make(map[uint]domain.MenuItem, len(menu))
		for _, item := range menu {
			byID[item.ID] = item
		}

		items := make([]domain.OrderItem, 0, len(lines))
		total := 0.0
		for _, line := range lines {
			item, ok := byID[line.MenuItemID]
			if !ok || item.RestaurantID != restaurant.ID {
				return fmt.Errorf("%w: menu item %d not offered by restaurant %d", domain.ErrInvalidLineItem, line.MenuItemID, restaurant.ID)
			}
			if !item.IsAvailable {
				return fmt.Errorf("%w: menu item %d is unavailable", domain.ErrInvalidLineItem, item.ID)
			}

			orderItem := domain.OrderItem{
				MenuItemID: item.ID,
				Name:       item.Name,
				Quantity:   line.Quantity,
				Price:      item.Price,
			}
			total += orderItem.Subtotal()
			items = append(items, orderItem)
		}

		if order.DeliveryAddress == "" {
			order.DeliveryAddress = customer.Customer.DeliveryAddress
		}
		order.Status = domain.StatusPending
		// Sum of the captured subtotals as stored; settlement debits exactly this.
		order.TotalPrice = total
		order.Settled = false

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}

		history := domain.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  domain.StatusPending,
			ChangedBy: order.CustomerID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to insert order history: %w", err)
		}

		order.Items = items
		order.StatusHistory = []domain.OrderStatusHistory{history}

		return nil
	})
}

func (r *OrdersRepository) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	var order domain.Order

	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
		}
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return order, nil
}

// UpdateStatus moves the order from one status to another. The write only
// applies while the order is still in from, so two racing transitions cannot
// both succeed.
func (r *OrdersRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.OrderStatus, actorID uint) error {
	return database.Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{
				"status":     to,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d is no longer %s", domain.ErrInvalidTransition, id, from)
		}

		history := domain.OrderStatusHistory{
			OrderID:    id,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  actorID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to insert order history: %w", err)
		}

		return nil
	})
}

func (r *OrdersRepository) ListByCustomer(ctx context.Context, customerID uint) ([]domain.Order, error) {
	var orders []domain.Order

	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return orders, nil
}
