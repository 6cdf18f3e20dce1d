package postgres

import (
	"context"
	"errors"
	"fmt"
	"myFoodHub/domain"
	"myFoodHub/pkg/database"

	"gorm.io/gorm"
)

// DeletionRepository removes accounts together with every row that depends
// on them. Rows are deleted children first so no foreign key is ever left
// dangling, whether or not the schema declares ON DELETE CASCADE.
type DeletionRepository struct {
	DB *gorm.DB
}

func NewDeletionRepository(db *gorm.DB) *DeletionRepository {
	return &DeletionRepository{
		DB: db,
	}
}

func (r *DeletionRepository) DeleteRestaurant(ctx context.Context, actorID, restaurantID uint) error {
	return database.Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		var restaurant domain.Restaurant
		if err := tx.First(&restaurant, restaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: restaurant %d", domain.ErrNotFound, restaurantID)
			}
			return fmt.Errorf("failed to load restaurant: %w", err)
		}
		if restaurant.UserID == actorID {
			return fmt.Errorf("%w: restaurant %d belongs to the caller", domain.ErrSelfDeletionForbidden, restaurantID)
		}

		return deleteRestaurantCascade(tx, restaurant)
	})
}

func (r *DeletionRepository) DeleteUser(ctx context.Context, actorID, userID uint) error {
	return database.Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.Select("id", "role").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
			}
			return fmt.Errorf("failed to load user: %w", err)
		}
		if user.ID == actorID {
			return fmt.Errorf("%w: user %d", domain.ErrSelfDeletionForbidden, userID)
		}

		if user.Role == domain.RoleRestaurant {
			var restaurant domain.Restaurant
			err := tx.Where("user_id = ?", user.ID).First(&restaurant).Error
			if err == nil {
				return deleteRestaurantCascade(tx, restaurant)
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to load restaurant: %w", err)
			}
		}

		return deleteUserCascade(tx, user)
	})
}

// deleteRestaurantCascade removes the restaurant's orders with everything
// hanging off them, its menu, its audit trail, the restaurant and finally the
// owning user.
func deleteRestaurantCascade(tx *gorm.DB, restaurant domain.Restaurant) error {
	orderIDs := func() *gorm.DB {
		return tx.Model(&domain.Order{}).Select("id").Where("restaurant_id = ?", restaurant.ID)
	}

	steps := []struct {
		name string
		run  func() *gorm.DB
	}{
		{"ratings", func() *gorm.DB {
			return tx.Where("order_id IN (?) OR user_id = ?", orderIDs(), restaurant.UserID).Delete(&domain.Rating{})
		}},
		{"order items", func() *gorm.DB { return tx.Where("order_id IN (?)", orderIDs()).Delete(&domain.OrderItem{}) }},
		{"order history", func() *gorm.DB {
			return tx.Where("order_id IN (?)", orderIDs()).Delete(&domain.OrderStatusHistory{})
		}},
		{"orders", func() *gorm.DB { return tx.Where("restaurant_id = ?", restaurant.ID).Delete(&domain.Order{}) }},
		{"menu items", func() *gorm.DB { return tx.Where("restaurant_id = ?", restaurant.ID).Delete(&domain.MenuItem{}) }},
		{"balance audits", func() *gorm.DB {
			return tx.Where("restaurant_id = ?", restaurant.ID).Delete(&domain.BalanceAudit{})
		}},
		{"restaurant", func() *gorm.DB { return tx.Where("id = ?", restaurant.ID).Delete(&domain.Restaurant{}) }},
	}

	for _, step := range steps {
		if err := step.run().Error; err != nil {
			return fmt.Errorf("failed to delete %s of restaurant %d: %w", step.name, restaurant.ID, err)
		}
	}

	return deleteUserRow(tx, restaurant.UserID)
}

// deleteUserCascade removes a customer or admin: ratings written by the user
// or left on the user's orders, the orders with their items, the ledger
// journal, the role payload and the user. Restaurants that lost ratings get
// their aggregate recomputed.
func deleteUserCascade(tx *gorm.DB, user domain.User) error {
	orderIDs := func() *gorm.DB {
		return tx.Model(&domain.Order{}).Select("id").Where("customer_id = ?", user.ID)
	}
	ratedOrderIDs := func() *gorm.DB {
		return tx.Model(&domain.Rating{}).Select("order_id").Where("user_id = ? OR order_id IN (?)", user.ID, orderIDs())
	}

	var restaurantIDs []uint
	if err := tx.Model(&domain.Order{}).
		Distinct("restaurant_id").
		Where("id IN (?)", ratedOrderIDs()).
		Pluck("restaurant_id", &restaurantIDs).Error; err != nil {
		return fmt.Errorf("failed to collect rated restaurants of user %d: %w", user.ID, err)
	}

	steps := []struct {
		name string
		run  func() *gorm.DB
	}{
		{"ratings", func() *gorm.DB {
			return tx.Where("user_id = ? OR order_id IN (?)", user.ID, orderIDs()).Delete(&domain.Rating{})
		}},
		{"order items", func() *gorm.DB { return tx.Where("order_id IN (?)", orderIDs()).Delete(&domain.OrderItem{}) }},
		{"order history", func() *gorm.DB {
			return tx.Where("order_id IN (?)", orderIDs()).Delete(&domain.OrderStatusHistory{})
		}},
		{"orders", func() *gorm.DB { return tx.Where("customer_id = ?", user.ID).Delete(&domain.Order{}) }},
		{"customer", func() *gorm.DB { return tx.Where("user_id = ?", user.ID).Delete(&domain.Customer{}) }},
		{"admin", func() *gorm.DB { return tx.Where("user_id = ?", user.ID).Delete(&domain.Admin{}) }},
	}

	for _, step := range steps {
		if err := step.run().Error; err != nil {
			return fmt.Errorf("failed to delete %s of user %d: %w", step.name, user.ID, err)
		}
	}

	if err := refreshRestaurantRating(tx, restaurantIDs...); err != nil {
		return err
	}

	return deleteUserRow(tx, user.ID)
}

func deleteUserRow(tx *gorm.DB, userID uint) error {
	if err := tx.Where("user_id = ?", userID).Delete(&domain.BalanceEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete ledger of user %d: %w", userID, err)
	}

	res := tx.Where("id = ?", userID).Delete(&domain.User{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
	}

	return nil
}
