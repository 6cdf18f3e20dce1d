package postgres

import (
	"context"
	"errors"
	"fmt"
	"myFoodHub/domain"
	"myFoodHub/pkg/database"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BalanceRepository struct {
	DB *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{
		DB: db,
	}
}

// Adjust applies delta to the user's balance and returns the new balance.
func (r *BalanceRepository) Adjust(ctx context.Context, userID uint, delta float64, reason domain.BalanceReason) (float64, error) {
	var balance float64

	err := database.Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		var err error
		balance, err = applyDelta(tx, userID, delta, reason, nil)
		return err
	})
	if err != nil {
		return 0, err
	}

	return balance, nil
}

// applyDelta increments the balance in the store, never below zero, then
// rewrites the owned restaurant's balance from the result and journals the
// change. It must run inside a transaction.
func applyDelta(tx *gorm.DB, userID uint, delta float64, reason domain.BalanceReason, orderID *uint) (float64, error) {
	res := tx.Model(&domain.User{}).
		Where("id = ? AND balance + ? >= 0", userID, delta).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update balance: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return 0, fmt.Errorf("failed to look up user: %w", err)
		}
		if count == 0 {
			return 0, fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
		}
		return 0, fmt.Errorf("%w: insufficient balance for user %d", domain.ErrInvalidAmount, userID)
	}

	var user domain.User
	if err := tx.Select("id", "role", "balance").First(&user, userID).Error; err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	if user.Role == domain.RoleRestaurant {
		if err := syncRestaurantBalance(tx, user.ID, user.Balance); err != nil {
			return 0, err
		}
	}

	entry := domain.BalanceEntry{
		UserID:       userID,
		Delta:        delta,
		BalanceAfter: user.Balance,
		Reason:       reason,
		OrderID:      orderID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("failed to journal balance change: %w", err)
	}

	return user.Balance, nil
}

// syncRestaurantBalance sets the restaurant projection to the owner's
// balance. A restaurant owner without a restaurant row breaks the account
// invariant, so that aborts the transaction instead of passing silently.
func syncRestaurantBalance(tx *gorm.DB, userID uint, balance float64) error {
	res := tx.Model(&domain.Restaurant{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":    balance,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to sync restaurant balance: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("restaurant balance sync for user %d matched %d rows", userID, res.RowsAffected)
	}

	return nil
}

// Settle moves the total of a delivered order from the customer to the
// restaurant owner and marks the order settled, all in one transaction.
func (r *BalanceRepository) Settle(ctx context.Context, orderID uint) (domain.Order, error) {
	var order domain.Order

	err := database.Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		if order.Status != domain.StatusDelivered {
			return fmt.Errorf("%w: order %d is %s, only delivered orders settle", domain.ErrValidation, orderID, order.Status)
		}

		res := tx.Model(&domain.Order{}).
			Where("id = ? AND settled = ?", orderID, false).
			Updates(map[string]interface{}{
				"settled":    true,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to mark order settled: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d", domain.ErrAlreadySettled, orderID)
		}
		order.Settled = true

		if order.TotalPrice == 0 {
			return nil
		}

		var restaurant domain.Restaurant
		if err := tx.Select("id", "user_id").First(&restaurant, order.RestaurantID).Error; err != nil {
			return fmt.Errorf("failed to load restaurant: %w", err)
		}

		if _, err := applyDelta(tx, order.CustomerID, -order.TotalPrice, domain.ReasonOrderDebit, &order.ID); err != nil {
			return err
		}
		if _, err := applyDelta(tx, restaurant.UserID, order.TotalPrice, domain.ReasonOrderCredit, &order.ID); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// ListDrift returns every restaurant whose balance differs from its owner's.
func (r *BalanceRepository) ListDrift(ctx context.Context) ([]domain.BalanceDrift, error) {
	var drifts []domain.BalanceDrift

	err := r.DB.WithContext(ctx).
		Table("restaurants").
		Select("restaurants.id AS restaurant_id, restaurants.user_id AS user_id, restaurants.balance AS restaurant_balance, users.balance AS user_balance").
		Joins("JOIN users ON users.id = restaurants.user_id").
		Where("restaurants.balance <> users.balance").
		Order("restaurants.id").
		Scan(&drifts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return drifts, nil
}

// CorrectDrift overwrites one restaurant balance with its owner's current
// balance and writes the audit row. It only applies when the restaurant still
// holds the balance observed by the sweep; false means someone else already
// moved it and nothing was written.
func (r *BalanceRepository) CorrectDrift(ctx context.Context, drift domain.BalanceDrift, sweepID string) (domain.BalanceAudit, bool, error) {
	var audit domain.BalanceAudit
	applied := false

	err := database.Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		var owner domain.User
		if err := tx.Select("id", "balance").First(&owner, drift.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load owner: %w", err)
		}

		res := tx.Model(&domain.Restaurant{}).
			Where("id = ? AND user_id = ? AND balance = ?", drift.RestaurantID, drift.UserID, drift.RestaurantBalance).
			Updates(map[string]interface{}{
				"balance":    owner.Balance,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to correct restaurant balance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		audit = domain.BalanceAudit{
			SweepID:      sweepID,
			RestaurantID: drift.RestaurantID,
			UserID:       drift.UserID,
			Before:       drift.RestaurantBalance,
			After:        owner.Balance,
			Snapshot: datatypes.JSONMap{
				"observed_user_balance": drift.UserBalance,
				"applied_user_balance":  owner.Balance,
			},
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("failed to write balance audit: %w", err)
		}
		applied = true

		return nil
	})
	if err != nil {
		return domain.BalanceAudit{}, false, err
	}

	return audit, applied, nil
}

func (r *BalanceRepository) ListEntries(ctx context.Context, userID uint) ([]domain.BalanceEntry, error) {
	var entries []domain.BalanceEntry

	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return entries, nil
}
