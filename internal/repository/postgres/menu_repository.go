package postgres

import (
	"context"
	"errors"
	"fmt"
	"myFoodHub/domain"
	"time"

	"gorm.io/gorm"
)

type MenuRepository struct {
	DB *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{
		DB: db,
	}
}

func (r *MenuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	if err := r.DB.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: restaurant %d", domain.ErrNotFound, item.RestaurantID)
		}
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *MenuRepository) FindByID(ctx context.Context, id uint) (domain.MenuItem, error) {
	var item domain.MenuItem

	err := r.DB.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MenuItem{}, fmt.Errorf("%w: menu item %d", domain.ErrNotFound, id)
		}
		return domain.MenuItem{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return item, nil
}

func (r *MenuRepository) ListByRestaurant(ctx context.Context, restaurantID uint) ([]domain.MenuItem, error) {
	var items []domain.MenuItem

	err := r.DB.WithContext(ctx).Where("restaurant_id = ?", restaurantID).Order("category").Order("id").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return items, nil
}

// UpdatePrice changes the live menu price. Placed orders keep the price
// captured on their items.
func (r *MenuRepository) UpdatePrice(ctx context.Context, id uint, price float64) error {
	res := r.DB.WithContext(ctx).Model(&domain.MenuItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"price":      price,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: menu item %d", domain.ErrNotFound, id)
	}

	return nil
}
