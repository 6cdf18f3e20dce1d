package postgres

import (
	"context"
	"errors"
	"fmt"
	"myFoodHub/domain"
	"myFoodHub/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository struct {
	DB *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{
		DB: db,
	}
}

func (r *RatingRepository) FindByOrderAndUser(ctx context.Context, orderID, userID uint) (domain.Rating, error) {
	var rating domain.Rating

	err := r.DB.WithContext(ctx).Where("order_id = ? AND user_id = ?", orderID, userID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Rating{}, fmt.Errorf("%w: rating for order %d", domain.ErrNotFound, orderID)
		}
		return domain.Rating{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return rating, nil
}

// Create inserts the rating unless the (order, user) pair is already taken,
// in which case rating is overwritten with the stored row and
// domain.ErrAlreadyRated is returned. The restaurant's aggregate rating is
// refreshed in the same transaction.
func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating, restaurantID uint) error {
	var existing domain.Rating
	conflict := false

	err := database.Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		rating.ID = 0
		conflict = false

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(rating)
		if res.Error != nil {
			return fmt.Errorf("failed to insert rating: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			conflict = true
			if err := tx.Where("order_id = ? AND user_id = ?", rating.OrderID, rating.UserID).First(&existing).Error; err != nil {
				return fmt.Errorf("failed to load existing rating: %w", err)
			}
			return nil
		}

		return refreshRestaurantRating(tx, restaurantID)
	})
	if err != nil {
		return err
	}

	if conflict {
		*rating = existing
		return fmt.Errorf("%w: order %d", domain.ErrAlreadyRated, rating.OrderID)
	}

	return nil
}

// refreshRestaurantRating recomputes the aggregate rating of each restaurant
// from the ratings left on its orders.
func refreshRestaurantRating(tx *gorm.DB, restaurantIDs ...uint) error {
	for _, id := range restaurantIDs {
		err := tx.Exec(`
			UPDATE restaurants SET rating = COALESCE((
				SELECT AVG(ratings.score)
				FROM ratings
				JOIN orders ON orders.id = ratings.order_id
				WHERE orders.restaurant_id = ?
			), 0)
			WHERE id = ?`, id, id).Error
		if err != nil {
			return fmt.Errorf("failed to refresh rating of restaurant %d: %w", id, err)
		}
	}

	return nil
}
