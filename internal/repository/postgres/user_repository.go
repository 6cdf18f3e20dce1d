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

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

// CreateAccount inserts the user and its role payload in one transaction.
// The unique index on email is the authority on duplicates: a violation
// raised here is reported as domain.ErrDuplicateIdentity even when an
// earlier lookup saw no such email.
func (r *UserRepository) CreateAccount(ctx context.Context, user *domain.User) error {
	if user.Profile() == nil {
		return fmt.Errorf("%w: %s account without profile", domain.ErrValidation, user.Role)
	}

	err := database.Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		user.ID = 0
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateIdentity, user.Email)
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		switch user.Role {
		case domain.RoleCustomer:
			user.Customer.ID, user.Customer.UserID = 0, user.ID
			if err := tx.Create(user.Customer).Error; err != nil {
				return fmt.Errorf("failed to insert customer: %w", err)
			}
		case domain.RoleRestaurant:
			user.Restaurant.ID, user.Restaurant.UserID = 0, user.ID
			if err := tx.Omit(clause.Associations).Create(user.Restaurant).Error; err != nil {
				return fmt.Errorf("failed to insert restaurant: %w", err)
			}
		case domain.RoleAdmin:
			user.Admin.ID, user.Admin.UserID = 0, user.ID
			if err := tx.Create(user.Admin).Error; err != nil {
				return fmt.Errorf("failed to insert admin: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		user.ID = 0
		return err
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).
		Preload("Customer").
		Preload("Restaurant").
		Preload("Admin").
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
		}
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, fmt.Errorf("%w: user %s", domain.ErrNotFound, email)
		}
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return user, nil
}

func (r *UserRepository) FindRestaurantByID(ctx context.Context, id uint) (domain.Restaurant, error) {
	var restaurant domain.Restaurant

	err := r.DB.WithContext(ctx).First(&restaurant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Restaurant{}, fmt.Errorf("%w: restaurant %d", domain.ErrNotFound, id)
		}
		return domain.Restaurant{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return restaurant, nil
}

// ListRestaurants returns restaurants in display order.
func (r *UserRepository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	var restaurants []domain.Restaurant

	if err := r.DB.WithContext(ctx).Order("rank ASC").Order("id ASC").Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return restaurants, nil
}
