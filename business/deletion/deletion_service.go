package deletion

import (
	"context"
	"errors"
	"fmt"
	"myFoodHub/domain"
	"myFoodHub/pkg/logger"
	"myFoodHub/pkg/metrics"
	"time"
)

type DeletionRepository interface {
	DeleteRestaurant(ctx context.Context, actorID, restaurantID uint) error
	DeleteUser(ctx context.Context, actorID, userID uint) error
}

type RestaurantFinder interface {
	FindRestaurantByID(ctx context.Context, id uint) (domain.Restaurant, error)
}

type DeletionService struct {
	deletionRepo DeletionRepository
	restaurants  RestaurantFinder
}

func NewDeletionService(deletionRepo DeletionRepository, restaurants RestaurantFinder) *DeletionService {
	return &DeletionService{
		deletionRepo: deletionRepo,
		restaurants:  restaurants,
	}
}

// DeleteRestaurantAccount removes the restaurant, everything attached to it
// and its owner.
func (s *DeletionService) DeleteRestaurantAccount(ctx context.Context, actor domain.Actor, restaurantID uint) (err error) {
	defer func(start time.Time) { metrics.Observe("delete_restaurant", start, err) }(time.Now())

	restaurant, err := s.restaurants.FindRestaurantByID(ctx, restaurantID)
	switch {
	case err == nil && restaurant.UserID == actor.UserID:
		return fmt.Errorf("%w: restaurant %d belongs to the caller", domain.ErrSelfDeletionForbidden, restaurantID)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins delete restaurants", domain.ErrForbidden)
	}

	if err := s.deletionRepo.DeleteRestaurant(ctx, actor.UserID, restaurantID); err != nil {
		logger.Error("Failed to delete restaurant", "restaurant_id", restaurantID, "actor_id", actor.UserID, "error", err)
		return err
	}

	logger.Info("Restaurant deleted", "restaurant_id", restaurantID, "actor_id", actor.UserID)
	return nil
}

func (s *DeletionService) DeleteUserAccount(ctx context.Context, actor domain.Actor, userID uint) (err error) {
	defer func(start time.Time) { metrics.Observe("delete_user", start, err) }(time.Now())

	if actor.UserID == userID {
		return fmt.Errorf("%w: user %d", domain.ErrSelfDeletionForbidden, userID)
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins delete accounts", domain.ErrForbidden)
	}

	if err := s.deletionRepo.DeleteUser(ctx, actor.UserID, userID); err != nil {
		logger.Error("Failed to delete user", "user_id", userID, "actor_id", actor.UserID, "error", err)
		return err
	}

	logger.Info("User deleted", "user_id", userID, "actor_id", actor.UserID)
	return nil
}
