package rating

import (
	"context"
	"errors"
	"fmt"
	"myFoodHub/domain"
	"myFoodHub/pkg/logger"
	"myFoodHub/pkg/metrics"
	"time"
)

type RatingRepository interface {
	FindByOrderAndUser(ctx context.Context, orderID, userID uint) (domain.Rating, error)
	Create(ctx context.Context, rating *domain.Rating, restaurantID uint) error
}

type OrderFinder interface {
	FindByID(ctx context.Context, id uint) (domain.Order, error)
}

type RatingService struct {
	ratingRepo RatingRepository
	orders     OrderFinder
}

func NewRatingService(ratingRepo RatingRepository, orders OrderFinder) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		orders:     orders,
	}
}

// SubmitRating stores the user's rating of a delivered order. When the pair
// was already rated the stored rating is returned unchanged together with
// domain.ErrAlreadyRated.
func (s *RatingService) SubmitRating(ctx context.Context, orderID, userID uint, score int, comment string) (rating domain.Rating, err error) {
	defer func(start time.Time) { metrics.Observe("submit_rating", start, err) }(time.Now())

	if score < domain.MinRatingScore || score > domain.MaxRatingScore {
		return domain.Rating{}, fmt.Errorf("%w: score must be between %d and %d", domain.ErrValidation, domain.MinRatingScore, domain.MaxRatingScore)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Rating{}, err
	}
	if order.Status != domain.StatusDelivered {
		return domain.Rating{}, fmt.Errorf("%w: order %d is %s, not delivered", domain.ErrValidation, orderID, order.Status)
	}
	if order.CustomerID != userID {
		return domain.Rating{}, fmt.Errorf("%w: only the ordering customer can rate order %d", domain.ErrValidation, orderID)
	}

	existing, found, err := s.HasRated(ctx, orderID, userID)
	if err != nil {
		return domain.Rating{}, err
	}
	if found {
		metrics.RatingConflicts.Inc()
		return existing, fmt.Errorf("%w: order %d", domain.ErrAlreadyRated, orderID)
	}

	rating = domain.Rating{
		OrderID: orderID,
		UserID:  userID,
		Score:   score,
		Comment: comment,
	}
	if err := s.ratingRepo.Create(ctx, &rating, order.RestaurantID); err != nil {
		if errors.Is(err, domain.ErrAlreadyRated) {
			metrics.RatingConflicts.Inc()
			return rating, err
		}
		logger.Error("Failed to store rating", "order_id", orderID, "user_id", userID, "error", err)
		return domain.Rating{}, err
	}

	logger.Info("Order rated", "order_id", orderID, "user_id", userID, "score", score)

	return rating, nil
}

// HasRated is a read-only check for an existing rating of the pair.
func (s *RatingService) HasRated(ctx context.Context, orderID, userID uint) (domain.Rating, bool, error) {
	rating, err := s.ratingRepo.FindByOrderAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Rating{}, false, nil
		}
		return domain.Rating{}, false, err
	}

	return rating, true, nil
}
