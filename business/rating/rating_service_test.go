package rating

import (
	"context"
	"errors"
	"myFoodHub/domain"
	"myFoodHub/internal/repository/postgres"
	"myFoodHub/pkg/database/dbtest"
	"sync"
	"testing"

	"gorm.io/gorm"
)

func setup(t *testing.T, status domain.OrderStatus) (*RatingService, *gorm.DB, domain.Order) {
	t.Helper()

	db := dbtest.New(t)
	customer := dbtest.Customer(t, db, "cust@example.com")
	_, restaurant := dbtest.Restaurant(t, db, "owner@example.com", "Soto Betawi")

	order := domain.Order{
		CustomerID:   customer.ID,
		RestaurantID: restaurant.ID,
		Status:       status,
		TotalPrice:   12,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	svc := NewRatingService(postgres.NewRatingRepository(db), postgres.NewOrdersRepository(db))
	return svc, db, order
}

func TestSubmitRating_Twice(t *testing.T) {
	svc, db, order := setup(t, domain.StatusDelivered)
	ctx := context.Background()

	first, err := svc.SubmitRating(ctx, order.ID, order.CustomerID, 4, "enak")
	if err != nil {
		t.Fatalf("first SubmitRating() error = %v", err)
	}

	second, err := svc.SubmitRating(ctx, order.ID, order.CustomerID, 1, "changed my mind")
	if !errors.Is(err, domain.ErrAlreadyRated) {
		t.Fatalf("second SubmitRating() error = %v, want ErrAlreadyRated", err)
	}
	if second.ID != first.ID || second.Score != 4 || second.Comment != "enak" {
		t.Fatalf("second SubmitRating() = %+v, want the stored rating %+v", second, first)
	}

	var count int64
	db.Model(&domain.Rating{}).Count(&count)
	if count != 1 {
		t.Fatalf("ratings = %d, want 1", count)
	}

	var restaurant domain.Restaurant
	db.First(&restaurant, order.RestaurantID)
	if restaurant.Rating != 4 {
		t.Errorf("restaurant rating = %v, want 4", restaurant.Rating)
	}
}

// Callers queue on the single SQLite connection; rating_integration_test.go
// repeats this against Postgres where the inserts really race.
func TestSubmitRating_ConcurrentPairStoresOne(t *testing.T) {
	svc, db, order := setup(t, domain.StatusDelivered)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := svc.SubmitRating(context.Background(), order.ID, order.CustomerID, score, "")
			results <- err
		}(i%5 + 1)
	}
	wg.Wait()
	close(results)

	ok, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyRated):
			rejected++
		default:
			t.Errorf("SubmitRating() unexpected error = %v", err)
		}
	}
	if ok != 1 || rejected != callers-1 {
		t.Fatalf("ok/rejected = %d/%d, want 1/%d", ok, rejected, callers-1)
	}

	var count int64
	db.Model(&domain.Rating{}).Count(&count)
	if count != 1 {
		t.Fatalf("ratings = %d, want 1", count)
	}
}

// The store constraint alone must turn the losing insert into a conflict.
func TestRatingRepository_ConflictReturnsExisting(t *testing.T) {
	_, db, order := setup(t, domain.StatusDelivered)
	repo := postgres.NewRatingRepository(db)
	ctx := context.Background()

	winner := domain.Rating{OrderID: order.ID, UserID: order.CustomerID, Score: 5}
	if err := repo.Create(ctx, &winner, order.RestaurantID); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	loser := domain.Rating{OrderID: order.ID, UserID: order.CustomerID, Score: 2}
	if err := repo.Create(ctx, &loser, order.RestaurantID); !errors.Is(err, domain.ErrAlreadyRated) {
		t.Fatalf("Create() error = %v, want ErrAlreadyRated", err)
	}
	if loser.ID != winner.ID || loser.Score != 5 {
		t.Fatalf("loser = %+v, want the winner's row", loser)
	}
}

func TestSubmitRating_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.OrderStatus
		orderID func(domain.Order) uint
		userID  func(domain.Order) uint
		score   int
		want    error
	}{
		{"score too low", domain.StatusDelivered, nil, nil, 0, domain.ErrValidation},
		{"score too high", domain.StatusDelivered, nil, nil, 6, domain.ErrValidation},
		{"not delivered", domain.StatusPreparing, nil, nil, 3, domain.ErrValidation},
		{"cancelled", domain.StatusCancelled, nil, nil, 3, domain.ErrValidation},
		{"someone else's order", domain.StatusDelivered, nil, func(o domain.Order) uint { return o.CustomerID + 100 }, 3, domain.ErrValidation},
		{"missing order", domain.StatusDelivered, func(o domain.Order) uint { return o.ID + 100 }, nil, 3, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db, order := setup(t, tt.status)

			orderID, userID := order.ID, order.CustomerID
			if tt.orderID != nil {
				orderID = tt.orderID(order)
			}
			if tt.userID != nil {
				userID = tt.userID(order)
			}

			if _, err := svc.SubmitRating(context.Background(), orderID, userID, tt.score, ""); !errors.Is(err, tt.want) {
				t.Fatalf("SubmitRating() error = %v, want %v", err, tt.want)
			}

			var count int64
			db.Model(&domain.Rating{}).Count(&count)
			if count != 0 {
				t.Fatalf("ratings = %d, want 0", count)
			}
		})
	}
}

func TestHasRated_IsReadOnly(t *testing.T) {
	svc, db, order := setup(t, domain.StatusDelivered)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, found, err := svc.HasRated(ctx, order.ID, order.CustomerID); err != nil || found {
			t.Fatalf("HasRated() = %v, %v; want false, nil", found, err)
		}
	}

	var count int64
	db.Model(&domain.Rating{}).Count(&count)
	if count != 0 {
		t.Fatalf("ratings = %d after HasRated, want 0", count)
	}
}
