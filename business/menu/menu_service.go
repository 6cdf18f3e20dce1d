package menu

import (
	"context"
	"fmt"
	"math"
	"myFoodHub/domain"
	"myFoodHub/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type MenuRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	FindByID(ctx context.Context, id uint) (domain.MenuItem, error)
	ListByRestaurant(ctx context.Context, restaurantID uint) ([]domain.MenuItem, error)
	UpdatePrice(ctx context.Context, id uint, price float64) error
}

type RestaurantFinder interface {
	FindRestaurantByID(ctx context.Context, id uint) (domain.Restaurant, error)
}

type MenuItemInput struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"gte=0"`
	IsAvailable *bool   `json:"is_available"`
}

type MenuService struct {
	menuRepo    MenuRepository
	restaurants RestaurantFinder
	validate    *validator.Validate
}

func NewMenuService(menuRepo MenuRepository, restaurants RestaurantFinder, validate *validator.Validate) *MenuService {
	return &MenuService{
		menuRepo:    menuRepo,
		restaurants: restaurants,
		validate:    validate,
	}
}

func (s *MenuService) AddMenuItem(ctx context.Context, actor domain.Actor, restaurantID uint, input MenuItemInput) (domain.MenuItem, error) {
	if err := s.validate.Struct(&input); err != nil {
		return domain.MenuItem{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	if err := s.authorize(ctx, actor, restaurantID); err != nil {
		return domain.MenuItem{}, err
	}

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	item := domain.MenuItem{
		RestaurantID: restaurantID,
		Name:         input.Name,
		Category:     input.Category,
		Price:        input.Price,
		IsAvailable:  available,
	}
	if err := s.menuRepo.Create(ctx, &item); err != nil {
		logger.Error("Failed to create menu item", "restaurant_id", restaurantID, "error", err)
		return domain.MenuItem{}, err
	}

	return item, nil
}

// UpdateMenuItemPrice changes the live price. Orders already placed keep
// their captured prices.
func (s *MenuService) UpdateMenuItemPrice(ctx context.Context, actor domain.Actor, itemID uint, price float64) (domain.MenuItem, error) {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return domain.MenuItem{}, fmt.Errorf("%w: price must be a non-negative amount", domain.ErrValidation)
	}

	item, err := s.menuRepo.FindByID(ctx, itemID)
	if err != nil {
		return domain.MenuItem{}, err
	}
	if err := s.authorize(ctx, actor, item.RestaurantID); err != nil {
		return domain.MenuItem{}, err
	}

	if err := s.menuRepo.UpdatePrice(ctx, itemID, price); err != nil {
		logger.Error("Failed to update menu price", "menu_item_id", itemID, "error", err)
		return domain.MenuItem{}, err
	}

	item.Price = price
	logger.Info("Menu price updated", "menu_item_id", itemID, "price", price)
	return item, nil
}

func (s *MenuService) ListMenu(ctx context.Context, restaurantID uint) ([]domain.MenuItem, error) {
	if _, err := s.restaurants.FindRestaurantByID(ctx, restaurantID); err != nil {
		return nil, err
	}

	return s.menuRepo.ListByRestaurant(ctx, restaurantID)
}

func (s *MenuService) authorize(ctx context.Context, actor domain.Actor, restaurantID uint) error {
	restaurant, err := s.restaurants.FindRestaurantByID(ctx, restaurantID)
	if err != nil {
		return err
	}
	if actor.IsAdmin() || restaurant.UserID == actor.UserID {
		return nil
	}

	return fmt.Errorf("%w: restaurant %d is not yours", domain.ErrForbidden, restaurantID)
}
