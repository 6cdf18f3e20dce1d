package menu

import (
	"context"
	"errors"
	"myFoodHub/domain"
	"myFoodHub/internal/repository/postgres"
	"myFoodHub/pkg/database/dbtest"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestMenuService(t *testing.T) {
	db := dbtest.New(t)
	svc := NewMenuService(postgres.NewMenuRepository(db), postgres.NewUserRepository(db), validator.New())
	ctx := context.Background()

	owner, restaurant := dbtest.Restaurant(t, db, "owner@example.com", "Gado Gado")
	rival, _ := dbtest.Restaurant(t, db, "rival@example.com", "Rival")
	ownerActor := domain.Actor{UserID: owner.ID, Role: domain.RoleRestaurant}
	rivalActor := domain.Actor{UserID: rival.ID, Role: domain.RoleRestaurant}

	hidden := false
	item, err := svc.AddMenuItem(ctx, ownerActor, restaurant.ID, MenuItemInput{Name: "Gado", Category: "mains", Price: 6})
	if err != nil {
		t.Fatalf("AddMenuItem() error = %v", err)
	}
	if !item.IsAvailable {
		t.Error("new menu item should default to available")
	}
	if _, err := svc.AddMenuItem(ctx, ownerActor, restaurant.ID, MenuItemInput{Name: "Secret", Price: 1, IsAvailable: &hidden}); err != nil {
		t.Fatalf("AddMenuItem(hidden) error = %v", err)
	}

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"negative price", func() error {
			_, err := svc.AddMenuItem(ctx, ownerActor, restaurant.ID, MenuItemInput{Name: "Bad", Price: -1})
			return err
		}, domain.ErrValidation},
		{"missing name", func() error {
			_, err := svc.AddMenuItem(ctx, ownerActor, restaurant.ID, MenuItemInput{Price: 1})
			return err
		}, domain.ErrValidation},
		{"other owner adds", func() error {
			_, err := svc.AddMenuItem(ctx, rivalActor, restaurant.ID, MenuItemInput{Name: "Sabotage", Price: 1})
			return err
		}, domain.ErrForbidden},
		{"other owner reprices", func() error {
			_, err := svc.UpdateMenuItemPrice(ctx, rivalActor, item.ID, 0.5)
			return err
		}, domain.ErrForbidden},
		{"negative reprice", func() error {
			_, err := svc.UpdateMenuItemPrice(ctx, ownerActor, item.ID, -3)
			return err
		}, domain.ErrValidation},
		{"missing item", func() error {
			_, err := svc.UpdateMenuItemPrice(ctx, ownerActor, 4242, 3)
			return err
		}, domain.ErrNotFound},
		{"missing restaurant", func() error {
			_, err := svc.ListMenu(ctx, 4242)
			return err
		}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}

	admin := domain.Actor{UserID: 1, Role: domain.RoleAdmin}
	updated, err := svc.UpdateMenuItemPrice(ctx, admin, item.ID, 7.25)
	if err != nil {
		t.Fatalf("UpdateMenuItemPrice() error = %v", err)
	}
	if updated.Price != 7.25 {
		t.Errorf("price = %v, want 7.25", updated.Price)
	}

	items, err := svc.ListMenu(ctx, restaurant.ID)
	if err != nil {
		t.Fatalf("ListMenu() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListMenu() = %d items, want 2", len(items))
	}
}
